package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/oshokin/eresus/internal/clock"
	"github.com/oshokin/eresus/internal/config"
	"github.com/oshokin/eresus/internal/domain/arrest"
	"github.com/oshokin/eresus/internal/logger"
)

// Settings supplies the protocol timings. It is re-read whenever a CPR cycle
// starts and whenever the adrenaline interval is evaluated, so changes apply
// on the next cycle.
type Settings interface {
	TimerSettings() config.Timers
}

// Archiver persists a finalized session. Implementations must not block and
// handle their own failures.
type Archiver interface {
	Archive(ctx context.Context, log *arrest.ArchivedLog)
}

// DefaultTickInterval is the ticker period.
const DefaultTickInterval = time.Second

// Session is the arrest session state machine. It is safe for concurrent use:
// ticks and commands are serialized on a single mutex.
type Session struct {
	mu sync.Mutex

	clock    clock.Clock
	settings Settings
	archiver Archiver
	log      *zap.SugaredLogger

	st   state
	undo undoStack

	tickInterval time.Duration
	// tickCancel is non-nil while the ticker runs.
	tickCancel context.CancelFunc
	// tickGeneration invalidates ticks from cancelled tickers.
	tickGeneration uint64

	updates chan struct{}
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithArchiver sets the collaborator that stores finalized sessions.
func WithArchiver(a Archiver) Option {
	return func(s *Session) {
		s.archiver = a
	}
}

// WithTickInterval overrides the ticker period.
func WithTickInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.tickInterval = d
		}
	}
}

// New creates a pending session. The logger is taken from ctx.
func New(ctx context.Context, settings Settings, opts ...Option) *Session {
	s := &Session{
		clock:        clock.System{},
		settings:     settings,
		log:          logger.FromContext(logger.WithName(ctx, "session")),
		tickInterval: DefaultTickInterval,
		updates:      make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.st = initialState(s.timers())

	return s
}

// Updates delivers a coalesced signal after every command and tick.
func (s *Session) Updates() <-chan struct{} {
	return s.updates
}

// Close stops the ticker. The session stays usable.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTickerLocked()
}

// CanUndo reports whether a snapshot is available.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.undo.len() > 0
}

// Summary renders the current log as export text.
func (s *Session) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return arrest.Summary(s.st.total(), s.st.log.events)
}

// Undo restores the state captured before the most recent command. It
// returns false when there is nothing to undo. Undo is not itself undoable
// and records no event.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.undo.pop()
	if !ok {
		s.log.Debug("Nothing to undo")

		return false
	}

	age := s.st.patientAge
	s.st = previous
	s.st.patientAge = age

	if s.st.phase.Timed() {
		// Elapsed time is wall-clock derived; bring it up to now.
		s.tickLocked()

		if s.tickCancel == nil {
			s.startTickerLocked()
		}
	} else {
		s.stopTickerLocked()
	}

	s.log.Debugw("Undo applied", "phase", s.st.phase, "remaining_snapshots", s.undo.len())
	s.notify()

	return true
}

// timers reads the current settings, falling back to defaults without a provider.
func (s *Session) timers() config.Timers {
	if s.settings == nil {
		return config.Default().Timers
	}

	return s.settings.TimerSettings()
}

// notify signals subscribers without blocking.
func (s *Session) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}
