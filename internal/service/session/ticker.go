package session

import (
	"context"
	"time"

	"github.com/oshokin/eresus/internal/domain/arrest"
)

// rolloverJitter absorbs scheduling jitter: a cycle whose remaining time is
// within one fraction of a tick of zero rolls over on this tick rather than
// one tick late.
const rolloverJitter = 250 * time.Millisecond

// Tick recomputes the elapsed time and the CPR countdown. The internal ticker
// calls it once per interval; calling it directly is harmless.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickLocked()
	s.notify()
}

// TickerRunning reports whether the periodic ticker is active.
func (s *Session) TickerRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tickCancel != nil
}

// tickLocked recomputes timer fields. A silent rollover starts a new CPR cycle
// without logging an event.
func (s *Session) tickLocked() {
	if !s.st.phase.Timed() || s.st.startedAt.IsZero() {
		return
	}

	s.st.elapsed = max(0, s.clock.Now().Sub(s.st.startedAt))

	if s.st.phase != arrest.PhaseActive || s.st.subPhase != arrest.SubPhaseDefault {
		return
	}

	s.st.cprRemaining = s.st.cprCycleLength - (s.st.total() - s.st.cprCycleAnchor)
	if s.st.cprRemaining <= rolloverJitter {
		s.startCycleLocked(false)
	}
}

// startTickerLocked starts a fresh ticker, cancelling any previous one.
func (s *Session) startTickerLocked() {
	s.stopTickerLocked()

	ctx, cancel := context.WithCancel(context.Background())
	s.tickCancel = cancel
	s.tickGeneration++

	go s.runTicker(ctx, s.tickGeneration, s.tickInterval)
}

// stopTickerLocked cancels the ticker. It is idempotent and does not wait:
// the ticker goroutine needs the session lock to tick, and a late tick from
// an old generation is discarded.
func (s *Session) stopTickerLocked() {
	if s.tickCancel == nil {
		return
	}

	s.tickCancel()
	s.tickCancel = nil
}

func (s *Session) runTicker(ctx context.Context, generation uint64, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tickFrom(generation)
		}
	}
}

func (s *Session) tickFrom(generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.tickGeneration || s.tickCancel == nil {
		return
	}

	s.tickLocked()
	s.notify()
}
