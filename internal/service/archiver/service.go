package archiver

import (
	"context"
	"sync"
	"time"

	"github.com/oshokin/eresus/internal/domain/arrest"
	"github.com/oshokin/eresus/internal/logger"
	"github.com/oshokin/eresus/internal/repository/archive"
)

const (
	// DefaultQueueSize bounds the number of logs waiting to be saved.
	DefaultQueueSize = 32
	// DefaultSaveTimeout bounds a single repository write.
	DefaultSaveTimeout = 10 * time.Second
)

// Saver is the subset of archive.Repository the worker needs.
type Saver interface {
	Save(ctx context.Context, log *arrest.ArchivedLog) error
}

var _ Saver = archive.Repository(nil)

// job is a queued save.
type job struct {
	ctx context.Context //nolint:containedctx // Carries the caller's logger to the worker.
	log *arrest.ArchivedLog
}

// Service persists archived logs on a background worker.
type Service struct {
	// saver is the destination store.
	saver Saver
	// queue feeds the worker.
	queue chan job
	// done is closed when the worker exits.
	done chan struct{}
	// saveTimeout bounds each Save call.
	saveTimeout time.Duration
	// mu guards closed against concurrent Archive and Close.
	mu     sync.RWMutex
	closed bool
}

// Option configures a Service.
type Option func(*Service)

// WithQueueSize overrides DefaultQueueSize.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queue = make(chan job, size)
		}
	}
}

// WithSaveTimeout overrides DefaultSaveTimeout.
func WithSaveTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.saveTimeout = d
		}
	}
}

// New starts the worker. Call Close to drain the queue and stop it.
func New(saver Saver, opts ...Option) *Service {
	s := &Service{
		saver:       saver,
		queue:       make(chan job, DefaultQueueSize),
		done:        make(chan struct{}),
		saveTimeout: DefaultSaveTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	go s.run()

	return s
}

// Archive enqueues log for saving. It never blocks: when the queue is full or
// the service is closed the log is dropped and an error is logged.
func (s *Service) Archive(ctx context.Context, log *arrest.ArchivedLog) {
	if log == nil {
		return
	}

	ctx = logger.WithKV(logger.WithName(ctx, "archiver"), "log_id", log.ID)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		logger.ErrorKV(ctx, "Archiver is closed, dropping arrest log")

		return
	}

	select {
	case s.queue <- job{ctx: context.WithoutCancel(ctx), log: log.Clone()}:
		logger.DebugKV(ctx, "Arrest log queued", "outcome", log.Outcome)
	default:
		logger.ErrorKV(ctx, "Archive queue is full, dropping arrest log", "queue_size", cap(s.queue))
	}
}

// Close stops accepting logs and waits until queued logs are saved or ctx ends.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()

	if !s.closed {
		s.closed = true
		close(s.queue)
	}

	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) run() {
	defer close(s.done)

	for j := range s.queue {
		s.save(j)
	}
}

func (s *Service) save(j job) {
	ctx, cancel := context.WithTimeout(j.ctx, s.saveTimeout)
	defer cancel()

	if err := s.saver.Save(ctx, j.log); err != nil {
		logger.ErrorKV(ctx, "Failed to save arrest log", "error", err)

		return
	}

	logger.InfoKV(ctx, "Arrest log archived",
		"outcome", j.log.Outcome,
		"total_duration", j.log.TotalDuration,
		"events", len(j.log.Events))
}
