package archive

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/eresus/internal/config"
	"github.com/oshokin/eresus/internal/domain/arrest"
)

// Repository defines persistence operations for archived arrest logs.
type Repository interface {
	// Save inserts the log or replaces a log with the same ID.
	Save(ctx context.Context, log *arrest.ArchivedLog) error
	// List returns every log newest first, without events.
	List(ctx context.Context) ([]*arrest.ArchivedLog, error)
	// Get returns one log with its events.
	Get(ctx context.Context, id string) (*arrest.ArchivedLog, error)
	// Delete removes one log.
	Delete(ctx context.Context, id string) error
	// Close releases the underlying store.
	Close() error
}

var (
	// ErrNotFound is returned when no log has the requested ID.
	ErrNotFound = errors.New("archived log not found")

	errNilLog       = errors.New("archived log is nil")
	errMissingLogID = errors.New("archived log has no id")
)

// Open creates the repository selected by cfg.
func Open(ctx context.Context, cfg config.Archive) (Repository, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		repo, err := NewSQLiteRepository(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}

		return repo, nil
	case config.DriverFile:
		return NewFileRepository(cfg.Path), nil
	default:
		return nil, fmt.Errorf("unknown archive driver %q", cfg.Driver)
	}
}

func validateLog(log *arrest.ArchivedLog) error {
	if log == nil {
		return errNilLog
	}

	if log.ID == "" {
		return errMissingLogID
	}

	return nil
}
