package logbook

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oshokin/eresus/internal/domain/arrest"
	"github.com/oshokin/eresus/internal/logger"
	"github.com/oshokin/eresus/internal/repository/archive"
)

var (
	// ErrAmbiguousID is returned when an ID prefix matches several logs.
	ErrAmbiguousID = errors.New("log id prefix is ambiguous")
	// ErrEmptyID is returned when no ID is given.
	ErrEmptyID = errors.New("log id is empty")
)

// Service reads and prunes the archive.
type Service struct {
	// repo is the archive store.
	repo archive.Repository
}

// NewService creates a logbook over repo.
func NewService(repo archive.Repository) *Service {
	return &Service{repo: repo}
}

// List returns every archived log newest first, without events.
func (s *Service) List(ctx context.Context) ([]*arrest.ArchivedLog, error) {
	logs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list archived logs: %w", err)
	}

	return logs, nil
}

// Get returns a log with its events. id may be any unique prefix of a log ID.
func (s *Service) Get(ctx context.Context, id string) (*arrest.ArchivedLog, error) {
	fullID, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	log, err := s.repo.Get(ctx, fullID)
	if err != nil {
		return nil, fmt.Errorf("get archived log %s: %w", fullID, err)
	}

	return log, nil
}

// Summary returns the export text of a log.
func (s *Service) Summary(ctx context.Context, id string) (string, error) {
	log, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	return log.Summary(), nil
}

// Delete removes a log. id may be any unique prefix of a log ID.
func (s *Service) Delete(ctx context.Context, id string) (string, error) {
	fullID, err := s.resolve(ctx, id)
	if err != nil {
		return "", err
	}

	if err = s.repo.Delete(ctx, fullID); err != nil {
		return "", fmt.Errorf("delete archived log %s: %w", fullID, err)
	}

	logger.InfoKV(ctx, "Archived log deleted", "log_id", fullID)

	return fullID, nil
}

// resolve expands an ID prefix to a full log ID.
func (s *Service) resolve(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrEmptyID
	}

	logs, err := s.List(ctx)
	if err != nil {
		return "", err
	}

	var matches []string

	for _, log := range logs {
		if log.ID == id {
			return id, nil
		}

		if strings.HasPrefix(log.ID, id) {
			matches = append(matches, log.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", archive.ErrNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s matches %d logs", ErrAmbiguousID, id, len(matches))
	}
}
