package archive

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/oshokin/eresus/internal/config"
	"github.com/oshokin/eresus/internal/domain/arrest"
)

// FileRepository persists archived logs to a single JSON file on disk.
// Every write rewrites the whole document.
type FileRepository struct {
	// path is the filesystem location of the JSON logbook.
	path string
	// mu protects concurrent access to the logbook file.
	mu sync.Mutex
}

// fileDocument is the on-disk layout.
type fileDocument struct {
	Logs []fileLog `json:"logs"`
}

type fileLog struct {
	ID            string        `json:"id"`
	StartedAt     time.Time     `json:"started_at"`
	EndedAt       time.Time     `json:"ended_at"`
	TotalDuration time.Duration `json:"total_duration_ns"`
	Outcome       string        `json:"outcome"`
	Events        []fileEvent   `json:"events"`
}

type fileEvent struct {
	ID        string        `json:"id"`
	Timestamp time.Duration `json:"timestamp_ns"`
	Message   string        `json:"message"`
	Category  string        `json:"category"`
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Save inserts or replaces the log.
func (r *FileRepository) Save(_ context.Context, log *arrest.ArchivedLog) error {
	if err := validateLog(log); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return err
	}

	record := toFileLog(log)

	index := slices.IndexFunc(doc.Logs, func(l fileLog) bool { return l.ID == log.ID })
	if index >= 0 {
		doc.Logs[index] = record
	} else {
		doc.Logs = append(doc.Logs, record)
	}

	return r.write(doc)
}

// List returns all logs newest first, without events.
func (r *FileRepository) List(_ context.Context) ([]*arrest.ArchivedLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return nil, err
	}

	logs := make([]*arrest.ArchivedLog, 0, len(doc.Logs))
	for _, record := range doc.Logs {
		log := fromFileLog(record)
		log.Events = nil
		logs = append(logs, log)
	}

	sortNewestFirst(logs)

	return logs, nil
}

// Get returns the log with its events.
func (r *FileRepository) Get(_ context.Context, id string) (*arrest.ArchivedLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return nil, err
	}

	for _, record := range doc.Logs {
		if record.ID == id {
			return fromFileLog(record), nil
		}
	}

	return nil, ErrNotFound
}

// Delete removes the log.
func (r *FileRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return err
	}

	index := slices.IndexFunc(doc.Logs, func(l fileLog) bool { return l.ID == id })
	if index < 0 {
		return ErrNotFound
	}

	doc.Logs = slices.Delete(doc.Logs, index, index+1)

	return r.write(doc)
}

// Close is a no-op; the file is not held open.
func (r *FileRepository) Close() error {
	return nil
}

// read loads the document. A missing file is an empty logbook.
func (r *FileRepository) read() (*fileDocument, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return new(fileDocument), nil
		}

		return nil, fmt.Errorf("read logbook file: %w", err)
	}

	var doc fileDocument
	if err = json.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("decode logbook file: %w", err)
	}

	return &doc, nil
}

func (r *FileRepository) write(doc *fileDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode logbook: %w", err)
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err = os.MkdirAll(dir, config.DefaultDirPermissions); err != nil {
			return fmt.Errorf("create logbook directory: %w", err)
		}
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write logbook file: %w", err)
	}

	return nil
}

// toFileLog converts the domain log into its JSON record.
func toFileLog(log *arrest.ArchivedLog) fileLog {
	events := make([]fileEvent, 0, len(log.Events))
	for _, e := range log.Events {
		events = append(events, fileEvent{
			ID:        e.ID,
			Timestamp: e.Timestamp,
			Message:   e.Message,
			Category:  string(e.Category),
		})
	}

	return fileLog{
		ID:            log.ID,
		StartedAt:     log.StartedAt,
		EndedAt:       log.EndedAt,
		TotalDuration: log.TotalDuration,
		Outcome:       string(log.Outcome),
		Events:        events,
	}
}

// fromFileLog converts a JSON record into the domain log.
func fromFileLog(record fileLog) *arrest.ArchivedLog {
	var events []arrest.Event

	if len(record.Events) > 0 {
		events = make([]arrest.Event, 0, len(record.Events))
		for _, e := range record.Events {
			events = append(events, arrest.Event{
				ID:        e.ID,
				Timestamp: e.Timestamp,
				Message:   e.Message,
				Category:  arrest.EventCategory(e.Category),
			})
		}
	}

	return &arrest.ArchivedLog{
		ID:            record.ID,
		StartedAt:     record.StartedAt,
		EndedAt:       record.EndedAt,
		TotalDuration: record.TotalDuration,
		Outcome:       arrest.Outcome(record.Outcome),
		Events:        events,
	}
}

func sortNewestFirst(logs []*arrest.ArchivedLog) {
	slices.SortStableFunc(logs, func(a, b *arrest.ArchivedLog) int {
		return cmp.Or(b.StartedAt.Compare(a.StartedAt), cmp.Compare(a.ID, b.ID))
	})
}
