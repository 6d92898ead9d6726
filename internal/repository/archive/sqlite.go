package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the pure-Go "sqlite" driver.
	_ "modernc.org/sqlite"

	"github.com/oshokin/eresus/internal/config"
	"github.com/oshokin/eresus/internal/domain/arrest"
)

// SQLiteRepository stores archived logs in a SQLite database, one row per
// log and one row per event.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at path.
func NewSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, config.DefaultDirPermissions); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	repo := &SQLiteRepository{db: db}
	if err = repo.ensureSchema(ctx); err != nil {
		_ = db.Close()

		return nil, err
	}

	return repo, nil
}

func (r *SQLiteRepository) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS arrest_logs (
  id TEXT PRIMARY KEY,
  started_at TEXT NOT NULL,
  ended_at TEXT NOT NULL,
  total_duration_ns INTEGER NOT NULL,
  outcome TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS arrest_events (
  log_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  id TEXT NOT NULL,
  timestamp_ns INTEGER NOT NULL,
  message TEXT NOT NULL,
  category TEXT NOT NULL,
  PRIMARY KEY (log_id, position)
);
`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create archive tables: %w", err)
	}

	return nil
}

// Save inserts or replaces the log and its events in one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, log *arrest.ArchivedLog) error {
	if err := validateLog(log); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}

	//nolint:errcheck // Rollback after commit is a no-op.
	defer tx.Rollback()

	const upsertLog = `
INSERT INTO arrest_logs (id, started_at, ended_at, total_duration_ns, outcome)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  started_at=excluded.started_at,
  ended_at=excluded.ended_at,
  total_duration_ns=excluded.total_duration_ns,
  outcome=excluded.outcome;
`
	_, err = tx.ExecContext(ctx, upsertLog,
		log.ID,
		formatTime(log.StartedAt),
		formatTime(log.EndedAt),
		int64(log.TotalDuration),
		string(log.Outcome),
	)
	if err != nil {
		return fmt.Errorf("upsert arrest log: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM arrest_events WHERE log_id = ?`, log.ID); err != nil {
		return fmt.Errorf("clear arrest events: %w", err)
	}

	const insertEvent = `
INSERT INTO arrest_events (log_id, position, id, timestamp_ns, message, category)
VALUES (?, ?, ?, ?, ?, ?);
`
	for position, e := range log.Events {
		_, err = tx.ExecContext(ctx, insertEvent,
			log.ID,
			position,
			e.ID,
			int64(e.Timestamp),
			e.Message,
			string(e.Category),
		)
		if err != nil {
			return fmt.Errorf("insert arrest event: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}

	return nil
}

// List returns all logs newest first, without events.
func (r *SQLiteRepository) List(ctx context.Context) ([]*arrest.ArchivedLog, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, started_at, ended_at, total_duration_ns, outcome
FROM arrest_logs
ORDER BY started_at DESC, id ASC;
`)
	if err != nil {
		return nil, fmt.Errorf("query arrest logs: %w", err)
	}
	defer rows.Close()

	var logs []*arrest.ArchivedLog

	for rows.Next() {
		log, scanErr := scanLog(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		logs = append(logs, log)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate arrest logs: %w", err)
	}

	// RFC 3339 strings with varying fraction digits do not sort lexically.
	sortNewestFirst(logs)

	return logs, nil
}

// Get returns the log with its events in recorded order.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*arrest.ArchivedLog, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, started_at, ended_at, total_duration_ns, outcome
FROM arrest_logs
WHERE id = ?;
`, id)

	log, err := scanLog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, timestamp_ns, message, category
FROM arrest_events
WHERE log_id = ?
ORDER BY position ASC;
`, id)
	if err != nil {
		return nil, fmt.Errorf("query arrest events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e         arrest.Event
			timestamp int64
			category  string
		)

		if err = rows.Scan(&e.ID, &timestamp, &e.Message, &category); err != nil {
			return nil, fmt.Errorf("scan arrest event: %w", err)
		}

		e.Timestamp = time.Duration(timestamp)
		e.Category = arrest.EventCategory(category)
		log.Events = append(log.Events, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate arrest events: %w", err)
	}

	return log, nil
}

// Delete removes the log and its events.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}

	//nolint:errcheck // Rollback after commit is a no-op.
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM arrest_logs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete arrest log: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("count deleted logs: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM arrest_events WHERE log_id = ?`, id); err != nil {
		return fmt.Errorf("delete arrest events: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}

	return nil
}

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLog(row rowScanner) (*arrest.ArchivedLog, error) {
	var (
		log                = new(arrest.ArchivedLog)
		startedAt, endedAt string
		total              int64
		outcome            string
	)

	if err := row.Scan(&log.ID, &startedAt, &endedAt, &total, &outcome); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("scan arrest log: %w", err)
	}

	var err error

	if log.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}

	if log.EndedAt, err = parseTime(endedAt); err != nil {
		return nil, err
	}

	log.TotalDuration = time.Duration(total)
	log.Outcome = arrest.Outcome(outcome)

	return log, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}

	return t, nil
}
