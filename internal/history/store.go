// Package history records digest runs in a SQLite database. It uses
// modernc.org/sqlite (pure Go, no CGO) with WAL mode.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration
)

const defaultBusyTimeout = 5000 // milliseconds

// ErrNotFound is returned when no run matches the query.
var ErrNotFound = errors.New("history: run not found")

// Run is one recorded digest run.
type Run struct {
	ID          int64
	Preset      string
	StartedAt   time.Time
	FinishedAt  time.Time
	OK          bool
	ItemCount   int
	Sent        int
	FilePath    string
	ArchiveURL  string
	ErrorDetail string
}

// Store persists digest runs.
type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) the run database at path.
//
// The database uses WAL mode, a 5 s busy timeout, and a single connection
// (SQLite serialises writes). The schema is migrated automatically.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("history: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	ctx := context.TODO()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", defaultBusyTimeout)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: set busy_timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	preset        TEXT NOT NULL,
	started_at    INTEGER NOT NULL,
	finished_at   INTEGER NOT NULL,
	ok            INTEGER NOT NULL,
	item_count    INTEGER NOT NULL DEFAULT 0,
	sent          INTEGER NOT NULL DEFAULT 0,
	file_path     TEXT NOT NULL DEFAULT '',
	archive_url   TEXT NOT NULL DEFAULT '',
	error_detail  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("history: migrate schema: %w", err)
	}
	return nil
}

// Record inserts a run and returns its assigned ID.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO runs (preset, started_at, finished_at, ok, item_count, sent, file_path, archive_url, error_detail)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Preset,
		run.StartedAt.Unix(),
		run.FinishedAt.Unix(),
		boolToInt(run.OK),
		run.ItemCount,
		run.Sent,
		run.FilePath,
		run.ArchiveURL,
		run.ErrorDetail,
	)
	if err != nil {
		return 0, fmt.Errorf("history: record run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history: last insert id: %w", err)
	}
	return id, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, preset, started_at, finished_at, ok, item_count, sent, file_path, archive_url, error_detail
FROM runs
ORDER BY started_at DESC, id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate runs: %w", err)
	}
	return runs, nil
}

// Last returns the most recent run.
func (s *Store) Last(ctx context.Context) (Run, error) {
	runs, err := s.Recent(ctx, 1)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, ErrNotFound
	}
	return runs[0], nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run               Run
		started, finished int64
		ok                int
	)
	err := row.Scan(
		&run.ID,
		&run.Preset,
		&started,
		&finished,
		&ok,
		&run.ItemCount,
		&run.Sent,
		&run.FilePath,
		&run.ArchiveURL,
		&run.ErrorDetail,
	)
	if err != nil {
		return Run{}, fmt.Errorf("history: scan run: %w", err)
	}
	run.StartedAt = time.Unix(started, 0)
	run.FinishedAt = time.Unix(finished, 0)
	run.OK = ok != 0
	return run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
