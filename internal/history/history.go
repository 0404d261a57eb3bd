// Package history persists an append-only audit log of triage runs in a
// local SQLite database.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fenilsonani/desk-triage/internal/executor"
)

// Run is one recorded triage run
type Run struct {
	ID           int64     `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	Provider     string    `json:"provider"`
	ScannedCount int       `json:"scanned_count"`
	DeletedCount int       `json:"deleted_count"`
	MovedCount   int       `json:"moved_count"`
	KeptCount    int       `json:"kept_count"`
	FailedCount  int       `json:"failed_count"`
	FreedSpaceMB float64   `json:"freed_space_mb"`
	DryRun       bool      `json:"dry_run"`
}

// Entry is one recorded operation within a run
type Entry struct {
	Path    string `json:"path"`
	Action  string `json:"action"`
	NewPath string `json:"new_path,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Store wraps the run-history database
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database at path, creating parent
// directories as needed
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at    DATETIME NOT NULL,
		provider      TEXT NOT NULL,
		scanned_count INTEGER NOT NULL DEFAULT 0,
		deleted_count INTEGER NOT NULL DEFAULT 0,
		moved_count   INTEGER NOT NULL DEFAULT 0,
		kept_count    INTEGER NOT NULL DEFAULT 0,
		failed_count  INTEGER NOT NULL DEFAULT 0,
		freed_mb      REAL NOT NULL DEFAULT 0,
		dry_run       INTEGER NOT NULL DEFAULT 0,
		created_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	CREATE TABLE IF NOT EXISTS entries (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id   INTEGER NOT NULL,
		path     TEXT NOT NULL,
		action   TEXT NOT NULL,
		new_path TEXT DEFAULT '',
		error    TEXT DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_entries_run ON entries(run_id);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun appends one run summary plus its per-operation entries,
// atomically. The returned id identifies the run.
func (s *Store) RecordRun(startedAt time.Time, provider string, scanned int, dryRun bool, ledger *executor.Ledger) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}

	res, err := tx.Exec(
		`INSERT INTO runs (started_at, provider, scanned_count, deleted_count, moved_count, kept_count, failed_count, freed_mb, dry_run)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		startedAt, provider, scanned,
		ledger.DeletedCount, ledger.MovedCount, ledger.KeptCount,
		len(ledger.Failures), ledger.FreedSpaceMB, dryRun,
	)
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	runID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	stmt, err := tx.Prepare(`INSERT INTO entries (run_id, path, action, new_path, error) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	for _, op := range ledger.Successes {
		if _, err := stmt.Exec(runID, op.Path, string(op.Action), op.NewPath, ""); err != nil {
			tx.Rollback()
			return 0, err
		}
	}
	for _, f := range ledger.Failures {
		if _, err := stmt.Exec(runID, f.Path, string(f.Action), "", f.Error); err != nil {
			tx.Rollback()
			return 0, err
		}
	}
	for _, path := range ledger.Skipped {
		if _, err := stmt.Exec(runID, path, "keep", "", ""); err != nil {
			tx.Rollback()
			return 0, err
		}
	}

	return runID, tx.Commit()
}

// ListRuns returns the most recent runs, newest first
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit < 1 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, started_at, provider, scanned_count, deleted_count, moved_count, kept_count, failed_count, freed_mb, dry_run
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Provider, &r.ScannedCount,
			&r.DeletedCount, &r.MovedCount, &r.KeptCount, &r.FailedCount,
			&r.FreedSpaceMB, &r.DryRun); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunEntries returns the recorded operations for one run, insertion order
func (s *Store) RunEntries(runID int64) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT path, action, new_path, error FROM entries WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Path, &e.Action, &e.NewPath, &e.Error); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
