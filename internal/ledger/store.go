// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records dataprep runs and their per-item outcomes in a
// local SQLite database, so a batch can be audited after the fact: which
// PDFs failed, which split files were written, which sources a merge used.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/dataprep/pkg/types"
)

// DefaultPath is the ledger location relative to the working directory.
const DefaultPath = ".dataprep/ledger.db"

// Ledger manages the run ledger SQLite database.
type Ledger struct {
	db   *sql.DB
	path string
}

// Open opens or creates the ledger database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Ledger, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	l := &Ledger{db: db, path: path}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return l, nil
}

// Path returns the database file path.
func (l *Ledger) Path() string { return l.path }

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			tool TEXT NOT NULL,
			args TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			converted INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS items (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			source TEXT,
			target TEXT,
			status TEXT NOT NULL,
			detail TEXT,
			recorded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_run_id ON items(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_items_status ON items(status)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}

	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Run is an open ledger run. It satisfies convert.Recorder.
type Run struct {
	ID   string
	Tool string

	l *Ledger

	mu     sync.Mutex
	counts map[types.ItemStatus]int
}

// StartRun inserts a new run for tool with the given command-line args.
func (l *Ledger) StartRun(ctx context.Context, tool string, args []string) (*Run, error) {
	id := uuid.NewString()
	argsJSON, _ := json.Marshal(args)

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, tool, args, started_at) VALUES (?, ?, ?, ?)`,
		id, tool, string(argsJSON), now(),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting run: %w", err)
	}
	return &Run{ID: id, Tool: tool, l: l, counts: make(map[types.ItemStatus]int)}, nil
}

// Record stores one item outcome.
func (r *Run) Record(source, target string, status types.ItemStatus, detail string) error {
	_, err := r.l.db.Exec(
		`INSERT INTO items (run_id, source, target, status, detail, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, source, target, string(status), detail, now(),
	)
	if err != nil {
		return fmt.Errorf("recording item %s: %w", source, err)
	}

	r.mu.Lock()
	r.counts[status]++
	r.mu.Unlock()
	return nil
}

// Finish stamps the run's finish time and outcome totals.
func (r *Run) Finish(ctx context.Context) error {
	r.mu.Lock()
	converted := r.counts[types.ItemConverted]
	skipped := r.counts[types.ItemSkipped]
	failed := r.counts[types.ItemFailed]
	r.mu.Unlock()

	_, err := r.l.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, converted = ?, skipped = ?, failed = ? WHERE id = ?`,
		now(), converted, skipped, failed, r.ID,
	)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", r.ID, err)
	}
	return nil
}

// timeFormat is fixed-width so stored timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func now() string {
	return time.Now().UTC().Format(timeFormat)
}
