// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/dataprep/pkg/types"
)

const defaultListLimit = 20

// RunSummary is one row of the runs table.
type RunSummary struct {
	ID        string    `json:"id" yaml:"id"`
	Tool      string    `json:"tool" yaml:"tool"`
	Args      []string  `json:"args" yaml:"args"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// FinishedAt is nil for a run that never called Finish.
	FinishedAt *time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`

	Converted int `json:"converted" yaml:"converted"`
	Skipped   int `json:"skipped" yaml:"skipped"`
	Failed    int `json:"failed" yaml:"failed"`
}

// ErrEmptyPrefix is returned by Lookup when no run ID prefix is given.
var ErrEmptyPrefix = errors.New("run ID prefix is required")

// Item is one recorded outcome.
type Item struct {
	Source string           `json:"source" yaml:"source"`
	Target string           `json:"target,omitempty" yaml:"target,omitempty"`
	Status types.ItemStatus `json:"status" yaml:"status"`
	Detail string           `json:"detail,omitempty" yaml:"detail,omitempty"`
}

const runColumns = `id, tool, args, started_at, finished_at, converted, skipped, failed`

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less uses the default of 20.
func (l *Ledger) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Lookup finds the run whose ID equals or starts with idPrefix. The prefix
// is compared literally. An empty or ambiguous prefix is an error.
func (l *Ledger) Lookup(ctx context.Context, idPrefix string) (RunSummary, error) {
	if idPrefix == "" {
		return RunSummary{}, ErrEmptyPrefix
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE substr(id, 1, length(?)) = ? ORDER BY started_at DESC LIMIT 2`,
		idPrefix, idPrefix)
	if err != nil {
		return RunSummary{}, fmt.Errorf("looking up run: %w", err)
	}
	defer rows.Close()

	var found []RunSummary
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return RunSummary{}, err
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return RunSummary{}, err
	}

	switch len(found) {
	case 0:
		return RunSummary{}, fmt.Errorf("run %s not found", idPrefix)
	case 1:
		return found[0], nil
	default:
		return RunSummary{}, fmt.Errorf("run prefix %s is ambiguous", idPrefix)
	}
}

// Items returns the outcomes recorded for runID in insertion order. A
// non-empty status filters the result.
func (l *Ledger) Items(ctx context.Context, runID string, status types.ItemStatus) ([]Item, error) {
	query := `SELECT source, target, status, detail FROM items WHERE run_id = ?`
	args := []any{runID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY rowid`

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			it             Item
			status         string
			target, detail sql.NullString
		)
		if err := rows.Scan(&it.Source, &target, &status, &detail); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		it.Status = types.ItemStatus(status)
		it.Target = target.String
		it.Detail = detail.String
		items = append(items, it)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (RunSummary, error) {
	var r RunSummary
	var argsJSON, finished sql.NullString
	var started string
	if err := s.Scan(&r.ID, &r.Tool, &argsJSON, &started, &finished,
		&r.Converted, &r.Skipped, &r.Failed); err != nil {
		return r, fmt.Errorf("scanning run: %w", err)
	}
	if argsJSON.Valid {
		if err := json.Unmarshal([]byte(argsJSON.String), &r.Args); err != nil {
			return r, fmt.Errorf("decoding args of run %s: %w", r.ID, err)
		}
	}
	t, err := time.Parse(timeFormat, started)
	if err != nil {
		return r, fmt.Errorf("parsing start time of run %s: %w", r.ID, err)
	}
	r.StartedAt = t
	if finished.Valid {
		t, err := time.Parse(timeFormat, finished.String)
		if err != nil {
			return r, fmt.Errorf("parsing finish time of run %s: %w", r.ID, err)
		}
		r.FinishedAt = &t
	}
	return r, nil
}
