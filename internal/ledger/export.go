// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportRun is a run together with its recorded items.
type ExportRun struct {
	RunSummary `yaml:",inline"`
	Items      []Item `json:"items" yaml:"items"`
}

// ExportYAML writes the most recent runs and their items to path as YAML.
func (l *Ledger) ExportYAML(ctx context.Context, path string, limit int) error {
	runs, err := l.exportRuns(ctx, limit)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(runs)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return writeExport(path, data)
}

// ExportJSON writes the most recent runs and their items to path as
// indented JSON.
func (l *Ledger) ExportJSON(ctx context.Context, path string, limit int) error {
	runs, err := l.exportRuns(ctx, limit)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return writeExport(path, data)
}

func (l *Ledger) exportRuns(ctx context.Context, limit int) ([]ExportRun, error) {
	summaries, err := l.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	runs := make([]ExportRun, len(summaries))
	for i, s := range summaries {
		items, err := l.Items(ctx, s.ID, "")
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []Item{}
		}
		runs[i] = ExportRun{RunSummary: s, Items: items}
	}
	return runs, nil
}

func writeExport(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
