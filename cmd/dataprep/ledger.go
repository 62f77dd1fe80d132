// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/pdiddy/dataprep/internal/ledger"
	"github.com/pdiddy/dataprep/pkg/types"
)

// runLog records one command invocation in the run ledger. A nil *runLog
// is valid and records nothing, which is what commands get when the ledger
// is disabled.
type runLog struct {
	l   *ledger.Ledger
	run *ledger.Run
}

func ledgerConfig() types.LedgerConfig {
	return types.LedgerConfig{
		Enabled: viper.GetBool("ledger.enabled"),
		Path:    viper.GetString("ledger.path"),
	}
}

// startRunLog opens the ledger and starts a run for tool when the ledger is
// enabled.
func startRunLog(ctx context.Context, tool string, args []string) (*runLog, error) {
	cfg := ledgerConfig()
	if !cfg.Enabled {
		return nil, nil
	}

	l, err := ledger.Open(cfg.Path)
	if err != nil {
		return nil, err
	}
	run, err := l.StartRun(ctx, tool, args)
	if err != nil {
		l.Close()
		return nil, err
	}
	return &runLog{l: l, run: run}, nil
}

// Record implements convert.Recorder.
func (r *runLog) Record(source, target string, status types.ItemStatus, detail string) error {
	if r == nil {
		return nil
	}
	return r.run.Record(source, target, status, detail)
}

// record stores an outcome, reporting ledger errors as warnings so that a
// ledger problem never fails the data pass itself.
func (r *runLog) record(source, target string, status types.ItemStatus, detail string) {
	if err := r.Record(source, target, status, detail); err != nil {
		fmt.Fprintf(os.Stderr, "warning: ledger: %v\n", err)
	}
}

// finish stamps the run totals and closes the ledger.
func (r *runLog) finish(ctx context.Context) {
	if r == nil {
		return
	}
	defer r.l.Close()
	if err := r.run.Finish(context.WithoutCancel(ctx)); err != nil {
		fmt.Fprintf(os.Stderr, "warning: ledger: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "Recorded run %s in %s\n", r.run.ID, r.l.Path())
}

// openLedger opens the configured ledger for queries, whether or not
// recording is enabled.
func openLedger() (*ledger.Ledger, error) {
	return ledger.Open(ledgerConfig().Path)
}
