// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dataprep/internal/ledger"
	"github.com/pdiddy/dataprep/pkg/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect the run ledger (list, show, export)",
	Long: `Runs queries the SQLite run ledger written by commands started with
--ledger (or ledger.enabled in dataprep.yaml). Use subcommands to list
recent runs, show the items of one run, or export the ledger.`,
}

// --- list subcommand ---

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

func runRunsList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	l, err := openLedger()
	if err != nil {
		return err
	}
	defer l.Close()

	runs, err := l.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRuns(runs, jsonOutput)
}

func formatRuns(runs []ledger.RunSummary, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-8s  %-8s  %-19s  %9s  %7s  %6s\n",
		"ID", "Tool", "Started", "Converted", "Skipped", "Failed")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 68))
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%-8s  %-8s  %-19s  %9d  %7d  %6d\n",
			shortID(r.ID), r.Tool, r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Converted, r.Skipped, r.Failed)
	}
	fmt.Fprintf(os.Stdout, "\n%d runs\n", len(runs))
	return nil
}

// shortID abbreviates a run ID for the list table.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// --- show subcommand ---

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run and its recorded items",
	Long: `Show prints a run's command line and totals followed by every recorded
item. The run ID may be abbreviated to any unique prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: runRunsShow,
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	status, _ := cmd.Flags().GetString("status")
	switch types.ItemStatus(status) {
	case "", types.ItemConverted, types.ItemSkipped, types.ItemFailed:
	default:
		return fmt.Errorf("unsupported status %q: use converted, skipped, or failed", status)
	}

	l, err := openLedger()
	if err != nil {
		return err
	}
	defer l.Close()

	run, err := l.Lookup(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	items, err := l.Items(cmd.Context(), run.ID, types.ItemStatus(status))
	if err != nil {
		return err
	}

	fmt.Printf("Run:      %s\n", run.ID)
	fmt.Printf("Tool:     %s\n", run.Tool)
	fmt.Printf("Args:     %s\n", strings.Join(run.Args, " "))
	fmt.Printf("Started:  %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if run.FinishedAt == nil {
		fmt.Println("Finished: (did not finish)")
	} else {
		fmt.Printf("Finished: %s (%s)\n", run.FinishedAt.Local().Format("2006-01-02 15:04:05"),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	}
	fmt.Printf("Totals:   %d converted, %d skipped, %d failed\n\n", run.Converted, run.Skipped, run.Failed)

	for _, it := range items {
		line := fmt.Sprintf("%-10s %s", string(it.Status)+":", it.Source)
		if it.Target != "" {
			line += " -> " + it.Target
		}
		if it.Detail != "" {
			line += " (" + it.Detail + ")"
		}
		fmt.Println(line)
	}
	return nil
}

// --- export subcommand ---

var runsExportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export recent runs and their items to YAML or JSON",
	Long: `Export writes recent runs, each with its recorded items, to path
(default .dataprep/runs.yaml or .dataprep/runs.json).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRunsExport,
}

func runRunsExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	limit, _ := cmd.Flags().GetInt("limit")

	l, err := openLedger()
	if err != nil {
		return err
	}
	defer l.Close()

	path := ".dataprep/runs." + format
	if len(args) == 1 {
		path = args[0]
	}

	switch format {
	case "yaml":
		err = l.ExportYAML(cmd.Context(), path, limit)
	case "json":
		err = l.ExportJSON(cmd.Context(), path, limit)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}

func init() {
	runsListCmd.Flags().Int("limit", 0, "maximum runs listed (0 = 20)")
	runsListCmd.Flags().Bool("json", false, "output runs as JSON")

	runsShowCmd.Flags().String("status", "", "only show items with this status: converted, skipped, or failed")

	runsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	runsExportCmd.Flags().Int("limit", 0, "maximum runs exported (0 = 20)")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsExportCmd)

	rootCmd.AddCommand(runsCmd)
}
