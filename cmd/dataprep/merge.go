// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dataprep/internal/dataset"
	"github.com/pdiddy/dataprep/internal/merge"
	"github.com/pdiddy/dataprep/pkg/types"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <filename> <output> <dir1> <count1> [<dir2> <count2> ...]",
	Short: "Merge and shuffle lines from several source directories",
	Long: `Merge reads the first count lines of filename from each source directory,
shuffles all collected lines together, and writes them to output. A
source directory without the file is reported and skipped.

Instead of positional arguments a YAML plan can be given with --plan:

  filename: train.jsonl
  output: merged/train.jsonl
  seed: 42
  sources:
    - dir: data/a
      lines: 5000
    - dir: data/b
      lines: 3000

--save-plan writes the plan built from the positional arguments so the
merge can be repeated.`,
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().String("plan", "", "YAML merge plan (replaces positional arguments)")
	mergeCmd.Flags().String("save-plan", "", "write the merge plan, including the seed used, to this file")
	mergeCmd.Flags().Int64("seed", 0, "shuffle seed (0 = plan seed or time-based)")

	rootCmd.AddCommand(mergeCmd)
}

func mergePlan(cmd *cobra.Command, args []string) (*merge.Plan, error) {
	planPath, _ := cmd.Flags().GetString("plan")
	if planPath != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("--plan cannot be combined with positional arguments")
		}
		return merge.ReadPlan(planPath)
	}

	if len(args) < 2 {
		return nil, fmt.Errorf("usage: %s", cmd.UseLine())
	}
	sources, err := merge.ParseSources(args[2:])
	if err != nil {
		return nil, err
	}
	return &merge.Plan{Filename: args[0], Output: args[1], Sources: sources}, nil
}

func runMerge(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	plan, err := mergePlan(cmd, args)
	if err != nil {
		return err
	}
	if err := plan.Validate(); err != nil {
		return err
	}

	if cmd.Flags().Changed("seed") {
		plan.Seed, _ = cmd.Flags().GetInt64("seed")
	}
	rng, seed := dataset.NewRand(plan.Seed)
	plan.Seed = seed
	fmt.Fprintf(os.Stdout, "shuffle seed: %d\n", seed)

	if savePath, _ := cmd.Flags().GetString("save-plan"); savePath != "" {
		if err := merge.WritePlan(savePath, plan); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "plan saved to %s\n", savePath)
	}

	if dir := filepath.Dir(plan.Output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	runArgs := args
	if planPath, _ := cmd.Flags().GetString("plan"); planPath != "" {
		runArgs = []string{"--plan", planPath}
	}
	rl, err := startRunLog(ctx, "merge", runArgs)
	if err != nil {
		return err
	}
	defer rl.finish(ctx)

	result, err := plan.Execute(rng, os.Stdout)
	if err != nil {
		rl.record(plan.Filename, plan.Output, types.ItemFailed, err.Error())
		return err
	}

	for _, src := range plan.Sources {
		path := filepath.Join(src.Dir, plan.Filename)
		if n, ok := result.Taken[src.Dir]; ok {
			rl.record(path, plan.Output, types.ItemConverted, fmt.Sprintf("%d lines", n))
		}
	}
	for _, path := range result.Missing {
		rl.record(path, plan.Output, types.ItemSkipped, "missing")
	}
	return nil
}
