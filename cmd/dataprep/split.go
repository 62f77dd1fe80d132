// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/dataprep/internal/mdsplit"
	"github.com/pdiddy/dataprep/pkg/types"
)

var splitCmd = &cobra.Command{
	Use:   "split <input_file> <output_dir>",
	Short: "Split a Markdown file into one file per heading",
	Long: `Split writes every section of a Markdown file (a level 1-5 ATX heading
and everything up to the next heading) to output_dir as
{level}_{title}.md. Characters that are not allowed in file names are
replaced with "_", and repeated titles get a numeric suffix.

A file without headings is copied whole to {stem}_full.md. Text before
the first heading is dropped unless --keep-preamble writes it to
{stem}_preamble.md.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{
			"split.keep_preamble": "keep-preamble",
		})
	},
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().Bool("keep-preamble", false, "write text before the first heading to {stem}_preamble.md")

	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	input, outDir := args[0], args[1]

	rl, err := startRunLog(ctx, "split", args)
	if err != nil {
		return err
	}
	defer rl.finish(ctx)

	cfg := types.SplitConfig{KeepPreamble: viper.GetBool("split.keep_preamble")}
	opts := mdsplit.Options{KeepPreamble: cfg.KeepPreamble}

	summary, err := mdsplit.SplitFile(input, outDir, opts, os.Stdout)
	if err != nil {
		rl.record(input, outDir, types.ItemFailed, err.Error())
		return err
	}

	for _, path := range summary.Files {
		rl.record(input, path, types.ItemConverted, "")
	}
	return nil
}
