// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/dataprep/internal/chatml"
	"github.com/pdiddy/dataprep/pkg/types"
)

var chatmlCmd = &cobra.Command{
	Use:   "chatml <input> <output>",
	Short: "Convert ChatML-tagged text records to chat JSONL",
	Long: `ChatML reads JSON lines of the form {"text": "..."} where the text holds
turns delimited as <|im_start|>role\ncontent<|im_end|>, and writes one
{"messages": [...]} object per line. A text with no turns becomes
{"messages": []}.

Lines that are not valid JSON or have no "text" field are reported and
skipped; the command exits non-zero if any line failed.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{
			"chatml.start_tag": "start-tag",
			"chatml.end_tag":   "end-tag",
		})
	},
	RunE: runChatML,
}

func init() {
	chatmlCmd.Flags().String("start-tag", chatml.DefaultStartTag, "tag that opens a turn")
	chatmlCmd.Flags().String("end-tag", chatml.DefaultEndTag, "tag that closes a turn")

	rootCmd.AddCommand(chatmlCmd)
}

func runChatML(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	input, output := args[0], args[1]

	cfg := types.ChatMLConfig{
		StartTag: viper.GetString("chatml.start_tag"),
		EndTag:   viper.GetString("chatml.end_tag"),
	}
	tmpl := chatml.NewTemplate(cfg.StartTag, cfg.EndTag)

	rl, err := startRunLog(ctx, "chatml", args)
	if err != nil {
		return err
	}
	defer rl.finish(ctx)

	result, err := chatml.ConvertFile(input, output, tmpl, os.Stdout)
	if err != nil {
		rl.record(input, output, types.ItemFailed, err.Error())
		return err
	}

	detail := fmt.Sprintf("%d lines", result.Converted)
	rl.record(input, output, types.ItemConverted, detail)
	if result.Empty > 0 {
		rl.record(input, output, types.ItemSkipped, fmt.Sprintf("%d lines without turns written empty", result.Empty))
	}
	if result.HasFailures() {
		rl.record(input, output, types.ItemFailed, fmt.Sprintf("%d malformed lines", result.Failed))
		return fmt.Errorf("%d line(s) failed conversion", result.Failed)
	}
	return nil
}
