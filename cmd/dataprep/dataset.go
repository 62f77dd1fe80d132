// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/dataprep/internal/dataset"
	"github.com/pdiddy/dataprep/pkg/types"
)

const defaultTokenEncoding = "cl100k_base"

var dialogueCmd = &cobra.Command{
	Use:   "dialogue <input> <train_out> <valid_out>",
	Short: "Convert speaker-labelled dialogues to train/valid JSONL",
	Long: `Dialogue reads blocks separated by blank lines. Each line of a block is
"speaker: text"; the assistant speaker (default "A") becomes the
assistant turn and every other speaker becomes the user. Every record
starts with the system prompt.

Records are shuffled and split 90/10 into train_out and valid_out. Use
--seed to make the shuffle reproducible.`,
	Args:    cobra.ExactArgs(3),
	PreRunE: bindDatasetFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := datasetConfig()
		p := dataset.DialogueParser{
			AssistantSpeaker: cfg.AssistantSpeaker,
			SystemPrompt:     cfg.SystemPrompt,
		}
		return runDataset(cmd, "dialogue", args, p, cfg)
	},
}

var qaCmd = &cobra.Command{
	Use:   "qa <input> <train_out> <valid_out>",
	Short: "Convert question/answer pairs to train/valid JSONL",
	Long: `QA reads blocks separated by blank lines. A line starting with the
question marker (default "问：") holds the question and a line starting
with the answer marker (default "答：") holds the answer. Blocks missing
either are reported and kept as a record holding only the system prompt.

Records are shuffled and split 90/10 into train_out and valid_out. Use
--seed to make the shuffle reproducible.`,
	Args: cobra.ExactArgs(3),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bindDatasetFlags(cmd, args); err != nil {
			return err
		}
		return bindFlags(cmd, map[string]string{
			"qa.question_marker": "question-marker",
			"qa.answer_marker":   "answer-marker",
		})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := datasetConfig()
		qa := types.QAConfig{
			QuestionMarker: viper.GetString("qa.question_marker"),
			AnswerMarker:   viper.GetString("qa.answer_marker"),
		}
		p := dataset.QAParser{
			QuestionMarker: qa.QuestionMarker,
			AnswerMarker:   qa.AnswerMarker,
			SystemPrompt:   cfg.SystemPrompt,
		}
		return runDataset(cmd, "qa", args, p, cfg)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{dialogueCmd, qaCmd} {
		cmd.Flags().Int64("seed", 0, "shuffle seed (0 = time-based, printed for reuse)")
		cmd.Flags().Float64("train-ratio", dataset.DefaultTrainRatio, "fraction of records written to the train split")
		cmd.Flags().String("system-prompt", types.DefaultSystemPrompt, "content of the leading system message")
		cmd.Flags().Bool("count-tokens", false, "report token totals for each split")
		cmd.Flags().String("encoding", defaultTokenEncoding, "tiktoken encoding used by --count-tokens")
	}
	dialogueCmd.Flags().String("assistant-speaker", dataset.DefaultAssistantSpeaker, "speaker label mapped to the assistant role")
	qaCmd.Flags().String("question-marker", dataset.DefaultQuestionMarker, "line prefix of the question")
	qaCmd.Flags().String("answer-marker", dataset.DefaultAnswerMarker, "line prefix of the answer")

	rootCmd.AddCommand(dialogueCmd)
	rootCmd.AddCommand(qaCmd)
}

func bindDatasetFlags(cmd *cobra.Command, _ []string) error {
	keys := map[string]string{
		"dataset.seed":           "seed",
		"dataset.train_ratio":    "train-ratio",
		"dataset.system_prompt":  "system-prompt",
		"dataset.count_tokens":   "count-tokens",
		"dataset.token_encoding": "encoding",
	}
	if cmd.Flags().Lookup("assistant-speaker") != nil {
		keys["dataset.assistant_speaker"] = "assistant-speaker"
	}
	return bindFlags(cmd, keys)
}

func datasetConfig() types.DatasetConfig {
	return types.DatasetConfig{
		SystemPrompt:     viper.GetString("dataset.system_prompt"),
		TrainRatio:       viper.GetFloat64("dataset.train_ratio"),
		Seed:             viper.GetInt64("dataset.seed"),
		AssistantSpeaker: viper.GetString("dataset.assistant_speaker"),
		CountTokens:      viper.GetBool("dataset.count_tokens"),
		TokenEncoding:    viper.GetString("dataset.token_encoding"),
	}
}

func runDataset(cmd *cobra.Command, tool string, args []string, p dataset.Parser, cfg types.DatasetConfig) error {
	ctx := cmd.Context()
	input, trainPath, validPath := args[0], args[1], args[2]

	rng, seed := dataset.NewRand(cfg.Seed)
	fmt.Fprintf(os.Stdout, "shuffle seed: %d\n", seed)

	opts := dataset.Options{TrainRatio: cfg.TrainRatio, Rand: rng}
	if cfg.CountTokens {
		counter, err := dataset.NewTiktokenCounter(cfg.TokenEncoding)
		if err != nil {
			return err
		}
		opts.Counter = counter
	}

	rl, err := startRunLog(ctx, tool, args)
	if err != nil {
		return err
	}
	defer rl.finish(ctx)

	result, err := dataset.ConvertFile(input, trainPath, validPath, p, opts, os.Stdout)
	if err != nil {
		rl.record(input, "", types.ItemFailed, err.Error())
		return err
	}

	rl.record(input, trainPath, types.ItemConverted, fmt.Sprintf("%d records", result.Train.Records))
	rl.record(input, validPath, types.ItemConverted, fmt.Sprintf("%d records", result.Valid.Records))
	if result.Skipped > 0 {
		rl.record(input, "", types.ItemSkipped, fmt.Sprintf("%d of %d blocks without turns", result.Skipped, result.Blocks))
	}
	return nil
}
