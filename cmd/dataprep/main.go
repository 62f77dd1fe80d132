// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the dataprep CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the dataprep CLI.
var rootCmd = &cobra.Command{
	Use:   "dataprep",
	Short: "Prepare documents and chat datasets for fine-tuning",
	Long: `dataprep turns raw material into fine-tuning data. Each subcommand is an
independent pass that reads its inputs, transforms them, and writes its
outputs:

  pdf       convert a directory tree of PDFs to Markdown with marker
  split     split a Markdown file into one file per heading
  dialogue  convert speaker-labelled dialogues to train/valid JSONL
  qa        convert question/answer pairs to train/valid JSONL
  chatml    convert ChatML-tagged text records to chat JSONL
  merge     merge and shuffle lines from several source directories
  runs      inspect the run ledger

Defaults can be set in dataprep.yaml or through DATAPREP_* environment
variables; explicit flags win.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./dataprep.yaml or ~/.config/dataprep/config.yaml)")
	rootCmd.PersistentFlags().Bool("ledger", false, "record this run in the run ledger")
	rootCmd.PersistentFlags().String("ledger-path", "", "run ledger database (default .dataprep/ledger.db)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("dataprep")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "dataprep"))
		}
	}

	viper.SetEnvPrefix("DATAPREP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindPFlag("ledger.enabled", rootCmd.PersistentFlags().Lookup("ledger"))
	viper.BindPFlag("ledger.path", rootCmd.PersistentFlags().Lookup("ledger-path"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindFlags binds the named flags of cmd to viper keys. Binding happens when
// the command runs so that commands sharing keys (dialogue and qa) each
// bind their own flags.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, name := range keys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			return fmt.Errorf("unknown flag %q for key %s", name, key)
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding %s: %w", key, err)
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
