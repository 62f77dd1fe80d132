// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/dataprep/internal/container"
	"github.com/pdiddy/dataprep/internal/convert"
	"github.com/pdiddy/dataprep/pkg/types"
)

var pdfCmd = &cobra.Command{
	Use:   "pdf <input_dir> <output_dir>",
	Short: "Convert a directory tree of PDFs to Markdown",
	Long: `Pdf walks input_dir recursively and converts every .pdf file to Markdown
with the marker converter running in a docker or podman container. Each
output mirrors the input's relative path under output_dir with a .md
extension.

Files whose output already exists are skipped unless --overwrite is set.
A failed file is reported with the converter's output and the batch
continues; the command exits non-zero if any file failed.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{
			"pdf.max_pages":        "max-pages",
			"pdf.parallel_factor":  "parallel-factor",
			"pdf.batch_multiplier": "batch-multiplier",
			"pdf.langs":            "langs",
			"pdf.image":            "image",
			"pdf.validate":         "validate",
			"pdf.overwrite":        "overwrite",
			"pdf.runtime":          "runtime",
		})
	},
	RunE: runPDF,
}

func init() {
	pdfCmd.Flags().Int("max-pages", 10, "maximum pages converted per PDF (0 = no limit)")
	pdfCmd.Flags().Int("parallel-factor", 2, "parallel factor passed to marker")
	pdfCmd.Flags().Int("batch-multiplier", 2, "batch multiplier passed to marker (0 = marker default)")
	pdfCmd.Flags().String("langs", "", "comma-separated language hint passed to marker")
	pdfCmd.Flags().String("image", convert.DefaultMarkerImage, "marker container image")
	pdfCmd.Flags().Bool("validate", false, "skip PDFs that cannot be opened before running marker")
	pdfCmd.Flags().Bool("overwrite", false, "re-convert PDFs whose Markdown output already exists")
	pdfCmd.Flags().String("runtime", "", "container runtime: docker or podman (default: detect)")

	rootCmd.AddCommand(pdfCmd)
}

func pdfConfig() types.PDFConfig {
	return types.PDFConfig{
		Image:           viper.GetString("pdf.image"),
		MaxPages:        viper.GetInt("pdf.max_pages"),
		ParallelFactor:  viper.GetInt("pdf.parallel_factor"),
		BatchMultiplier: viper.GetInt("pdf.batch_multiplier"),
		Langs:           viper.GetString("pdf.langs"),
		Validate:        viper.GetBool("pdf.validate"),
		Overwrite:       viper.GetBool("pdf.overwrite"),
	}
}

func containerRuntime() (container.Runtime, error) {
	if name := viper.GetString("pdf.runtime"); name != "" {
		return container.NamedRuntime(name)
	}
	return container.DetectRuntime()
}

func runPDF(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	inDir, outDir := args[0], args[1]
	cfg := pdfConfig()

	rt, err := containerRuntime()
	if err != nil {
		return err
	}
	conv, err := convert.NewMarkerConverter(rt, cfg)
	if err != nil {
		return err
	}

	var validator convert.Validator
	if cfg.Validate {
		validator = convert.PDFProbe{}
	}

	rl, err := startRunLog(ctx, "pdf", args)
	if err != nil {
		return err
	}
	defer rl.finish(ctx)

	opts := convert.Options{Overwrite: cfg.Overwrite}
	if rl != nil {
		opts.Recorder = rl
	}

	fmt.Fprintf(os.Stdout, "Converting %s -> %s with %s (%s)\n", inDir, outDir, cfg.Image, rt.Name())
	result, err := convert.ConvertTree(ctx, conv, validator, inDir, outDir, opts, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d PDF(s) failed conversion", result.Failed)
	}
	return nil
}
