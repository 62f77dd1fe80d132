// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert batch-converts a directory tree of PDF files to Markdown
// with a pluggable external converter. The output tree mirrors the input
// tree, with each .pdf replaced by a .md file.
package convert

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/dataprep/pkg/types"
)

// Converter transforms one PDF file into a Markdown file. Different tools
// (the marker container, test fakes) implement this interface.
type Converter interface {
	// Convert reads the PDF at src, writes Markdown to dst, and returns any
	// text the tool printed.
	Convert(ctx context.Context, src, dst string) (string, error)
}

// Validator checks that a PDF can be opened before conversion.
type Validator interface {
	Validate(path string) error
}

// Recorder receives every per-file outcome, e.g. to persist it in the run
// ledger.
type Recorder interface {
	Record(source, target string, status types.ItemStatus, detail string) error
}

// Job is one PDF to convert.
type Job struct {
	// Source is the PDF path.
	Source string
	// Rel is Source relative to the input directory.
	Rel string
	// Target is the Markdown path under the output directory.
	Target string
}

// Outcome is the result of converting a single Job.
type Outcome struct {
	Job    Job
	Status types.ItemStatus
	// Reason distinguishes skips: "invalid" or "exists".
	Reason string
	Err    error
	// Output is the converter's captured output.
	Output string
}

const (
	reasonInvalid = "invalid"
	reasonExists  = "exists"
)

// Options controls a conversion run.
type Options struct {
	// Overwrite re-converts files whose Markdown output already exists.
	Overwrite bool
	// Recorder, when set, is told about every outcome.
	Recorder Recorder
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Invalid   int
	Existing  int
	Failed    int
	Outcomes  []Outcome
}

// Skipped returns the number of files that were not converted on purpose.
func (r BatchResult) Skipped() int {
	return r.Invalid + r.Existing
}

// Total returns the total number of PDFs processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped() + r.Failed
}

// HasFailures reports whether any PDF failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

func (r *BatchResult) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch {
	case o.Status == types.ItemConverted:
		r.Converted++
	case o.Status == types.ItemSkipped && o.Reason == reasonInvalid:
		r.Invalid++
	case o.Status == types.ItemSkipped:
		r.Existing++
	default:
		r.Failed++
	}
}

// Discover walks inDir recursively and returns a Job for every file with a
// .pdf extension (any case), in lexical path order. Targets mirror the
// relative path under outDir with a .md extension.
func Discover(inDir, outDir string) ([]Job, error) {
	var jobs []Job
	err := filepath.WalkDir(inDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}
		rel, err := filepath.Rel(inDir, path)
		if err != nil {
			return err
		}
		jobs = append(jobs, Job{
			Source: path,
			Rel:    rel,
			Target: filepath.Join(outDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".md"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", inDir, err)
	}
	return jobs, nil
}

// ConvertOne converts a single job. A nil Validator skips validation. It
// never returns an error: every failure is reported in the Outcome.
func ConvertOne(ctx context.Context, c Converter, v Validator, job Job, opts Options, w io.Writer) Outcome {
	o := Outcome{Job: job}

	if v != nil {
		if err := v.Validate(job.Source); err != nil {
			fmt.Fprintf(w, "skipped: %s (invalid PDF: %v)\n", job.Rel, err)
			o.Status, o.Reason, o.Err = types.ItemSkipped, reasonInvalid, err
			return o
		}
	}

	if !opts.Overwrite {
		if _, err := os.Stat(job.Target); err == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", job.Rel)
			o.Status, o.Reason = types.ItemSkipped, reasonExists
			return o
		}
	}

	if err := os.MkdirAll(filepath.Dir(job.Target), 0o755); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", job.Rel, err)
		o.Status, o.Err = types.ItemFailed, err
		return o
	}

	out, err := c.Convert(ctx, job.Source, job.Target)
	o.Output = out
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", job.Rel, err)
		o.Status, o.Err = types.ItemFailed, err
		return o
	}

	fmt.Fprintf(w, "converted: %s -> %s\n", job.Source, job.Target)
	o.Status = types.ItemConverted
	return o
}

// ConvertTree converts every PDF under inDir into outDir. A missing input
// directory is an error; per-file failures are reported to w and counted,
// and processing continues with the next file. Cancelling ctx stops the run
// before the next file starts.
func ConvertTree(ctx context.Context, c Converter, v Validator, inDir, outDir string, opts Options, w io.Writer) (BatchResult, error) {
	var result BatchResult

	info, err := os.Stat(inDir)
	if err != nil || !info.IsDir() {
		return result, fmt.Errorf("input directory %s does not exist", inDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return result, fmt.Errorf("creating output directory %s: %w", outDir, err)
	}

	jobs, err := Discover(inDir, outDir)
	if err != nil {
		return result, err
	}

	fmt.Fprintf(w, "processing directory: %s (%d PDF files)\n", inDir, len(jobs))
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		o := ConvertOne(ctx, c, v, job, opts, w)
		result.add(o)

		if opts.Recorder != nil {
			detail := o.Reason
			if o.Err != nil {
				detail = o.Err.Error()
			}
			if err := opts.Recorder.Record(job.Source, job.Target, o.Status, detail); err != nil {
				fmt.Fprintf(w, "warning: recording %s: %v\n", job.Rel, err)
			}
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped (%d invalid, %d existing), %d failed (total: %d)\n",
		result.Converted, result.Skipped(), result.Invalid, result.Existing, result.Failed, result.Total())
	return result, nil
}
