// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mdsplit splits a Markdown document into one file per heading.
// Headings of level 1-5 delimit contiguous spans; each span runs from its
// heading line up to the next heading of any level.
package mdsplit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdiddy/dataprep/pkg/types"
)

// headingPattern matches ATX headings with one to five '#' characters.
// The separator is restricted to spaces and tabs so a bare "#" line never
// swallows the line after it.
var headingPattern = regexp.MustCompile(`(?m)^(#{1,5})[ \t]+(.+)$`)

// Document is the result of scanning Markdown content for headings.
type Document struct {
	// Preamble is the text before the first heading. It is the whole
	// content when there are no headings.
	Preamble string

	// Sections lists the heading spans in document order.
	Sections []types.Section
}

// Split partitions content into heading spans. Preamble followed by every
// section Body, in order, reproduces content exactly.
func Split(content string) Document {
	matches := headingPattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return Document{Preamble: content}
	}

	doc := Document{
		Preamble: content[:matches[0][0]],
		Sections: make([]types.Section, 0, len(matches)),
	}
	for i, m := range matches {
		end := len(content)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		doc.Sections = append(doc.Sections, types.Section{
			Level:  m[3] - m[2],
			Title:  strings.TrimSpace(content[m[4]:m[5]]),
			Body:   content[m[0]:end],
			Offset: m[0],
		})
	}
	return doc
}

// Summary reports the files written by WriteFiles.
type Summary struct {
	Files    []string
	Renamed  int
	Fallback bool
}

// Options controls what WriteFiles writes besides the sections.
type Options struct {
	// KeepPreamble writes non-blank text before the first heading to
	// {stem}_preamble.md. By default that text is dropped.
	KeepPreamble bool
}

// WriteFiles writes each section of doc to outDir as {level}_{title}.md, one
// file per heading. Section files hold the span with surrounding whitespace
// trimmed. When doc has no sections the whole content goes to {stem}_full.md.
func WriteFiles(doc Document, stem, outDir string, opts Options, w io.Writer) (Summary, error) {
	var summary Summary

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return summary, fmt.Errorf("creating output directory %s: %w", outDir, err)
	}

	if len(doc.Sections) == 0 {
		path := filepath.Join(outDir, stem+"_full.md")
		if err := os.WriteFile(path, []byte(doc.Preamble), 0o644); err != nil {
			return summary, fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(w, "no headings found, saved whole file as: %s\n", path)
		summary.Files = append(summary.Files, path)
		summary.Fallback = true
		return summary, nil
	}

	namer := NewNamer()

	switch {
	case strings.TrimSpace(doc.Preamble) == "":
	case !opts.KeepPreamble:
		fmt.Fprintln(w, "text before the first heading not saved")
	default:
		name := namer.Reserve(stem + "_preamble.md")
		path := filepath.Join(outDir, name)
		if err := os.WriteFile(path, []byte(strings.TrimSpace(doc.Preamble)), 0o644); err != nil {
			return summary, fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(w, "saved preamble: %s\n", name)
		summary.Files = append(summary.Files, path)
	}

	for _, s := range doc.Sections {
		name, renamed := namer.Name(s)
		if renamed {
			summary.Renamed++
		}
		path := filepath.Join(outDir, name)
		if err := os.WriteFile(path, []byte(strings.TrimSpace(s.Body)), 0o644); err != nil {
			return summary, fmt.Errorf("writing %s: %w", path, err)
		}
		if renamed {
			fmt.Fprintf(w, "saved section: %s (renamed, duplicate title %q)\n", name, s.Title)
		} else {
			fmt.Fprintf(w, "saved section: %s\n", name)
		}
		summary.Files = append(summary.Files, path)
	}

	return summary, nil
}

// SplitFile reads the Markdown file at inputPath and writes its sections to
// outDir.
func SplitFile(inputPath, outDir string, opts Options, w io.Writer) (Summary, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Summary{}, fmt.Errorf("input file %s does not exist", inputPath)
		}
		return Summary{}, fmt.Errorf("reading %s: %w", inputPath, err)
	}

	ext := strings.ToLower(filepath.Ext(inputPath))
	if ext != ".md" && ext != ".markdown" {
		fmt.Fprintf(w, "warning: input file %s may not be a Markdown file\n", inputPath)
	}

	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	doc := Split(string(data))
	return WriteFiles(doc, stem, outDir, opts, w)
}
