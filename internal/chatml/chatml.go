// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chatml converts line-delimited JSON records whose "text" field
// holds tag-delimited chat turns into chat-format records.
//
// A turn looks like "<|im_start|>role\ncontent<|im_end|>": the start tag, the
// role up to the first newline, then the content up to the end tag.
package chatml

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pdiddy/dataprep/pkg/types"
)

const (
	DefaultStartTag = "<|im_start|>"
	DefaultEndTag   = "<|im_end|>"

	// maxLineSize bounds a single input record.
	maxLineSize = 64 << 20
)

// ErrNoText is returned for input records without a "text" string.
var ErrNoText = errors.New(`record has no "text" field`)

// Template recognises turns delimited by Start and End.
type Template struct {
	Start string
	End   string

	re *regexp.Regexp
}

// NewTemplate compiles a template for the given tags. Empty tags fall back
// to the ChatML defaults.
func NewTemplate(start, end string) Template {
	if start == "" {
		start = DefaultStartTag
	}
	if end == "" {
		end = DefaultEndTag
	}
	pattern := `(?s)` + regexp.QuoteMeta(start) + `(.*?)\n(.*?)` + regexp.QuoteMeta(end)
	return Template{Start: start, End: end, re: regexp.MustCompile(pattern)}
}

// Parse extracts every (role, content) turn from text. Role and content are
// trimmed of surrounding whitespace.
func (t Template) Parse(text string) []types.Message {
	re := t.re
	if re == nil {
		re = NewTemplate(t.Start, t.End).re
	}

	matches := re.FindAllStringSubmatch(text, -1)
	msgs := make([]types.Message, 0, len(matches))
	for _, m := range matches {
		msgs = append(msgs, types.Message{
			Role:    types.Role(strings.TrimSpace(m[1])),
			Content: strings.TrimSpace(m[2]),
		})
	}
	return msgs
}

// Result summarizes a conversion run. Empty counts lines written as a record
// with no messages because their text held no turns.
type Result struct {
	Converted int
	Empty     int
	Failed    int
}

// Total returns the number of non-blank input lines.
func (r Result) Total() int {
	return r.Converted + r.Empty + r.Failed
}

// HasFailures reports whether any line could not be decoded.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

type inputRecord struct {
	Text *string `json:"text"`
}

// ConvertStream reads JSONL records from r and writes one chat record per
// decodable line to out. A line whose text holds no turns is written as
// {"messages":[]}. Undecodable lines are reported to w and written nowhere.
func ConvertStream(r io.Reader, out io.Writer, tmpl Template, w io.Writer) (Result, error) {
	var result Result

	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var in inputRecord
		if err := json.Unmarshal([]byte(line), &in); err != nil {
			fmt.Fprintf(w, "failed:  line %d (invalid JSON: %v)\n", lineNo, err)
			result.Failed++
			continue
		}
		if in.Text == nil {
			fmt.Fprintf(w, "failed:  line %d (%v)\n", lineNo, ErrNoText)
			result.Failed++
			continue
		}

		rec := types.ChatRecord{Messages: tmpl.Parse(*in.Text)}
		if err := enc.Encode(rec); err != nil {
			return result, fmt.Errorf("writing record for line %d: %w", lineNo, err)
		}
		if len(rec.Turns()) == 0 {
			fmt.Fprintf(w, "empty:   line %d (no turns found)\n", lineNo)
			result.Empty++
			continue
		}
		result.Converted++
	}
	if err := sc.Err(); err != nil {
		return result, fmt.Errorf("reading input at line %d: %w", lineNo+1, err)
	}
	return result, nil
}

// ConvertFile converts the JSONL file at inPath into outPath.
func ConvertFile(inPath, outPath string, tmpl Template, w io.Writer) (Result, error) {
	in, err := os.Open(inPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, fmt.Errorf("input file %s not found", inPath)
		}
		return Result{}, fmt.Errorf("opening %s: %w", inPath, err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return Result{}, fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer out.Close()

	bw := bufio.NewWriter(out)
	result, err := ConvertStream(in, bw, tmpl, w)
	if err != nil {
		return result, err
	}
	if err := bw.Flush(); err != nil {
		return result, fmt.Errorf("writing %s: %w", outPath, err)
	}

	fmt.Fprintf(w, "\nconverted: %d, empty: %d, failed: %d; output saved to %s\n",
		result.Converted, result.Empty, result.Failed, outPath)
	return result, out.Close()
}
