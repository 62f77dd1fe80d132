// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge samples the leading lines of same-named files from several
// directories and writes them, shuffled, to a single output file.
package merge

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
)

var (
	// ErrOddArgs is returned when directory/count arguments are not paired.
	ErrOddArgs = errors.New("every directory needs a line count")

	// ErrNoSources is returned when no directory/count pairs are given.
	ErrNoSources = errors.New("at least one directory and line count is required")
)

// Source is one directory to sample and the maximum number of lines to take
// from its copy of the target file.
type Source struct {
	Dir   string `yaml:"dir"`
	Lines int    `yaml:"lines"`
}

// ParseSources pairs up "dir count dir count ..." arguments. Each directory
// must exist and each count must be a non-negative integer.
func ParseSources(args []string) ([]Source, error) {
	if len(args) == 0 {
		return nil, ErrNoSources
	}
	if len(args)%2 != 0 {
		return nil, ErrOddArgs
	}

	sources := make([]Source, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		dir := args[i]
		n, err := strconv.Atoi(args[i+1])
		if err != nil {
			return nil, fmt.Errorf("line count must be an integer, got %q", args[i+1])
		}
		src := Source{Dir: dir, Lines: n}
		if err := src.Validate(); err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// Validate checks that the directory exists and the count is not negative.
func (s Source) Validate() error {
	if s.Lines < 0 {
		return fmt.Errorf("line count for %s must not be negative, got %d", s.Dir, s.Lines)
	}
	info, err := os.Stat(s.Dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("directory %s does not exist", s.Dir)
	}
	return nil
}

// ReadHead returns up to n lines from the start of the file at path,
// stopping early at end of file. Line endings are preserved; a final line
// without one gets "\n" so it stays a separate line after shuffling.
func ReadHead(path string, n int) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	lines := make([]string, 0, min(n, 1024))
	for len(lines) < n {
		line, err := br.ReadString('\n')
		if line != "" {
			if line[len(line)-1] != '\n' {
				line += "\n"
			}
			lines = append(lines, line)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return lines, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	return lines, nil
}

// Result summarizes a merge run.
type Result struct {
	// Taken maps each source directory to the number of lines it supplied.
	Taken   map[string]int
	Missing []string
	Lines   int
}

// Merge reads filename from every source directory, shuffles the collected
// lines with rng, and writes them to outPath. Sources whose file is missing
// are reported to w and skipped.
func Merge(filename, outPath string, sources []Source, rng *rand.Rand, w io.Writer) (Result, error) {
	result := Result{Taken: make(map[string]int)}

	var all []string
	for _, src := range sources {
		path := filepath.Join(src.Dir, filename)
		if _, err := os.Stat(path); err != nil {
			fmt.Fprintf(w, "warning: file %s does not exist, skipped\n", path)
			result.Missing = append(result.Missing, path)
			continue
		}

		lines, err := ReadHead(path, src.Lines)
		if err != nil {
			return result, err
		}
		all = append(all, lines...)
		result.Taken[src.Dir] += len(lines)
		fmt.Fprintf(w, "took %d lines from %s\n", len(lines), path)
	}

	rng.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})

	if err := writeLines(outPath, all); err != nil {
		return result, err
	}
	result.Lines = len(all)

	fmt.Fprintf(w, "merge complete: %s, %d lines\n", outPath, len(all))
	return result, nil
}

func writeLines(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	for _, l := range lines {
		if _, err := bw.WriteString(l); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
