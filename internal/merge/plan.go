// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"

	"go.yaml.in/yaml/v3"
)

// Plan is the on-disk form of a merge job, so a dataset mix can be kept
// under version control and rerun with the same seed.
type Plan struct {
	Filename string   `yaml:"filename"`
	Output   string   `yaml:"output"`
	Seed     int64    `yaml:"seed,omitempty"`
	Sources  []Source `yaml:"sources"`
}

// Validate checks that the plan names a file, an output, and valid sources.
func (p *Plan) Validate() error {
	if p.Filename == "" {
		return errors.New("plan: filename is required")
	}
	if p.Output == "" {
		return errors.New("plan: output is required")
	}
	if len(p.Sources) == 0 {
		return ErrNoSources
	}
	for _, s := range p.Sources {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("plan: %w", err)
		}
	}
	return nil
}

// MaxLines returns the sum of requested line counts, an upper bound on the
// merged output.
func (p *Plan) MaxLines() int {
	total := 0
	for _, s := range p.Sources {
		total += s.Lines
	}
	return total
}

// Execute merges the plan's sources into its output and reports the merged
// line count against MaxLines.
func (p *Plan) Execute(rng *rand.Rand, w io.Writer) (Result, error) {
	result, err := Merge(p.Filename, p.Output, p.Sources, rng, w)
	if err != nil {
		return result, err
	}
	fmt.Fprintf(w, "%d of at most %d requested lines\n", result.Lines, p.MaxLines())
	return result, nil
}

// ReadPlan loads a merge plan from a YAML file.
func ReadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing plan file: %w", err)
	}
	return &p, nil
}

// WritePlan saves a merge plan as YAML.
func WritePlan(path string, p *Plan) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling plan file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
