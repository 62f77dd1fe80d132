// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestParseSources(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	require.NoError(t, os.Mkdir(a, 0o755))

	tests := []struct {
		name    string
		args    []string
		want    []Source
		wantErr string
	}{
		{name: "single pair", args: []string{a, "10"}, want: []Source{{Dir: a, Lines: 10}}},
		{name: "two pairs", args: []string{a, "1", a, "0"}, want: []Source{{Dir: a, Lines: 1}, {Dir: a, Lines: 0}}},
		{name: "empty", args: nil, wantErr: "at least one"},
		{name: "odd arity", args: []string{a, "1", a}, wantErr: "needs a line count"},
		{name: "non integer", args: []string{a, "ten"}, wantErr: "must be an integer"},
		{name: "negative", args: []string{a, "-1"}, wantErr: "must not be negative"},
		{name: "missing dir", args: []string{filepath.Join(dir, "zz"), "1"}, wantErr: "does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSources(tt.args)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadHead(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "f.txt", "one\ntwo\r\nthree")
	path := filepath.Join(dir, "f.txt")

	tests := []struct {
		n    int
		want []string
	}{
		{0, []string{}},
		{1, []string{"one\n"}},
		{2, []string{"one\n", "two\r\n"}},
		{3, []string{"one\n", "two\r\n", "three\n"}},
		{10, []string{"one\n", "two\r\n", "three\n"}},
	}
	for _, tt := range tests {
		got, err := ReadHead(path, tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "n=%d", tt.n)
	}
}

func TestMergeShortSource(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "A")
	b := filepath.Join(root, "B")
	writeFile(t, a, "data.jsonl", "a1\na2\n")
	writeFile(t, b, "data.jsonl", "b1\nb2\nb3\nb4\n")

	out := filepath.Join(root, "merged.jsonl")
	var log bytes.Buffer
	res, err := Merge("data.jsonl", out, []Source{{Dir: a, Lines: 5}, {Dir: b, Lines: 3}},
		rand.New(rand.NewSource(9)), &log)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Lines)
	assert.Equal(t, 2, res.Taken[a])
	assert.Equal(t, 3, res.Taken[b])

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	sort.Strings(lines)
	assert.Equal(t, []string{"a1", "a2", "b1", "b2", "b3"}, lines)
}

func TestMergeMissingFileSkipped(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "A")
	b := filepath.Join(root, "B")
	writeFile(t, a, "data.txt", "x\ny\n")
	require.NoError(t, os.Mkdir(b, 0o755))

	out := filepath.Join(root, "out.txt")
	var log bytes.Buffer
	res, err := Merge("data.txt", out, []Source{{Dir: a, Lines: 1}, {Dir: b, Lines: 4}},
		rand.New(rand.NewSource(1)), &log)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Lines)
	assert.Equal(t, []string{filepath.Join(b, "data.txt")}, res.Missing)
	assert.Contains(t, log.String(), "does not exist, skipped")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(data))
}

func TestMergeUnterminatedLastLine(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "A")
	b := filepath.Join(root, "B")
	writeFile(t, a, "f", "tail-a")
	writeFile(t, b, "f", "tail-b")

	out := filepath.Join(root, "out")
	_, err := Merge("f", out, []Source{{Dir: a, Lines: 1}, {Dir: b, Lines: 1}},
		rand.New(rand.NewSource(2)), &bytes.Buffer{})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	sort.Strings(lines)
	assert.Equal(t, []string{"tail-a", "tail-b"}, lines)
}

func TestMergeDeterministicWithSeed(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "A")
	var content strings.Builder
	for i := 0; i < 50; i++ {
		content.WriteString(strings.Repeat("x", i+1) + "\n")
	}
	writeFile(t, a, "f", content.String())

	run := func(name string) string {
		out := filepath.Join(root, name)
		_, err := Merge("f", out, []Source{{Dir: a, Lines: 50}}, rand.New(rand.NewSource(5)), &bytes.Buffer{})
		require.NoError(t, err)
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		return string(data)
	}
	assert.Equal(t, run("one"), run("two"))
}

func TestPlanRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.Mkdir(src, 0o755))

	p := &Plan{
		Filename: "train.jsonl",
		Output:   filepath.Join(dir, "mix.jsonl"),
		Seed:     11,
		Sources:  []Source{{Dir: src, Lines: 100}, {Dir: src, Lines: 20}},
	}
	path := filepath.Join(dir, "plan.yaml")
	require.NoError(t, WritePlan(path, p))

	got, err := ReadPlan(path)
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.NoError(t, got.Validate())
	assert.Equal(t, 120, got.MaxLines())
}

func TestPlanExecute(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	writeFile(t, a, "data.txt", "a1\na2\na3\n")
	writeFile(t, b, "data.txt", "b1\n")

	p := &Plan{
		Filename: "data.txt",
		Output:   filepath.Join(dir, "out.txt"),
		Sources:  []Source{{Dir: a, Lines: 2}, {Dir: b, Lines: 5}},
	}

	var log bytes.Buffer
	res, err := p.Execute(rand.New(rand.NewSource(1)), &log)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Lines)
	assert.Contains(t, log.String(), "3 of at most 7 requested lines")
}

func TestPlanValidate(t *testing.T) {
	tests := []struct {
		name    string
		plan    Plan
		wantErr string
	}{
		{"no filename", Plan{Output: "o", Sources: []Source{{Dir: ".", Lines: 1}}}, "filename is required"},
		{"no output", Plan{Filename: "f", Sources: []Source{{Dir: ".", Lines: 1}}}, "output is required"},
		{"no sources", Plan{Filename: "f", Output: "o"}, "at least one"},
		{"bad source", Plan{Filename: "f", Output: "o", Sources: []Source{{Dir: "/definitely/not/here", Lines: 1}}}, "does not exist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReadPlanErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadPlan(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("sources: [unclosed"), 0o644))
	_, err = ReadPlan(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing plan file")
}
