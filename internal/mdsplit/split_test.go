// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mdsplit

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/dataprep/pkg/types"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantLevels []int
		wantTitles []string
	}{
		{
			name:       "two levels",
			content:    "# Title\nbody1\n## Sub\nbody2",
			wantLevels: []int{1, 2},
			wantTitles: []string{"Title", "Sub"},
		},
		{
			name:       "five levels",
			content:    "# a\n## b\n### c\n#### d\n##### e\n",
			wantLevels: []int{1, 2, 3, 4, 5},
			wantTitles: []string{"a", "b", "c", "d", "e"},
		},
		{
			name:       "six hashes is not a heading",
			content:    "# a\n###### too deep\ntext\n",
			wantLevels: []int{1},
			wantTitles: []string{"a"},
		},
		{
			name:       "hash without space is not a heading",
			content:    "#tag line\n# Real\n",
			wantLevels: []int{1},
			wantTitles: []string{"Real"},
		},
		{
			name:       "crlf line endings",
			content:    "# One\r\nx\r\n## Two\r\ny\r\n",
			wantLevels: []int{1, 2},
			wantTitles: []string{"One", "Two"},
		},
		{
			name:       "indented hash is not a heading",
			content:    "  # indented\n# Top\n",
			wantLevels: []int{1},
			wantTitles: []string{"Top"},
		},
		{
			name:    "no headings",
			content: "plain text\nwith no headings\n",
		},
		{
			name:    "empty document",
			content: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Split(tt.content)

			require.Len(t, doc.Sections, len(tt.wantLevels))
			for i, s := range doc.Sections {
				assert.Equal(t, tt.wantLevels[i], s.Level, "level of section %d", i)
				assert.Equal(t, tt.wantTitles[i], s.Title, "title of section %d", i)
			}

			// The spans partition the document with no gaps or overlap.
			var rebuilt strings.Builder
			rebuilt.WriteString(doc.Preamble)
			for _, s := range doc.Sections {
				rebuilt.WriteString(s.Body)
			}
			assert.Equal(t, tt.content, rebuilt.String())
		})
	}
}

func TestSplitPreambleAndOffsets(t *testing.T) {
	content := "intro text\n\n# First\nA\n# Second\nB\n"
	doc := Split(content)

	assert.Equal(t, "intro text\n\n", doc.Preamble)
	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "# First\nA\n", doc.Sections[0].Body)
	assert.Equal(t, "# Second\nB\n", doc.Sections[1].Body)
	assert.Equal(t, strings.Index(content, "# Second"), doc.Sections[1].Offset)
}

func TestWriteFilesExample(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	var log bytes.Buffer

	summary, err := WriteFiles(Split("# Title\nbody1\n## Sub\nbody2"), "doc", outDir, Options{}, &log)
	require.NoError(t, err)
	assert.Len(t, summary.Files, 2)
	assert.False(t, summary.Fallback)

	got, err := os.ReadFile(filepath.Join(outDir, "1_Title.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Title\nbody1", string(got))

	got, err = os.ReadFile(filepath.Join(outDir, "2_Sub.md"))
	require.NoError(t, err)
	assert.Equal(t, "## Sub\nbody2", string(got))

	assert.Contains(t, log.String(), "saved section: 1_Title.md")
}

func TestWriteFilesOneFilePerHeading(t *testing.T) {
	content := "# A\n1\n## B\n2\n### C\n3\n## D\n4\n"
	outDir := t.TempDir()

	summary, err := WriteFiles(Split(content), "doc", outDir, Options{}, &bytes.Buffer{})
	require.NoError(t, err)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
	assert.Len(t, summary.Files, 4)
}

func TestWriteFilesFallback(t *testing.T) {
	outDir := t.TempDir()
	content := "no headings here\n"
	var log bytes.Buffer

	summary, err := WriteFiles(Split(content), "notes", outDir, Options{}, &log)
	require.NoError(t, err)
	assert.True(t, summary.Fallback)
	require.Len(t, summary.Files, 1)

	got, err := os.ReadFile(filepath.Join(outDir, "notes_full.md"))
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
	assert.Contains(t, log.String(), "no headings found")
}

func TestWriteFilesDuplicateTitles(t *testing.T) {
	content := "## Intro\nfirst\n## Intro\nsecond\n## intro\nthird\n"
	outDir := t.TempDir()

	summary, err := WriteFiles(Split(content), "doc", outDir, Options{}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Renamed)

	want := map[string]string{
		"2_Intro.md":   "## Intro\nfirst",
		"2_Intro_2.md": "## Intro\nsecond",
		"2_intro_3.md": "## intro\nthird",
	}
	for name, body := range want {
		got, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		assert.Equal(t, body, string(got), name)
	}
}

func TestWriteFilesPreamble(t *testing.T) {
	content := "Intro paragraph\n# A\nx\n## B\ny\n"

	tests := []struct {
		name      string
		opts      Options
		wantFiles []string
	}{
		{"dropped by default", Options{}, []string{"1_A.md", "2_B.md"}},
		{"kept on request", Options{KeepPreamble: true}, []string{"1_A.md", "2_B.md", "paper_preamble.md"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outDir := t.TempDir()

			var log bytes.Buffer
			summary, err := WriteFiles(Split(content), "paper", outDir, tt.opts, &log)
			require.NoError(t, err)
			assert.Len(t, summary.Files, len(tt.wantFiles))

			entries, err := os.ReadDir(outDir)
			require.NoError(t, err)
			var names []string
			for _, e := range entries {
				names = append(names, e.Name())
			}
			assert.Equal(t, tt.wantFiles, names)

			if tt.opts.KeepPreamble {
				got, err := os.ReadFile(filepath.Join(outDir, "paper_preamble.md"))
				require.NoError(t, err)
				assert.Equal(t, "Intro paragraph", string(got))
			} else {
				assert.Contains(t, log.String(), "not saved")
			}
		})
	}
}

func TestWriteFilesBlankPreambleIgnored(t *testing.T) {
	outDir := t.TempDir()

	summary, err := WriteFiles(Split("\n\n# Only\ntext"), "doc", outDir, Options{KeepPreamble: true}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Len(t, summary.Files, 1)
}

func TestSplitFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "guide.txt")
	require.NoError(t, os.WriteFile(in, []byte("# Setup\nsteps\n"), 0o644))

	var log bytes.Buffer
	summary, err := SplitFile(in, filepath.Join(dir, "out"), Options{}, &log)
	require.NoError(t, err)
	assert.Len(t, summary.Files, 1)
	assert.Contains(t, log.String(), "may not be a Markdown file")
}

func TestSplitFileMissing(t *testing.T) {
	_, err := SplitFile(filepath.Join(t.TempDir(), "missing.md"), t.TempDir(), Options{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestNamerReserve(t *testing.T) {
	n := NewNamer()
	assert.Equal(t, "1_x.md", n.Reserve("1_x.md"))

	name, renamed := n.Name(types.Section{Level: 1, Title: "x"})
	assert.True(t, renamed)
	assert.Equal(t, "1_x_2.md", name)
}
