//go:build mage

// Package main contains Mage build targets for dataprep developer tooling.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// workDirs lists the working directories the data targets expect.
var workDirs = []string{
	"data/pdfs",
	"data/markdown",
	"data/sections",
	"data/raw",
	"data/datasets",
	".dataprep",
}

// Init creates the working directory structure for the data targets.
func Init() error {
	for _, dir := range workDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Working directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "dataprep"
	cmdPkg  = "./cmd/dataprep"
)

func binPath() string { return filepath.Join(binDir, binName) }

// Build compiles the CLI binary into bin/, stamping the version from git
// when available.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		version = "dev"
	}
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", binPath(), cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s (%s)\n", binPath(), version)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Clean removes the build output.
func Clean() error {
	return sh.Rm(binDir)
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	prodLines, testLines, err := countGoLines(".")
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

// skipDir reports directories that hold no project sources.
func skipDir(name string) bool {
	return name != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
		name == "bin" || name == "data")
}

// countGoLines counts non-blank lines in production and test Go files.
func countGoLines(root string) (prod, test int, err error) {
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			if strings.TrimSpace(sc.Text()) != "" {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return sc.Err()
	})
	return prod, test, err
}

// countDocWords counts words in the top-level Markdown documents.
func countDocWords(root string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(root, "*.md"))
	if err != nil {
		return 0, err
	}
	total := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(strings.Fields(string(data)))
	}
	return total, nil
}

// Data groups targets that run dataprep over the data/ working tree.
type Data mg.Namespace

// Pdf converts data/pdfs into data/markdown.
func (Data) Pdf() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath(), "pdf", "data/pdfs", "data/markdown", "--ledger")
}

// Split splits one Markdown file (FILE) into data/sections.
func (Data) Split() error {
	mg.Deps(Build, Init)
	file := os.Getenv("FILE")
	if file == "" {
		return fmt.Errorf("set FILE to the Markdown file to split")
	}
	stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	return sh.RunV(binPath(), "split", file, filepath.Join("data/sections", stem), "--ledger")
}

// Dialogue converts data/raw/dialogue.txt into train/valid JSONL.
func (Data) Dialogue() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath(), "dialogue", "data/raw/dialogue.txt",
		"data/datasets/dialogue_train.jsonl", "data/datasets/dialogue_valid.jsonl", "--ledger")
}

// Qa converts data/raw/qa.txt into train/valid JSONL.
func (Data) Qa() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath(), "qa", "data/raw/qa.txt",
		"data/datasets/qa_train.jsonl", "data/datasets/qa_valid.jsonl", "--ledger")
}

// Chatml converts data/raw/chatml.jsonl into chat JSONL.
func (Data) Chatml() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath(), "chatml", "data/raw/chatml.jsonl", "data/datasets/chatml.jsonl", "--ledger")
}

// Merge runs the merge plan in data/merge.yaml.
func (Data) Merge() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath(), "merge", "--plan", "data/merge.yaml", "--ledger")
}

// Runs lists the most recent ledger runs.
func (Data) Runs() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "runs", "list")
}
