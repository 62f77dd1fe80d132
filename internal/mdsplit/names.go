// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mdsplit

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/dataprep/pkg/types"
)

// unnamedSection replaces titles that sanitize to nothing.
const unnamedSection = "unnamed_section"

var illegalChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// Sanitize maps a heading title to a filesystem-safe name. It normalizes to
// NFC, replaces < > : " / \ | ? * with '_', and trims leading and trailing
// spaces and dots. Sanitize is idempotent.
func Sanitize(title string) string {
	name := norm.NFC.String(title)
	name = illegalChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, ". ")
	if name == "" {
		return unnamedSection
	}
	return name
}

// Namer hands out unique section filenames. A name already issued (compared
// case-insensitively) gets a numeric suffix: 2_Intro.md, 2_Intro_2.md, ...
type Namer struct {
	seen map[string]bool
}

// NewNamer returns a Namer with no names issued.
func NewNamer() *Namer {
	return &Namer{seen: make(map[string]bool)}
}

// Name returns the filename for s and whether a suffix had to be added.
func (n *Namer) Name(s types.Section) (string, bool) {
	base := fmt.Sprintf("%d_%s", s.Level, Sanitize(s.Title))
	return n.unique(base, ".md")
}

// Reserve claims name (which includes its extension) so later sections
// cannot overwrite it. It returns the possibly suffixed name.
func (n *Namer) Reserve(name string) string {
	ext := ""
	if strings.HasSuffix(name, ".md") {
		ext = ".md"
	}
	got, _ := n.unique(strings.TrimSuffix(name, ext), ext)
	return got
}

func (n *Namer) unique(base, ext string) (string, bool) {
	name := base + ext
	if !n.seen[strings.ToLower(name)] {
		n.seen[strings.ToLower(name)] = true
		return name, false
	}
	for i := 2; ; i++ {
		name = fmt.Sprintf("%s_%d%s", base, i, ext)
		if !n.seen[strings.ToLower(name)] {
			n.seen[strings.ToLower(name)] = true
			return name, true
		}
	}
}
