// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Section is one heading-delimited span of a Markdown document.
type Section struct {
	// Level is the number of leading '#' characters (1-5).
	Level int `json:"level" yaml:"level"`

	// Title is the heading text with surrounding whitespace removed.
	Title string `json:"title" yaml:"title"`

	// Body is the raw span from the start of the heading line up to the next
	// heading (or end of document). Concatenating every Body in order
	// reproduces the document from its first heading onward.
	Body string `json:"body" yaml:"body"`

	// Offset is the byte offset of the heading within the source document.
	Offset int `json:"offset" yaml:"offset"`
}

// ItemStatus is the outcome of processing one item in a batch.
type ItemStatus string

const (
	ItemConverted ItemStatus = "converted"
	ItemSkipped   ItemStatus = "skipped"
	ItemFailed    ItemStatus = "failed"
)
