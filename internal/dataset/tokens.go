// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/pdiddy/dataprep/pkg/types"
)

// Per-message overhead of the chat format: role and content framing.
const (
	tokensPerMessage = 4
	tokensPerName    = 1
)

// TokenCounter estimates the number of tokens in a string.
type TokenCounter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func (c tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// NewTiktokenCounter returns a counter backed by the named tiktoken encoding
// (e.g. "cl100k_base").
func NewTiktokenCounter(encoding string) (TokenCounter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("loading tiktoken encoding %s: %w", encoding, err)
	}
	return tiktokenCounter{enc: enc}, nil
}

// Stats summarizes a set of records.
type Stats struct {
	Records  int
	Messages int
	Tokens   int

	// Empty counts records holding nothing beyond the system message.
	Empty int
}

// Measure counts records and messages, and tokens when counter is non-nil.
func Measure(records []types.ChatRecord, counter TokenCounter) Stats {
	s := Stats{Records: len(records)}
	for _, r := range records {
		s.Messages += len(r.Messages)
		if len(r.Turns()) == 0 {
			s.Empty++
		}
		if counter == nil {
			continue
		}
		for _, m := range r.Messages {
			s.Tokens += tokensPerMessage + tokensPerName + counter.Count(m.Content)
		}
	}
	return s
}
