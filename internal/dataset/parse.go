// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset turns blank-line separated conversation and Q/A text into
// chat-format training records and writes shuffled train/validation splits
// as JSON lines.
package dataset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/dataprep/pkg/types"
)

const (
	// DefaultAssistantSpeaker is the dialogue label mapped to the assistant role.
	DefaultAssistantSpeaker = "A"

	// DefaultQuestionMarker and DefaultAnswerMarker prefix the lines of a Q/A block.
	DefaultQuestionMarker = "问："
	DefaultAnswerMarker   = "答："
)

var (
	// ErrEmptyRecord is returned when a block contains no usable turns.
	ErrEmptyRecord = errors.New("block contains no conversation turns")

	// ErrIncompleteQA is returned when a Q/A block lacks a question or an answer.
	ErrIncompleteQA = errors.New("block is missing a question or an answer")
)

// Parser converts one text block into a chat record.
type Parser interface {
	Parse(block string) (types.ChatRecord, error)
}

// Blocks splits content into blocks separated by blank lines. Blocks made of
// whitespace only are dropped.
func Blocks(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	parts := strings.Split(content, "\n\n")

	blocks := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		blocks = append(blocks, p)
	}
	return blocks
}

func newRecord(systemPrompt string) types.ChatRecord {
	if systemPrompt == "" {
		systemPrompt = types.DefaultSystemPrompt
	}
	return types.ChatRecord{
		Messages: []types.Message{{Role: types.RoleSystem, Content: systemPrompt}},
	}
}

// DialogueParser reads blocks of "speaker: text" lines. The speaker equal to
// AssistantSpeaker becomes the assistant; every other speaker is the user.
// Lines without a colon are ignored.
type DialogueParser struct {
	AssistantSpeaker string
	SystemPrompt     string
}

// Parse implements Parser.
func (p DialogueParser) Parse(block string) (types.ChatRecord, error) {
	rec, _, err := p.ParseSpeakers(block)
	return rec, err
}

// ParseSpeakers parses block and also returns the distinct speaker labels in
// order of first appearance.
func (p DialogueParser) ParseSpeakers(block string) (types.ChatRecord, []string, error) {
	assistant := p.AssistantSpeaker
	if assistant == "" {
		assistant = DefaultAssistantSpeaker
	}

	rec := newRecord(p.SystemPrompt)
	var speakers []string
	seen := make(map[string]bool)

	for _, line := range strings.Split(strings.TrimSpace(block), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		speaker, content, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		speaker = strings.TrimSpace(speaker)
		if !seen[speaker] {
			seen[speaker] = true
			speakers = append(speakers, speaker)
		}

		role := types.RoleUser
		if speaker == assistant {
			role = types.RoleAssistant
		}
		rec.Messages = append(rec.Messages, types.Message{
			Role:    role,
			Content: strings.TrimSpace(content),
		})
	}

	if len(rec.Messages) == 1 {
		return rec, speakers, ErrEmptyRecord
	}
	return rec, speakers, nil
}

// QAParser reads blocks holding one question line and one answer line. The
// last question and the last answer in a block win; other lines are ignored.
type QAParser struct {
	QuestionMarker string
	AnswerMarker   string
	SystemPrompt   string
}

// Parse implements Parser.
func (p QAParser) Parse(block string) (types.ChatRecord, error) {
	qm, am := p.QuestionMarker, p.AnswerMarker
	if qm == "" {
		qm = DefaultQuestionMarker
	}
	if am == "" {
		am = DefaultAnswerMarker
	}

	var question, answer string
	var hasQ, hasA bool
	for _, line := range strings.Split(strings.TrimSpace(block), "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, qm):
			question = strings.TrimSpace(strings.TrimPrefix(line, qm))
			hasQ = true
		case strings.HasPrefix(line, am):
			answer = strings.TrimSpace(strings.TrimPrefix(line, am))
			hasA = true
		}
	}

	rec := newRecord(p.SystemPrompt)
	if !hasQ || !hasA {
		return rec, fmt.Errorf("%w (question: %t, answer: %t)", ErrIncompleteQA, hasQ, hasA)
	}
	rec.Messages = append(rec.Messages,
		types.Message{Role: types.RoleUser, Content: question},
		types.Message{Role: types.RoleAssistant, Content: answer},
	)
	return rec, nil
}
