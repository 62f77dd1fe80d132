// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the dataprep tools.
// Chat records are the common output shape of the dialogue, QA, and ChatML
// converters; sections and item statuses are shared by the splitter, the
// PDF converter, and the run ledger.
package types

// Role identifies the speaker of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultSystemPrompt is prepended to every record built by the dialogue and
// QA converters unless the caller configures another prompt.
const DefaultSystemPrompt = "You are a helpful assistant."

// Message is a single chat turn.
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// ChatRecord is one training example, serialized as a single JSONL line:
// {"messages": [{"role": ..., "content": ...}, ...]}.
type ChatRecord struct {
	Messages []Message `json:"messages" yaml:"messages"`
}

// Turns returns the messages that follow the leading system message, or all
// messages when the record has no system message.
func (r ChatRecord) Turns() []Message {
	if len(r.Messages) > 0 && r.Messages[0].Role == RoleSystem {
		return r.Messages[1:]
	}
	return r.Messages
}
