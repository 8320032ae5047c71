// Package message defines the Message type used in LLM conversations.
package message

import (
	"strings"

	"github.com/arkterm/arkterm/pkg/chats/role"
)

// Well-known metadata keys set by providers.
const (
	// MetaReasoning holds the model's parsed reasoning text, when the
	// provider returns it separately from the answer.
	MetaReasoning = "reasoning"
	// MetaFinishReason holds the provider's finish reason (e.g. "stop", "length").
	MetaFinishReason = "finish_reason"
)

// Message is a single conversation turn. It is a value type that copies
// cheaply; Metadata is shared between copies.
type Message struct {
	Role     role.Role
	Text     string
	Metadata map[string]string
}

// New creates a message with the given role and text.
func New(r role.Role, text string) Message {
	return Message{Role: r, Text: text}
}

// TextContent returns the message text with surrounding whitespace removed.
func (m Message) TextContent() string {
	return strings.TrimSpace(m.Text)
}

// IsEmpty reports whether the message carries no visible text.
func (m Message) IsEmpty() bool {
	return m.TextContent() == ""
}

// SetMeta sets a metadata key-value pair on the message.
// It initializes the Metadata map if nil.
func (m *Message) SetMeta(key, value string) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]string)
	}
	m.Metadata[key] = value
}

// GetMeta retrieves a metadata value by key.
func (m Message) GetMeta(key string) (string, bool) {
	if m.Metadata == nil {
		return "", false
	}
	v, ok := m.Metadata[key]
	return v, ok
}
