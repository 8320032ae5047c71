// Package chat provides the ordered conversation kept for one terminal session.
package chat

import (
	"github.com/arkterm/arkterm/pkg/chats/message"
	"github.com/arkterm/arkterm/pkg/chats/role"
)

// Chat is a mutable conversation container. The zero value is ready to use.
// Chat is not safe for concurrent use; a session has a single thread of
// control and owns its chat.
type Chat struct {
	messages []message.Message
}

// New creates a Chat pre-populated with the given messages.
func New(msgs ...message.Message) *Chat {
	return &Chat{messages: msgs}
}

// Append adds one or more messages to the conversation.
func (c *Chat) Append(msgs ...message.Message) {
	c.messages = append(c.messages, msgs...)
}

// Len returns the number of messages in the conversation.
func (c *Chat) Len() int {
	return len(c.messages)
}

// Last returns the most recent message and true, or a zero Message and false
// if the conversation is empty.
func (c *Chat) Last() (message.Message, bool) {
	if len(c.messages) == 0 {
		return message.Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// Pop removes and returns the most recent message. The bool is false when
// the conversation is empty.
func (c *Chat) Pop() (message.Message, bool) {
	m, ok := c.Last()
	if !ok {
		return m, false
	}
	c.messages = c.messages[:len(c.messages)-1]
	return m, true
}

// Messages returns a copy of all messages in the conversation.
func (c *Chat) Messages() []message.Message {
	cp := make([]message.Message, len(c.messages))
	copy(cp, c.messages)
	return cp
}

// Each iterates over messages, calling fn for each one. If fn returns false,
// iteration stops early.
func (c *Chat) Each(fn func(int, message.Message) bool) {
	for i, m := range c.messages {
		if !fn(i, m) {
			return
		}
	}
}

// Reset drops every turn except the leading system messages.
func (c *Chat) Reset() {
	keep := 0
	for keep < len(c.messages) && c.messages[keep].Role == role.System {
		keep++
	}
	c.messages = c.messages[:keep]
}
