package chat

import (
	"testing"

	"github.com/arkterm/arkterm/pkg/chats/message"
	"github.com/arkterm/arkterm/pkg/chats/role"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	m1 := message.New(role.User, "hello")
	m2 := message.New(role.Assistant, "hi")
	c := New(m1, m2)

	assert.Equal(t, 2, c.Len())
}

func TestChat_ZeroValue(t *testing.T) {
	var c Chat

	assert.Equal(t, 0, c.Len())

	_, ok := c.Last()
	assert.False(t, ok)
	assert.Empty(t, c.Messages())
}

func TestChat_Append(t *testing.T) {
	c := New()
	c.Append(message.New(role.User, "one"))
	c.Append(
		message.New(role.Assistant, "two"),
		message.New(role.User, "three"),
	)

	assert.Equal(t, 3, c.Len())
	last, ok := c.Last()
	assert.True(t, ok)
	assert.Equal(t, "three", last.Text)
}

func TestChat_Pop(t *testing.T) {
	c := New(
		message.New(role.System, "sys"),
		message.New(role.User, "question"),
	)

	m, ok := c.Pop()
	assert.True(t, ok)
	assert.Equal(t, "question", m.Text)
	assert.Equal(t, 1, c.Len())

	_, _ = c.Pop()
	_, ok = c.Pop()
	assert.False(t, ok)
}

func TestChat_Messages_ReturnsCopy(t *testing.T) {
	c := New(message.New(role.User, "original"))

	msgs := c.Messages()
	msgs[0] = message.New(role.User, "changed")

	assert.Equal(t, "original", c.Messages()[0].Text)
}

func TestChat_Each_StopsEarly(t *testing.T) {
	c := New(
		message.New(role.User, "a"),
		message.New(role.Assistant, "b"),
		message.New(role.User, "c"),
	)

	var seen []string
	c.Each(func(_ int, m message.Message) bool {
		seen = append(seen, m.Text)
		return len(seen) < 2
	})

	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestChat_Reset_KeepsSystemPrompt(t *testing.T) {
	c := New(
		message.New(role.System, "be concise"),
		message.New(role.User, "hi"),
		message.New(role.Assistant, "hello"),
	)

	c.Reset()

	msgs := c.Messages()
	assert.Len(t, msgs, 1)
	assert.Equal(t, role.System, msgs[0].Role)
	assert.Equal(t, "be concise", msgs[0].Text)
}
