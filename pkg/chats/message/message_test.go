package message

import (
	"testing"

	"github.com/arkterm/arkterm/pkg/chats/role"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	m := New(role.User, "list files")

	assert.Equal(t, role.User, m.Role)
	assert.Equal(t, "list files", m.Text)
	assert.Nil(t, m.Metadata)
}

func TestTextContent_Trims(t *testing.T) {
	m := New(role.Assistant, "\n  Run: ls -la  \n")

	assert.Equal(t, "Run: ls -la", m.TextContent())
	assert.False(t, m.IsEmpty())
	assert.True(t, New(role.Assistant, " \n\t").IsEmpty())
}

func TestMeta(t *testing.T) {
	var m Message

	_, ok := m.GetMeta(MetaReasoning)
	assert.False(t, ok)

	m.SetMeta(MetaReasoning, "thinking about it")
	v, ok := m.GetMeta(MetaReasoning)
	assert.True(t, ok)
	assert.Equal(t, "thinking about it", v)
}
