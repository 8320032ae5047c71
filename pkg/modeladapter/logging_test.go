package modeladapter_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/arkterm/arkterm/pkg/chats/chat"
	"github.com/arkterm/arkterm/pkg/chats/message"
	"github.com/arkterm/arkterm/pkg/chats/role"
	"github.com/arkterm/arkterm/pkg/modeladapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestWithLogger_NilLoggerReturnsInner(t *testing.T) {
	inner := &mockCompleter{}
	assert.Same(t, inner, modeladapter.WithLogger(inner, nil, "groq"))
}

func TestWithLogger_Success(t *testing.T) {
	var buf bytes.Buffer
	inner := &mockCompleter{msg: message.New(role.Assistant, "done")}
	c := modeladapter.WithLogger(inner, newTestLogger(&buf), "groq")

	msg, err := c.Complete(context.Background(), chat.New(message.New(role.User, "hi")))

	require.NoError(t, err)
	assert.Equal(t, "done", msg.Text)
	assert.Contains(t, buf.String(), "completion started")
	assert.Contains(t, buf.String(), "completion finished")
	assert.Contains(t, buf.String(), "provider=groq")
}

func TestWithLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	inner := &mockCompleter{err: errors.New("boom")}
	c := modeladapter.WithLogger(inner, newTestLogger(&buf), "groq")

	_, err := c.Complete(context.Background(), chat.New())

	assert.EqualError(t, err, "boom")
	assert.Contains(t, buf.String(), "completion failed")
	assert.Contains(t, buf.String(), "error=boom")
}

func TestUnwrap(t *testing.T) {
	inner := &mockCompleter{}
	var buf bytes.Buffer
	wrapped := modeladapter.WithLogger(inner, newTestLogger(&buf), "groq")

	assert.Same(t, inner, modeladapter.Unwrap(wrapped))
	assert.Same(t, inner, modeladapter.Unwrap(inner))
}
