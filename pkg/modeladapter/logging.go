package modeladapter

import (
	"context"
	"log/slog"
	"time"

	"github.com/arkterm/arkterm/pkg/chats/chat"
	"github.com/arkterm/arkterm/pkg/chats/message"
)

var _ Completer = (*loggingCompleter)(nil)

type loggingCompleter struct {
	inner Completer
	log   *slog.Logger
	name  string
}

// WithLogger returns a Completer that logs every call's start, duration and
// error. A nil logger returns inner unchanged.
func WithLogger(inner Completer, log *slog.Logger, name string) Completer {
	if log == nil {
		return inner
	}
	return &loggingCompleter{inner: inner, log: log, name: name}
}

func (l *loggingCompleter) Complete(ctx context.Context, c *chat.Chat) (message.Message, error) {
	l.log.DebugContext(ctx, "completion started", "provider", l.name, "messages", c.Len())

	start := time.Now()

	msg, err := l.inner.Complete(ctx, c)

	duration := time.Since(start)

	if err != nil {
		l.log.WarnContext(ctx, "completion failed",
			"provider", l.name,
			"duration", duration,
			"error", err,
		)
		return msg, err
	}

	l.log.DebugContext(ctx, "completion finished",
		"provider", l.name,
		"duration", duration,
		"chars", len(msg.Text),
	)

	return msg, nil
}

func (l *loggingCompleter) Unwrap() Completer { return l.inner }

// Unwrap returns the innermost Completer behind any number of wrappers.
func Unwrap(c Completer) Completer {
	for {
		w, ok := c.(interface{ Unwrap() Completer })
		if !ok {
			return c
		}
		c = w.Unwrap()
	}
}
