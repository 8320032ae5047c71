package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arkterm/arkterm/pkg/chats/chat"
	"github.com/arkterm/arkterm/pkg/chats/message"
	"github.com/arkterm/arkterm/pkg/chats/role"
	"github.com/arkterm/arkterm/pkg/modeladapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "llama3-8b-8192",
  "choices": [{
    "index": 0,
    "message": {"role": "assistant", "content": "Run: ` + "```bash\\nls -la\\n```" + `"},
    "finish_reason": "stop"
  }],
  "usage": {"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19}
}`

func newTestAdapter(t *testing.T, h http.HandlerFunc) *Adapter {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	a := New(srv.URL, "test-key", srv.Client())
	a.Name = "llama3-8b-8192"
	a.MaxTokens = 16
	temp := 0.7
	a.Temperature = &temp

	return a
}

func TestComplete_TextResponse(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3-8b-8192", req.Model)
		assert.Equal(t, 16, req.MaxTokens)
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Equal(t, "user", req.Messages[1].Role)
			assert.Equal(t, "list files", req.Messages[1].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	})

	c := chat.New(
		message.New(role.System, "You are a terminal assistant."),
		message.New(role.User, "list files"),
	)

	msg, err := a.Complete(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, role.Assistant, msg.Role)
	assert.Equal(t, "Run: ```bash\nls -la\n```", msg.Text)

	last, ok := a.Usage.Last()
	require.True(t, ok)
	assert.Equal(t, 12, last.InputTokens)
	assert.Equal(t, 7, last.OutputTokens)
}

func TestComplete_EmptyChoices(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	})

	_, err := a.Complete(context.Background(), chat.New(message.New(role.User, "hi")))
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestComplete_ErrorClasses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, modeladapter.ErrAuth},
		{"rate limited", http.StatusTooManyRequests, modeladapter.ErrRateLimited},
		{"server error", http.StatusInternalServerError, modeladapter.ErrProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
				calls++
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "3")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"invalid_request_error"}}`))
			})

			_, err := a.Complete(context.Background(), chat.New(message.New(role.User, "hi")))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1, calls, "requests must not be retried")
		})
	}
}

func TestComplete_RateLimitCarriesRetryAfter(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
	})

	_, err := a.Complete(context.Background(), chat.New(message.New(role.User, "hi")))

	var rle *modeladapter.RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, "3s", rle.RetryAfter.String())
	assert.Equal(t, "slow down", rle.Body)
}

func TestComplete_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	a := New(url, "k", nil)
	a.Name = "m"

	_, err := a.Complete(context.Background(), chat.New(message.New(role.User, "hi")))
	assert.ErrorIs(t, err, modeladapter.ErrNetwork)
}

func TestComplete_ContextCancelled(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Complete(ctx, chat.New(message.New(role.User, "hi")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComplete_ZeroTemperatureIsSent(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req, "temperature")
		assert.InDelta(t, 0.0, req["temperature"], 1e-9)
		assert.NotContains(t, req, "top_p")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	})
	zero := 0.0
	a.Temperature = &zero

	_, err := a.Complete(context.Background(), chat.New(message.New(role.User, "hi")))
	require.NoError(t, err)
}
