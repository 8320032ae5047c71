// Package openai provides a Completer backed by the official openai-go SDK.
// It talks to any OpenAI-compatible chat completions endpoint, Groq included.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/arkterm/arkterm/pkg/chats/chat"
	"github.com/arkterm/arkterm/pkg/chats/message"
	"github.com/arkterm/arkterm/pkg/chats/role"
	"github.com/arkterm/arkterm/pkg/modeladapter"
	"github.com/arkterm/arkterm/pkg/modeladapter/usage"
)

// ErrEmptyResponse is returned when the API answers without any choice.
var ErrEmptyResponse = errors.New("openai: empty choices in response")

var _ modeladapter.Completer = (*Adapter)(nil)

// Adapter implements modeladapter.Completer on top of openai.Client. The
// embedded ModelAdapter carries the model settings and usage tracker; the
// SDK owns the transport.
type Adapter struct {
	modeladapter.ModelAdapter

	client openai.Client
}

// New creates an Adapter for baseURL. SDK retries are disabled: a 429 is
// reported to the user, never retried. A nil client falls back to a client
// with modeladapter.DefaultTimeout.
func New(baseURL, apiKey string, client *http.Client) *Adapter {
	a := &Adapter{
		ModelAdapter: modeladapter.New(strings.TrimRight(baseURL, "/"), apiKey, client),
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(a.HTTPClient()),
	}
	if a.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(a.BaseURL+"/"))
	}

	a.client = openai.NewClient(opts...)

	return a
}

// Complete sends the conversation through the SDK and returns the reply.
func (a *Adapter) Complete(ctx context.Context, c *chat.Chat) (message.Message, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(a.Name),
		Messages: convertMessages(c),
	}
	if a.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(a.MaxTokens))
	}
	if a.Temperature != nil {
		params.Temperature = openai.Float(*a.Temperature)
	}
	if a.TopP != nil {
		params.TopP = openai.Float(*a.TopP)
	}

	completion, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return message.Message{}, fmt.Errorf("openai: %w", classify(ctx, err))
	}

	if len(completion.Choices) == 0 {
		return message.Message{}, ErrEmptyResponse
	}

	a.Usage.Add(usage.TokenCount{
		InputTokens:  int(completion.Usage.PromptTokens),
		OutputTokens: int(completion.Usage.CompletionTokens),
	})

	ch := completion.Choices[0]
	msg := message.New(role.Assistant, ch.Message.Content)
	if ch.FinishReason != "" {
		msg.SetMeta(message.MetaFinishReason, ch.FinishReason)
	}

	return msg, nil
}

// classify maps SDK errors onto the modeladapter taxonomy.
func classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		retryAfter := ""
		if apiErr.Response != nil {
			retryAfter = apiErr.Response.Header.Get("Retry-After")
		}

		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}

		return modeladapter.ClassifyStatus(apiErr.StatusCode, modeladapter.ParseRetryAfter(retryAfter), msg)
	}

	return &modeladapter.NetworkError{Err: err}
}

func convertMessages(c *chat.Chat) []openai.ChatCompletionMessageParamUnion {
	var msgs []openai.ChatCompletionMessageParamUnion

	c.Each(func(_ int, m message.Message) bool {
		if m.IsEmpty() {
			return true
		}

		switch m.Role {
		case role.System:
			msgs = append(msgs, openai.SystemMessage(m.Text))
		case role.User:
			msgs = append(msgs, openai.UserMessage(m.Text))
		case role.Assistant:
			msgs = append(msgs, openai.AssistantMessage(m.Text))
		}

		return true
	})

	return msgs
}
