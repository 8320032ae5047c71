// Package groq implements the modeladapter.Completer interface for Groq's
// OpenAI-compatible chat completions API.
package groq

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/arkterm/arkterm/pkg/chats/chat"
	"github.com/arkterm/arkterm/pkg/chats/message"
	"github.com/arkterm/arkterm/pkg/chats/role"
	"github.com/arkterm/arkterm/pkg/modeladapter"
	"github.com/arkterm/arkterm/pkg/modeladapter/usage"
)

// DefaultBaseURL is the base URL for the Groq API.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// ErrEmptyResponse is returned when the API answers without any choice.
var ErrEmptyResponse = errors.New("groq: empty response")

// Models lists model ids known to be served by Groq. Other ids are accepted
// but may be rejected by the API.
var Models = []string{
	"llama3-8b-8192",
	"llama3-70b-8192",
	"llama-3.1-8b-instant",
	"llama-3.3-70b-versatile",
	"gemma2-9b-it",
	"qwen/qwen3-32b",
	"deepseek-r1-distill-llama-70b",
	"openai/gpt-oss-20b",
	"openai/gpt-oss-120b",
}

// reasoningFamilies are model id fragments of models that accept
// reasoning_format. Other models reject the field with a 400.
var reasoningFamilies = []string{"qwen", "deepseek-r1", "gpt-oss"}

// Adapter sends chat completions to the Groq API.
type Adapter struct {
	modeladapter.ModelAdapter
}

// New creates an Adapter with the given base URL, API key and HTTP client.
// An empty baseURL uses DefaultBaseURL; a nil client falls back to a client
// with modeladapter.DefaultTimeout.
func New(baseURL, apiKey string, client *http.Client) *Adapter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	a := &Adapter{
		ModelAdapter: modeladapter.New(strings.TrimRight(baseURL, "/"), apiKey, client),
	}
	a.HeaderParser = modeladapter.ParseRateLimitHeaders

	return a
}

// SupportsReasoning reports whether model accepts the reasoning_format field.
func SupportsReasoning(model string) bool {
	id := strings.ToLower(model)
	for _, f := range reasoningFamilies {
		if strings.Contains(id, f) {
			return true
		}
	}
	return false
}

// IsKnownModel reports whether model is in Models.
func IsKnownModel(model string) bool {
	for _, m := range Models {
		if m == model {
			return true
		}
	}
	return false
}

// Complete sends a conversation to the chat completions endpoint and returns
// the assistant's reply.
func (g *Adapter) Complete(ctx context.Context, c *chat.Chat) (message.Message, error) {
	req := chatRequest{
		Model:       g.Name,
		Messages:    convertMessages(c),
		MaxTokens:   g.MaxTokens,
		Temperature: g.Temperature,
		TopP:        g.TopP,
	}

	if SupportsReasoning(g.Name) {
		req.ReasoningFormat = "parsed"
	}

	var resp chatResponse
	if err := g.PostJSON(ctx, "/chat/completions", req, &resp); err != nil {
		return message.Message{}, fmt.Errorf("groq: %w", err)
	}

	if len(resp.Choices) == 0 {
		return message.Message{}, ErrEmptyResponse
	}

	g.Usage.Add(usage.TokenCount{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	})

	return convertResponse(resp.Choices[0]), nil
}

// API request/response types.

type chatRequest struct {
	Model           string       `json:"model"`
	Messages        []apiMessage `json:"messages"`
	MaxTokens       int          `json:"max_tokens,omitempty"`
	Temperature     *float64     `json:"temperature,omitempty"`
	TopP            *float64     `json:"top_p,omitempty"`
	ReasoningFormat string       `json:"reasoning_format,omitempty"`
}

type apiMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Reasoning string `json:"reasoning,omitempty"`
}

type chatResponse struct {
	ID      string   `json:"id"`
	Choices []choice `json:"choices"`
	Usage   apiUsage `json:"usage"`
}

type choice struct {
	Message      apiMessage `json:"message"`
	FinishReason string     `json:"finish_reason"`
}

type apiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// convertMessages transforms a Chat into the API message format. Empty
// messages are skipped; Groq rejects blank content.
func convertMessages(c *chat.Chat) []apiMessage {
	var msgs []apiMessage

	c.Each(func(_ int, m message.Message) bool {
		if !m.Role.Valid() || m.IsEmpty() {
			return true
		}

		msgs = append(msgs, apiMessage{
			Role:    m.Role.String(),
			Content: m.Text,
		})

		return true
	})

	return msgs
}

// convertResponse transforms an API choice into a chats Message.
func convertResponse(ch choice) message.Message {
	msg := message.New(role.Assistant, ch.Message.Content)

	if r := strings.TrimSpace(ch.Message.Reasoning); r != "" {
		msg.SetMeta(message.MetaReasoning, r)
	}
	if ch.FinishReason != "" {
		msg.SetMeta(message.MetaFinishReason, ch.FinishReason)
	}

	return msg
}

var _ modeladapter.Completer = (*Adapter)(nil)
