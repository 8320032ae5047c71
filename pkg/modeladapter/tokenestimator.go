package modeladapter

import (
	"github.com/arkterm/arkterm/pkg/chats/chat"
	"github.com/arkterm/arkterm/pkg/chats/message"
)

// perMessageOverhead is the estimated token overhead for each message (role,
// structure delimiters, etc.).
const perMessageOverhead = 4

// TokenEstimator estimates how many input tokens a conversation costs.
// It uses the ~4 characters per token heuristic for English text.
// The zero value is ready to use.
type TokenEstimator struct{}

func charsToTokens(chars int) int {
	return (chars + 3) / 4 // round up
}

// EstimateChat estimates the input tokens of the whole conversation,
// system prompt included.
func (e *TokenEstimator) EstimateChat(c *chat.Chat) int {
	tokens := 0

	c.Each(func(_ int, m message.Message) bool {
		tokens += perMessageOverhead + charsToTokens(len(m.Text))
		return true
	})

	return tokens
}
