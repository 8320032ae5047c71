package format

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFmtTokens(t *testing.T) {
	tests := []struct {
		input    int
		expected string
	}{
		{0, "0"},
		{500, "500"},
		{999, "999"},
		{1000, "1.0k"},
		{1200, "1.2k"},
		{15000, "15.0k"},
		{1_000_000, "1.0M"},
		{3_400_000, "3.4M"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FmtTokens(tt.input), "FmtTokens(%d)", tt.input)
	}
}

func TestFmtDuration(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{100 * time.Millisecond, "0.1s"},
		{2 * time.Second, "2.0s"},
		{65 * time.Second, "1m 5s"},
		{125 * time.Second, "2m 5s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FmtDuration(tt.input), "FmtDuration(%v)", tt.input)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel...", Truncate("hello world", 3))
	assert.Equal(t, "hello world", Truncate("hello\nworld", 20))
	assert.Empty(t, Truncate("", 5))

	// Wide runes count as two cells.
	assert.Equal(t, "日本...", Truncate("日本語テキスト", 4))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", PadRight("ab", 4))
	assert.Equal(t, "日 ", PadRight("日", 3))
}

func TestRenderMarkdown_NoRenderer(t *testing.T) {
	mdRendererMu.Lock()
	saved := mdRenderer
	mdRenderer = nil
	mdRendererMu.Unlock()
	t.Cleanup(func() {
		mdRendererMu.Lock()
		mdRenderer = saved
		mdRendererMu.Unlock()
	})

	assert.Equal(t, "# title", RenderMarkdown("# title"))
}

func TestRenderMarkdown(t *testing.T) {
	InitMarkdownRenderer(80)

	out := RenderMarkdown("Run:\n\n```bash\nls -la\n```")
	assert.Contains(t, out, "ls")
	assert.Contains(t, out, "-la")
	assert.NotContains(t, out, "```")
}

func TestRandomThinkingMessage(t *testing.T) {
	msg := RandomThinkingMessage()
	assert.True(t, slices.Contains(ThinkingMessages, msg))
}
