// Package format renders model replies and status values for the terminal.
package format

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/mattn/go-runewidth"
)

// IsDarkBG is set once at startup, before stdin is handed to the line
// reader, so that glamour never issues its own OSC 11 query later.
var IsDarkBG = true

// ThinkingMessages are displayed while a request is in flight.
var ThinkingMessages = []string{
	"Thinking...",
	"Consulting the manual pages...",
	"Grepping the cosmos...",
	"Brewing a response...",
	"Parsing your intent...",
	"Piping thoughts through sed...",
	"Crunching tokens...",
	"Checking $PATH for wisdom...",
	"Warming up the shell...",
	"Assembling a one-liner...",
}

var (
	mdRenderer      *glamour.TermRenderer
	mdRendererMu    sync.Mutex
	mdRendererWidth int
)

// InitMarkdownRenderer initializes the glamour renderer at the given width.
func InitMarkdownRenderer(width int) {
	if width <= 0 {
		width = 100
	}
	mdRendererMu.Lock()
	defer mdRendererMu.Unlock()
	if width == mdRendererWidth && mdRenderer != nil {
		return
	}
	// A fixed style avoids glamour.WithAutoStyle, which queries the
	// terminal and would race with the stdin line reader.
	style := glamourstyles.LightStyleConfig
	if IsDarkBG {
		style = glamourstyles.DarkStyleConfig
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return
	}
	mdRenderer = r
	mdRendererWidth = width
}

// RenderMarkdown converts markdown text to terminal-formatted output. The
// text is returned unchanged when no renderer was initialized.
func RenderMarkdown(text string) string {
	mdRendererMu.Lock()
	r := mdRenderer
	mdRendererMu.Unlock()
	if r == nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

// Truncate shortens s to at most n terminal cells, with "..." appended if
// truncated. Newlines are replaced with spaces for single-line display.
func Truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) <= n {
		return s
	}
	return runewidth.Truncate(s, n, "") + "..."
}

// PadRight pads s with spaces to n terminal cells.
func PadRight(s string, n int) string {
	return runewidth.FillRight(s, n)
}

// FmtTokens formats a token count for display, using k/M suffixes.
func FmtTokens(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// FmtDuration formats a duration for display.
func FmtDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	min := int(d.Minutes())
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", min, sec)
}

// RandomThinkingMessage returns a random thinking message.
func RandomThinkingMessage() string {
	return ThinkingMessages[rand.IntN(len(ThinkingMessages))] //nolint:gosec // cosmetic randomness
}
