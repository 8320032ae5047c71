// Package tty answers terminal questions the session asks once at startup,
// before the stdin line reader takes over the input.
package tty

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// DefaultWidth is used when the terminal size is unknown.
const DefaultWidth = 100

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	//nolint:gosec // fd is always a small non-negative int.
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the column count of f, or DefaultWidth.
func Width(f *os.File) int {
	//nolint:gosec // fd is always a small non-negative int.
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return DefaultWidth
	}
	return w
}

// DetectDarkBackground queries the terminal background once and discards
// any late reply bytes so they never reach the line reader.
func DetectDarkBackground() bool {
	dark := lipgloss.HasDarkBackground()
	FlushStdinBuffer()
	return dark
}
