// Package styles holds the lipgloss styles shared by the terminal UI.
package styles

import "github.com/charmbracelet/lipgloss"

// GitHub terminal dark theme palette.
var (
	ColorBright  = lipgloss.Color("#f0f6fc") // headings, emphasis
	ColorMuted   = lipgloss.Color("#8b949e") // muted/dim text
	ColorFaint   = lipgloss.Color("#484f58") // separators
	ColorAccent  = lipgloss.Color("#58a6ff") // accent blue
	ColorCyan    = lipgloss.Color("#79c0ff") // prompts
	ColorError   = lipgloss.Color("#ff7b72") // error red
	ColorSuccess = lipgloss.Color("#56d364") // success green
	ColorWarning = lipgloss.Color("#d29922") // warning amber
	ColorMagenta = lipgloss.Color("#bc8cff") // purple/magenta
	ColorCode    = lipgloss.Color("#d2a8ff") // inline code
)

// Centralized style definitions for the terminal UI.
var (
	// Banner and headings.
	BannerStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	HeadingStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorBright)
	SuccessStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess)

	// Prompt shown before user input.
	PromptStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorCyan)

	// Reasoning text returned separately by reasoning models.
	ThinkingTextStyle = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)

	// Command suggestions and confirmation prompts.
	CommandLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorWarning)
	CommandStyle      = lipgloss.NewStyle().Foreground(ColorCode)
	QuestionStyle     = lipgloss.NewStyle().Bold(true).Foreground(ColorWarning)

	// Spinner / animation styles.
	SpinnerStyle = lipgloss.NewStyle().Foreground(ColorMagenta)

	// General utility styles.
	DimStyle     = lipgloss.NewStyle().Foreground(ColorMuted)
	StatusStyle  = lipgloss.NewStyle().Foreground(ColorFaint)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	ErrorStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorError)

	// Error block style.
	ErrorBlockStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(ColorError)

	// Diff preview.
	DiffAddStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	DiffDelStyle = lipgloss.NewStyle().Foreground(ColorError)
	DiffHdrStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)

// TreeCorner prefixes the nested line of a history entry.
const TreeCorner = "└ "
