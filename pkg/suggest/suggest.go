// Package suggest extracts runnable shell command suggestions from model
// responses. A suggestion is a fenced code block whose info string is empty
// or names a shell (bash, sh, shell, zsh, console, terminal).
package suggest

import (
	"strings"
)

// Block is one fenced code block found in a response.
type Block struct {
	Lang    string // Info string's first word, lower-cased. Empty when untagged.
	Command string // Block body with the console prompt stripped where applicable.
}

// Runnable reports whether the block is tagged as shell input.
func (b Block) Runnable() bool {
	_, ok := shellLangs[b.Lang]
	return ok
}

// Program returns the first word of the command: the name a user trusts
// when answering "always".
func (b Block) Program() string {
	return Program(b.Command)
}

var shellLangs = map[string]struct{}{
	"":         {},
	"bash":     {},
	"sh":       {},
	"shell":    {},
	"zsh":      {},
	"console":  {},
	"terminal": {},
}

const fence = "```"

// ParseBlocks returns every closed fenced code block in text, in order.
// Blank blocks are dropped, as is an unterminated block at the end of text:
// a reply cut off by max_tokens may stop mid-command.
func ParseBlocks(text string) []Block {
	var (
		blocks  []Block
		current []string
		lang    string
		inBlock bool
	)

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)

		if !inBlock {
			// An opening fence may follow prose on the same line
			// ("Run: ```bash"); the rest of the line is the info string.
			i := strings.Index(trimmed, fence)
			if i < 0 {
				continue
			}
			info := trimmed[i+len(fence):]
			if strings.Contains(info, fence) {
				continue // inline code span
			}
			inBlock = true
			lang = infoLang(info)
			current = current[:0]
			continue
		}

		if !strings.HasSuffix(trimmed, fence) {
			current = append(current, line)
			continue
		}

		// A closing fence may trail the last command line ("ls -la```").
		if head := strings.TrimSuffix(trimmed, fence); head != "" {
			current = append(current, head)
		}
		inBlock = false

		body := strings.Join(current, "\n")
		if lang == "console" {
			body = stripPrompts(body)
		}
		body = strings.TrimSpace(body)

		if body != "" {
			blocks = append(blocks, Block{Lang: lang, Command: body})
		}
	}

	return blocks
}

// Commands returns the runnable blocks of text.
func Commands(text string) []Block {
	var out []Block
	for _, b := range ParseBlocks(text) {
		if b.Runnable() {
			out = append(out, b)
		}
	}
	return out
}

// Program returns the program name of a shell command line: the first word
// after any leading VAR=value assignments and sudo.
func Program(command string) string {
	fields := strings.Fields(command)

	for _, f := range fields {
		if strings.Contains(f, "=") && !strings.HasPrefix(f, "=") {
			continue
		}
		if f == "sudo" {
			continue
		}
		return f
	}

	return ""
}

func infoLang(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(strings.Trim(fields[0], "{}."))
}

func stripPrompts(body string) string {
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		t := strings.TrimLeft(l, " \t")
		if strings.HasPrefix(t, "$ ") {
			lines[i] = strings.TrimPrefix(t, "$ ")
		}
	}
	return strings.Join(lines, "\n")
}
