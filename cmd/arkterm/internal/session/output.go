package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arkterm/arkterm/cmd/arkterm/internal/format"
	"github.com/arkterm/arkterm/cmd/arkterm/internal/styles"
	"github.com/arkterm/arkterm/pkg/chats/message"
	"github.com/arkterm/arkterm/pkg/modeladapter"
	"github.com/arkterm/arkterm/pkg/suggest"
)

const banner = "arkterm · your terminal assistant"

func (s *Session) print(text string) {
	_, _ = fmt.Fprint(s.opts.Out, text)
}

func (s *Session) println(text string) {
	_, _ = fmt.Fprintln(s.opts.Out, text)
}

func (s *Session) warn(text string) {
	s.println(styles.WarningStyle.Render(text))
}

func (s *Session) printBanner() {
	s.println(styles.BannerStyle.Render(banner))
	s.println(styles.DimStyle.Render(fmt.Sprintf("model %s · type !help for commands, Ctrl-D to quit", s.cfg.API.Model)))
	s.println("")
}

func (s *Session) printReply(reply message.Message, elapsed time.Duration) {
	if s.opts.Verbose {
		if reasoning, ok := reply.GetMeta(message.MetaReasoning); ok && reasoning != "" {
			s.println(styles.ThinkingTextStyle.Render(reasoning))
			s.println("")
		}
	}

	text := reply.TextContent()
	if s.opts.Markdown {
		text = format.RenderMarkdown(text)
	}
	s.println(text)

	if reason, ok := reply.GetMeta(message.MetaFinishReason); ok && reason == "length" {
		s.warn(fmt.Sprintf("Response truncated at max_tokens (%d).", s.cfg.Settings.MaxTokens))
	}

	if exhausted, reset := s.quota().Exhausted(time.Now()); exhausted {
		s.warn(fmt.Sprintf("API quota used up; it resets in %s.", format.FmtDuration(time.Until(reset))))
	}

	if s.opts.Verbose {
		s.println(styles.StatusStyle.Render(s.usageLine(elapsed)))
	}
}

// quota returns the rate limit state of the last response, or nil.
func (s *Session) quota() *modeladapter.RateLimitInfo {
	r, ok := modeladapter.Unwrap(s.completer).(modeladapter.RateLimitInfoReporter)
	if !ok {
		return nil
	}
	return r.LastRateLimitInfo()
}

// usageLine summarizes the last call for verbose mode.
func (s *Session) usageLine(elapsed time.Duration) string {
	parts := []string{format.FmtDuration(elapsed)}

	if ur, ok := modeladapter.Unwrap(s.completer).(modeladapter.UsageReporter); ok {
		if last, ok := ur.UsageTracker().Last(); ok {
			parts = append(parts, fmt.Sprintf("%s in / %s out",
				format.FmtTokens(last.InputTokens), format.FmtTokens(last.OutputTokens)))
		}
		total := ur.UsageTracker().Total()
		parts = append(parts, fmt.Sprintf("session %s tokens", format.FmtTokens(total.Total())))
	}

	if info := s.quota(); info != nil && info.RemainingRequests >= 0 {
		parts = append(parts, fmt.Sprintf("%d requests left", info.RemainingRequests))
	}

	var est modeladapter.TokenEstimator
	parts = append(parts, fmt.Sprintf("context ~%s", format.FmtTokens(est.EstimateChat(s.chat))))

	return styles.TreeCorner + strings.Join(parts, " · ")
}

// listSuggestions shows commands that will not be executed.
func (s *Session) listSuggestions(blocks []suggest.Block) {
	s.println("")
	if len(blocks) == 1 {
		s.println(styles.CommandLabelStyle.Render("Suggested command:"))
	} else {
		s.println(styles.CommandLabelStyle.Render("Suggested commands:"))
	}
	s.printBlocks(blocks)

	if !s.cfg.Settings.AllowCommandExecution {
		s.println(styles.DimStyle.Render("Command execution is disabled (allow_command_execution: false)."))
	}
}

func (s *Session) printBlocks(blocks []suggest.Block) {
	for i, b := range blocks {
		prefix := "  "
		if len(blocks) > 1 {
			prefix = fmt.Sprintf("  %d. ", i+1)
		}
		indent := strings.Repeat(" ", len(prefix))

		for j, line := range strings.Split(b.Command, "\n") {
			if j == 0 {
				s.println(prefix + styles.CommandStyle.Render(line))
				continue
			}
			s.println(indent + styles.CommandStyle.Render(line))
		}
	}
}

// reportError prints a message for a failed completion. The user turn has
// already been removed from the conversation.
func (s *Session) reportError(err error) {
	var (
		authErr   *modeladapter.AuthError
		rateErr   *modeladapter.RateLimitError
		provErr   *modeladapter.ProviderError
		netErr    *modeladapter.NetworkError
		statusErr *modeladapter.StatusError
	)

	var msg string

	switch {
	case errors.Is(err, context.Canceled):
		msg = "Interrupted."
	case errors.As(err, &authErr):
		msg = fmt.Sprintf("Authentication failed (status %d): check api_key in %s", authErr.StatusCode, s.configPathOrDefault())
	case errors.As(err, &rateErr):
		retry := rateErr.RetryAfter
		if exhausted, reset := s.quota().Exhausted(time.Now()); retry <= 0 && exhausted {
			retry = time.Until(reset)
		}
		if retry > 0 {
			msg = fmt.Sprintf("Rate limited by the API, retry after %s.", retry.Round(time.Second))
		} else {
			msg = "Rate limited by the API, try again shortly."
		}
	case errors.As(err, &provErr):
		msg = fmt.Sprintf("The API failed on its side (status %d), try again later.", provErr.StatusCode)
	case errors.As(err, &netErr):
		msg = fmt.Sprintf("Network error: could not reach %s: %v", s.cfg.API.APIBase, netErr.Err)
	case errors.As(err, &statusErr):
		msg = fmt.Sprintf("Request rejected (status %d): %s", statusErr.StatusCode, statusErr.Body)
	default:
		msg = fmt.Sprintf("Error: %v", err)
	}

	s.log.Debug("turn failed", "error", err)
	s.println(styles.ErrorBlockStyle.Render(styles.ErrorStyle.Render(msg)))
}

func (s *Session) configPathOrDefault() string {
	if s.opts.ConfigPath != "" {
		return s.opts.ConfigPath
	}
	return "~/.aiterm/config.yaml"
}
