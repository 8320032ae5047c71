// Package session implements the terminal session loop: it reads user
// input, sends it to the model, renders the reply and, when allowed, runs
// suggested commands after explicit confirmation.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/arkterm/arkterm/cmd/arkterm/internal/format"
	"github.com/arkterm/arkterm/cmd/arkterm/internal/styles"
	"github.com/arkterm/arkterm/pkg/chats/chat"
	"github.com/arkterm/arkterm/pkg/chats/message"
	"github.com/arkterm/arkterm/pkg/chats/role"
	"github.com/arkterm/arkterm/pkg/config"
	"github.com/arkterm/arkterm/pkg/history"
	"github.com/arkterm/arkterm/pkg/modeladapter"
	"github.com/arkterm/arkterm/pkg/permissions"
	"github.com/arkterm/arkterm/pkg/shellexec"
	"github.com/arkterm/arkterm/pkg/suggest"
)

// errEndSession ends the loop without an error.
var errEndSession = errors.New("end of session")

// Indicator shows progress while a request is in flight.
type Indicator interface {
	Start(msg string) (stop func())
}

// CompleterFactory rebuilds the model client after the config changed.
type CompleterFactory func(cfg config.Config) (modeladapter.Completer, error)

// EditFunc opens path in the user's editor and waits for it to exit.
type EditFunc func(ctx context.Context, path string) error

// Options configure a Session. Completer, Runner, In and Out are required.
type Options struct {
	Config       config.Config
	ConfigPath   string
	SystemPrompt string

	Completer    modeladapter.Completer
	NewCompleter CompleterFactory // Used by !model and !config; nil keeps the current client.
	Runner       shellexec.Runner
	Permissions  *permissions.Store // nil trusts nothing.
	History      *history.Store     // nil disables history.

	In         io.Reader
	Out        io.Writer
	Interrupts <-chan struct{} // One value per SIGINT.
	Indicator  Indicator       // nil shows nothing.
	Edit       EditFunc        // nil uses $EDITOR.

	Markdown bool // Render replies with glamour.
	Verbose  bool // Show usage, timing and reasoning text.
	Log      *slog.Logger

	// OnState, when set, observes every state transition.
	OnState func(State)
}

// Session is one invocation of the terminal loop. It is not safe for
// concurrent use.
type Session struct {
	opts      Options
	cfg       config.Config
	completer modeladapter.Completer
	chat      *chat.Chat
	gate      *shellexec.Gate
	reader    *lineReader
	log       *slog.Logger
	state     State
}

// New creates a Session seeded with the system prompt.
func New(opts Options) *Session {
	log := opts.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	s := &Session{
		opts:      opts,
		cfg:       opts.Config,
		completer: opts.Completer,
		chat:      chat.New(),
		log:       log,
	}

	if opts.SystemPrompt != "" {
		s.chat.Append(message.New(role.System, opts.SystemPrompt))
	}

	s.gate = shellexec.NewGate(opts.Permissions, s.ask)

	return s
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Config returns the configuration in effect.
func (s *Session) Config() config.Config { return s.cfg }

// Chat returns the conversation so far.
func (s *Session) Chat() *chat.Chat { return s.chat }

func (s *Session) setState(st State) {
	s.state = st
	if s.opts.OnState != nil {
		s.opts.OnState(st)
	}
}

// Run starts the interactive loop and blocks until end of input, !exit, or
// ctx cancellation. Only ctx cancellation yields a non-nil error.
func (s *Session) Run(ctx context.Context) error {
	s.reader = newLineReader(s.opts.In)
	defer s.reader.Close()

	s.printBanner()
	s.setState(Idle)

	for {
		line, err := s.prompt(ctx, styles.PromptStyle.Render(">")+" ")
		switch {
		case errors.Is(err, errInterrupted):
			s.println("")
			continue
		case errors.Is(err, io.EOF):
			s.println("")
			return nil
		case err != nil:
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "!") {
			err = s.builtin(ctx, line)
		} else {
			err = s.turn(ctx, line, true)
		}

		if errors.Is(err, errEndSession) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// RunOnce answers a single query without built-ins or confirmation;
// suggested commands are listed only.
func (s *Session) RunOnce(ctx context.Context, query string) error {
	s.setState(Idle)

	err := s.turn(ctx, strings.TrimSpace(query), false)
	if errors.Is(err, errEndSession) {
		return nil
	}
	return err
}

// turn runs one query through the model. Errors from the model are
// reported and swallowed; only session-ending errors are returned.
func (s *Session) turn(ctx context.Context, query string, confirm bool) error {
	s.chat.Append(message.New(role.User, query))
	s.setState(AwaitingResponse)

	turnCtx, cancel := context.WithCancel(ctx)
	stopWatch := s.cancelOnInterrupt(turnCtx, cancel)
	stopSpin := s.startIndicator()

	start := time.Now()
	reply, err := s.completer.Complete(turnCtx, s.chat)
	elapsed := time.Since(start)

	stopSpin()
	stopWatch()
	cancel()

	if err != nil {
		s.chat.Pop()
		s.setState(Idle)

		if ctx.Err() != nil {
			return ctx.Err()
		}

		s.reportError(err)
		return nil
	}

	s.chat.Append(reply)
	s.printReply(reply, elapsed)
	s.saveHistory(query, reply.Text)

	blocks := suggest.Commands(reply.Text)
	if len(blocks) == 0 {
		s.setState(DisplayOnly)
		s.setState(Idle)
		return nil
	}

	if !s.cfg.Settings.AllowCommandExecution || !confirm {
		s.setState(DisplayOnly)
		s.listSuggestions(blocks)
		s.setState(Idle)
		return nil
	}

	s.setState(AwaitingConfirmation)
	err = s.confirmAndRun(ctx, blocks)
	s.setState(Idle)

	return err
}

// cancelOnInterrupt cancels ctx on the next interrupt. The returned function
// stops watching.
func (s *Session) cancelOnInterrupt(ctx context.Context, cancel context.CancelFunc) func() {
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		select {
		case <-s.opts.Interrupts:
			cancel()
		case <-done:
		case <-ctx.Done():
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}

func (s *Session) startIndicator() func() {
	if s.opts.Indicator == nil {
		return func() {}
	}
	return s.opts.Indicator.Start(format.RandomThinkingMessage())
}

// prompt prints question and reads one line.
func (s *Session) prompt(ctx context.Context, question string) (string, error) {
	if s.reader == nil {
		return "", io.EOF
	}

	s.print(question)

	return s.reader.ReadLine(ctx, s.opts.Interrupts)
}

// ask adapts prompt to shellexec.AskFunc.
func (s *Session) ask(ctx context.Context, question string, _ []string) (string, error) {
	return s.prompt(ctx, styles.QuestionStyle.Render(question)+" ")
}

func (s *Session) saveHistory(query, response string) {
	if s.opts.History == nil {
		return
	}

	err := s.opts.History.Append(history.Entry{
		Query:    query,
		Response: response,
		Model:    s.cfg.API.Model,
	})

	switch {
	case errors.Is(err, history.ErrCorrupt):
		s.warn("History file was corrupted or invalid; started a new history.")
	case err != nil:
		s.warn(fmt.Sprintf("Could not save history to %s: %v", s.opts.History.Path(), err))
	}
}
