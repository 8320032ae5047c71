package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	osexec "os/exec"
	"strconv"
	"strings"

	"github.com/arkterm/arkterm/cmd/arkterm/internal/format"
	"github.com/arkterm/arkterm/cmd/arkterm/internal/styles"
	"github.com/arkterm/arkterm/pkg/config"
	"github.com/arkterm/arkterm/pkg/history"
	"github.com/arkterm/arkterm/pkg/modeladapter"
	"github.com/arkterm/arkterm/pkg/providers/groq"
)

const (
	defaultEditor       = "nano"
	defaultHistoryCount = 10
	historyQueryWidth   = 40
	historyReplyWidth   = 60
)

type builtinCmd struct {
	name string
	args string
	help string
	run  func(s *Session, ctx context.Context, arg string) error
}

var builtins []builtinCmd

func init() {
	builtins = []builtinCmd{
		{name: "!help", help: "show this help", run: (*Session).cmdHelp},
		{name: "!exit", help: "end the session", run: (*Session).cmdExit},
		{name: "!quit", help: "end the session", run: (*Session).cmdExit},
		{name: "!clear", help: "forget the conversation so far", run: (*Session).cmdClear},
		{name: "!exec", args: "<command>", help: "run a command directly", run: (*Session).cmdExec},
		{name: "!model", args: "[name]", help: "show or change the model", run: (*Session).cmdModel},
		{name: "!config", help: "edit the config file and reload it", run: (*Session).cmdConfig},
		{name: "!history", args: "[n]", help: "show the last n queries (default 10)", run: (*Session).cmdHistory},
		{name: "!trusted", help: "list programs that run without asking", run: (*Session).cmdTrusted},
		{name: "!untrust", args: "<program>", help: "ask again before running program", run: (*Session).cmdUntrust},
	}
}

// builtin dispatches a line starting with "!".
func (s *Session) builtin(ctx context.Context, line string) error {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	for _, b := range builtins {
		if b.name == strings.ToLower(name) {
			return b.run(s, ctx, arg)
		}
	}

	s.warn(fmt.Sprintf("Unknown command %s. Type !help for the list.", name))
	return nil
}

func (s *Session) cmdHelp(_ context.Context, _ string) error {
	s.println(styles.BannerStyle.Render(banner))
	s.println("")
	s.println(styles.HeadingStyle.Render("Commands"))

	for _, b := range builtins {
		usage := b.name
		if b.args != "" {
			usage += " " + b.args
		}
		s.println("  " + styles.CommandStyle.Render(format.PadRight(usage, 20)) + styles.DimStyle.Render(b.help))
	}

	s.println("")
	s.println(styles.DimStyle.Render("Anything else is sent to the model. Ctrl-C cancels a request, Ctrl-D quits."))
	return nil
}

func (s *Session) cmdExit(_ context.Context, _ string) error {
	return errEndSession
}

func (s *Session) cmdClear(_ context.Context, _ string) error {
	s.chat.Reset()
	if ur, ok := modeladapter.Unwrap(s.completer).(modeladapter.UsageReporter); ok {
		ur.UsageTracker().Reset()
	}
	s.println(styles.SuccessStyle.Render("Conversation cleared."))
	return nil
}

func (s *Session) cmdExec(ctx context.Context, command string) error {
	if !s.cfg.Settings.AllowCommandExecution {
		s.warn("Command execution is disabled (allow_command_execution: false).")
		return nil
	}
	if command == "" {
		s.warn("Usage: !exec <command>")
		return nil
	}

	s.setState(AwaitingConfirmation)
	defer s.setState(Idle)

	return s.confirmCommand(ctx, command)
}

func (s *Session) cmdModel(_ context.Context, name string) error {
	if name == "" {
		s.println(fmt.Sprintf("Current model: %s", styles.HeadingStyle.Render(s.cfg.API.Model)))
		s.println(styles.DimStyle.Render("Known Groq models:"))
		for _, m := range groq.Models {
			marker := "  "
			if m == s.cfg.API.Model {
				marker = "* "
			}
			s.println(marker + m)
		}
		return nil
	}

	if !groq.IsKnownModel(name) {
		s.warn(fmt.Sprintf("%s is not a known Groq model; the API may reject it.", name))
	}

	next := s.cfg
	next.API.Model = name
	if !s.apply(next) {
		return nil
	}

	if err := s.persistModel(name); err != nil {
		s.warn(fmt.Sprintf("Model changed for this session only: %v", err))
		return nil
	}

	s.println(styles.SuccessStyle.Render("Model set to " + name + "."))
	return nil
}

// persistModel writes the model to the config file without touching the
// other values, which may hold unexpanded ${VAR} references.
func (s *Session) persistModel(name string) error {
	if s.opts.ConfigPath == "" {
		return errors.New("no config file")
	}

	raw, err := config.LoadRaw(s.opts.ConfigPath)
	if err != nil {
		return err
	}
	raw.API.Model = name

	return config.Save(s.opts.ConfigPath, raw)
}

func (s *Session) cmdConfig(ctx context.Context, _ string) error {
	if s.opts.ConfigPath == "" {
		s.warn("No config file to edit.")
		return nil
	}

	edit := s.opts.Edit
	if edit == nil {
		edit = runEditor
	}

	if err := edit(ctx, s.opts.ConfigPath); err != nil {
		s.println(styles.ErrorStyle.Render(fmt.Sprintf("Editor failed: %v", err)))
		return nil
	}

	cfg, err := config.Load(s.opts.ConfigPath)
	if err != nil {
		s.println(styles.ErrorStyle.Render(fmt.Sprintf("Config not reloaded: %v", err)))
		s.println(styles.DimStyle.Render("Keeping the previous settings."))
		return nil
	}

	if s.apply(cfg) {
		s.println(styles.SuccessStyle.Render("Config reloaded."))
	}
	return nil
}

// apply switches to cfg, rebuilding the client when a factory is set. On
// failure the previous config stays in effect.
func (s *Session) apply(cfg config.Config) bool {
	if s.opts.NewCompleter != nil {
		c, err := s.opts.NewCompleter(cfg)
		if err != nil {
			s.println(styles.ErrorStyle.Render(fmt.Sprintf("Could not switch client: %v", err)))
			return false
		}
		s.completer = c
	}

	s.cfg = cfg
	s.log.Debug("config applied", "model", cfg.API.Model, "provider", cfg.API.Provider)
	return true
}

func (s *Session) cmdHistory(_ context.Context, arg string) error {
	if s.opts.History == nil {
		s.warn("History is disabled.")
		return nil
	}

	n := defaultHistoryCount
	if arg != "" {
		v, err := strconv.Atoi(arg)
		if err != nil || v <= 0 {
			s.warn("Usage: !history [n]")
			return nil
		}
		n = v
	}

	entries, err := s.opts.History.Last(n)
	if err != nil && !errors.Is(err, history.ErrCorrupt) {
		s.println(styles.ErrorStyle.Render(fmt.Sprintf("Could not read history: %v", err)))
		return nil
	}
	if errors.Is(err, history.ErrCorrupt) {
		s.warn("History file is corrupted; it will be replaced on the next query.")
	}

	PrintHistory(s.opts.Out, entries)
	return nil
}

func (s *Session) cmdTrusted(_ context.Context, _ string) error {
	if s.opts.Permissions == nil {
		s.println(styles.DimStyle.Render("No trusted programs."))
		return nil
	}

	progs := s.opts.Permissions.Commands()
	if len(progs) == 0 {
		s.println(styles.DimStyle.Render("No trusted programs."))
		return nil
	}

	s.println(styles.HeadingStyle.Render("Trusted programs"))
	for _, p := range progs {
		s.println("  " + styles.CommandStyle.Render(p))
	}
	return nil
}

func (s *Session) cmdUntrust(_ context.Context, program string) error {
	if program == "" {
		s.warn("Usage: !untrust <program>")
		return nil
	}
	if s.opts.Permissions == nil || !s.opts.Permissions.IsCommandTrusted(program) {
		s.warn(fmt.Sprintf("%s is not trusted.", program))
		return nil
	}

	if err := s.opts.Permissions.RevokeCommand(program); err != nil {
		s.println(styles.ErrorStyle.Render(fmt.Sprintf("Could not update trusted programs: %v", err)))
		return nil
	}

	s.println(styles.SuccessStyle.Render(fmt.Sprintf("%s will ask before running again.", program)))
	return nil
}

// runEditor opens path in $EDITOR, falling back to nano.
func runEditor(ctx context.Context, path string) error {
	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = defaultEditor
	}

	fields := strings.Fields(editor)
	cmd := osexec.CommandContext(ctx, fields[0], append(fields[1:], path)...) //nolint:gosec // user-chosen editor
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
