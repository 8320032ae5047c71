package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/arkterm/arkterm/cmd/arkterm/internal/format"
	"github.com/arkterm/arkterm/cmd/arkterm/internal/session"
	"github.com/arkterm/arkterm/cmd/arkterm/internal/setupwizard"
	"github.com/arkterm/arkterm/cmd/arkterm/internal/spinner"
	"github.com/arkterm/arkterm/cmd/arkterm/internal/styles"
	"github.com/arkterm/arkterm/cmd/arkterm/internal/tty"
	"github.com/arkterm/arkterm/pkg/arktermdir"
	"github.com/arkterm/arkterm/pkg/config"
	"github.com/arkterm/arkterm/pkg/history"
	"github.com/arkterm/arkterm/pkg/modeladapter"
	"github.com/arkterm/arkterm/pkg/permissions"
	"github.com/arkterm/arkterm/pkg/projectctx"
	"github.com/arkterm/arkterm/pkg/providers"
	"github.com/arkterm/arkterm/pkg/shellexec"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type options struct {
	setup       bool
	history     bool
	interactive bool
	verbose     bool
	configPath  string
	envFile     string
	query       string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("arkterm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: arkterm [flags] [query...]\n\n"+
			"Without a query, starts an interactive session. With a query, answers it once.\n\nFlags:\n")
		fs.PrintDefaults()
	}

	fs.BoolVar(&opts.setup, "setup", false, "run the setup wizard and write ~/.aiterm/config.yaml")
	fs.BoolVar(&opts.history, "history", false, "print the query history and exit")
	fs.BoolVar(&opts.interactive, "interactive", false, "start an interactive session (after answering the query, if any)")
	fs.BoolVar(&opts.interactive, "i", false, "shorthand for --interactive")
	fs.BoolVar(&opts.verbose, "verbose", false, "show debug logs, token usage and reasoning text")
	fs.StringVar(&opts.configPath, "config", "", "path to the config file (default ~/.aiterm/config.yaml)")
	fs.StringVar(&opts.envFile, "env", "", "path to a .env file (default ~/.aiterm/.env, ignored if missing)")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	opts.query = strings.TrimSpace(strings.Join(fs.Args(), " "))

	return opts, nil
}

// run is main without os.Exit.
func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		return exitUsage
	}

	dir, err := arktermdir.Default()
	if err != nil {
		printError(stderr, err)
		return exitFailure
	}

	if opts.configPath == "" {
		opts.configPath = dir.ConfigPath()
	}
	if opts.envFile == "" {
		opts.envFile = filepath.Join(dir.Root(), ".env")
	}

	if err := loadDotEnv(opts.envFile); err != nil {
		printError(stderr, err)
		return exitFailure
	}

	log := newLogger(stderr, opts.verbose)

	switch {
	case opts.setup:
		return runSetup(opts.configPath, stdout, stderr)
	case opts.history:
		return runHistory(dir, stdout, stderr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	return runSession(ctx, opts, dir, log, stdout, stderr)
}

func runSetup(path string, stdout, stderr io.Writer) int {
	w := &setupwizard.Wizard{
		Path:        path,
		Out:         stdout,
		Interactive: tty.IsTerminal(os.Stdin) && tty.IsTerminal(os.Stdout),
	}

	err := w.Run()
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, setupwizard.ErrNeedsAPIKey), errors.Is(err, setupwizard.ErrNotInteractive):
		return exitFailure
	case errors.Is(err, setupwizard.ErrAborted):
		_, _ = fmt.Fprintln(stderr, "Setup aborted; nothing written.")
		return exitFailure
	default:
		printError(stderr, err)
		return exitFailure
	}
}

func runHistory(dir arktermdir.Dir, stdout, stderr io.Writer) int {
	entries, err := history.New(dir.HistoryPath()).Entries()
	if err != nil {
		printError(stderr, err)
		return exitFailure
	}

	session.PrintHistory(stdout, entries)
	return exitOK
}

func runSession(ctx context.Context, opts options, dir arktermdir.Dir, log *slog.Logger, stdout, stderr io.Writer) int {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		printError(stderr, err)
		if !strings.Contains(err.Error(), config.SetupHint) {
			_, _ = fmt.Fprintln(stderr, styles.DimStyle.Render("Hint: "+config.SetupHint))
		}
		return exitFailure
	}

	newCompleter := func(cfg config.Config) (modeladapter.Completer, error) {
		c, err := providers.New(cfg.API, cfg.Settings, nil)
		if err != nil {
			return nil, err
		}
		return modeladapter.WithLogger(c, log, cfg.API.Provider), nil
	}

	completer, err := newCompleter(cfg)
	if err != nil {
		printError(stderr, err)
		return exitFailure
	}

	if !dir.Exists() {
		if err := arktermdir.EnsureStructure(dir); err != nil {
			log.Warn("history and trusted commands will not be saved", "error", err)
		}
	}

	perms, err := permissions.New(dir.PermissionsPath())
	switch {
	case errors.Is(err, permissions.ErrCorrupt):
		log.Warn("trusted commands file ignored", "path", dir.PermissionsPath(), "error", err)
	case err != nil:
		printError(stderr, err)
		return exitFailure
	}

	interactiveOut := tty.IsTerminal(os.Stdout)
	if interactiveOut {
		format.IsDarkBG = tty.DetectDarkBackground()
		format.InitMarkdownRenderer(tty.Width(os.Stdout))
	}

	interrupts, stopRelay := relayInterrupts()
	defer stopRelay()

	s := session.New(session.Options{
		Config:       cfg,
		ConfigPath:   opts.configPath,
		SystemPrompt: projectctx.SystemPrompt(projectctx.Load()),
		Completer:    completer,
		NewCompleter: newCompleter,
		Runner:       shellexec.NewShellRunner(log),
		Permissions:  perms,
		History:      history.New(dir.HistoryPath()),
		In:           os.Stdin,
		Out:          stdout,
		Interrupts:   interrupts,
		Indicator:    spinner.New(os.Stderr, tty.IsTerminal(os.Stderr)),
		Markdown:     interactiveOut,
		Verbose:      opts.verbose,
		Log:          log,
	})

	if opts.query != "" {
		if err := s.RunOnce(ctx, opts.query); err != nil {
			return exitFailure
		}
		if !opts.interactive {
			return exitOK
		}
	}

	if err := s.Run(ctx); err != nil {
		log.Debug("session ended", "error", err)
		return exitFailure
	}

	return exitOK
}

// relayInterrupts turns SIGINT into values on the returned channel instead
// of terminating the process. A pending interrupt is not duplicated.
func relayInterrupts() (<-chan struct{}, func()) {
	sigs := make(chan os.Signal, 1)
	out := make(chan struct{}, 1)
	done := make(chan struct{})

	signal.Notify(sigs, os.Interrupt)

	go func() {
		for {
			select {
			case <-sigs:
				select {
				case out <- struct{}{}:
				default:
				}
			case <-done:
				return
			}
		}
	}()

	return out, func() {
		signal.Stop(sigs)
		close(done)
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadDotEnv loads path into the environment. A missing file is ignored and
// variables already set win.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func printError(w io.Writer, err error) {
	_, _ = fmt.Fprintln(w, styles.ErrorStyle.Render("error: "+err.Error()))
}
