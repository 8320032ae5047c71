// Package shellexec runs confirmed command suggestions through the user's
// shell. Every execution is gated by explicit user approval; programs the
// user answered "always" for are persisted in a permissions.Store and run
// without asking again.
package shellexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	osexec "os/exec"
	"time"
)

// DefaultShell is used when $SHELL is unset.
const DefaultShell = "/bin/sh"

// ErrCommandFailed matches every *CommandError.
var ErrCommandFailed = errors.New("command execution failed")

// Result is the outcome of one command run.
type Result struct {
	Command  string
	Output   string // stdout and stderr interleaved as written.
	ExitCode int
	Duration time.Duration
}

// CommandError is returned when the command ran but exited non-zero.
type CommandError struct {
	Command  string
	ExitCode int
	Output   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q exited with status %d", e.Command, e.ExitCode)
}

func (e *CommandError) Is(target error) bool { return target == ErrCommandFailed }

// Runner executes a shell command line.
type Runner interface {
	Run(ctx context.Context, command string) (Result, error)
}

var _ Runner = (*ShellRunner)(nil)

// ShellRunner runs commands with `$SHELL -c`.
type ShellRunner struct {
	Shell string       // Shell binary; empty uses $SHELL, then DefaultShell.
	Stdin io.Reader    // Child stdin; nil means the null device.
	Log   *slog.Logger // Optional; receives one Debug record per run.
}

// NewShellRunner returns a runner that uses the user's shell and shares the
// process stdin so interactive commands keep working.
func NewShellRunner(log *slog.Logger) *ShellRunner {
	return &ShellRunner{Stdin: os.Stdin, Log: log}
}

// Run executes command and waits for it. A non-zero exit returns the Result
// together with a *CommandError. Cancelling ctx kills the command and returns
// the context error.
func (r *ShellRunner) Run(ctx context.Context, command string) (Result, error) {
	shell := r.shell()

	cmd := osexec.CommandContext(ctx, shell, "-c", command) //nolint:gosec // command is approved by the user
	cmd.Stdin = r.Stdin
	cmd.WaitDelay = 2 * time.Second

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	start := time.Now()
	err := cmd.Run()

	res := Result{
		Command:  command,
		Output:   buf.String(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	r.logRun(ctx, shell, res, err)

	if err == nil {
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}

	var exitErr *osexec.ExitError
	if errors.As(err, &exitErr) {
		return res, &CommandError{Command: command, ExitCode: res.ExitCode, Output: res.Output}
	}

	return res, fmt.Errorf("shellexec: start %s: %w", shell, err)
}

func (r *ShellRunner) shell() string {
	if r.Shell != "" {
		return r.Shell
	}
	if s := os.Getenv("SHELL"); s != "" {
		return s
	}
	return DefaultShell
}

func (r *ShellRunner) logRun(ctx context.Context, shell string, res Result, err error) {
	if r.Log == nil {
		return
	}

	attrs := []any{
		"shell", shell,
		"command", res.Command,
		"exit_code", res.ExitCode,
		"duration", res.Duration,
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}

	r.Log.DebugContext(ctx, "command finished", attrs...)
}
