package shellexec

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellRunner_Success(t *testing.T) {
	r := &ShellRunner{Shell: "/bin/sh"}

	res, err := r.Run(context.Background(), "echo hello; echo world")
	require.NoError(t, err)

	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello\nworld\n", res.Output)
	assert.Equal(t, "echo hello; echo world", res.Command)
}

func TestShellRunner_CombinesStderr(t *testing.T) {
	r := &ShellRunner{Shell: "/bin/sh"}

	res, err := r.Run(context.Background(), "echo out; echo err 1>&2")
	require.NoError(t, err)
	assert.Contains(t, res.Output, "out")
	assert.Contains(t, res.Output, "err")
}

func TestShellRunner_NonZeroExit(t *testing.T) {
	r := &ShellRunner{Shell: "/bin/sh"}

	res, err := r.Run(context.Background(), "echo boom; exit 3")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommandFailed)

	var ce *CommandError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 3, ce.ExitCode)
	assert.Equal(t, "boom\n", ce.Output)
	assert.Equal(t, 3, res.ExitCode)
}

func TestShellRunner_ShellFallback(t *testing.T) {
	t.Setenv("SHELL", "")
	r := &ShellRunner{}

	assert.Equal(t, DefaultShell, r.shell())

	t.Setenv("SHELL", "/bin/sh")
	res, err := r.Run(context.Background(), "echo via-env")
	require.NoError(t, err)
	assert.Equal(t, "via-env\n", res.Output)
}

func TestShellRunner_MissingShell(t *testing.T) {
	r := &ShellRunner{Shell: "/definitely/not/a/shell"}

	_, err := r.Run(context.Background(), "true")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCommandFailed)
	assert.ErrorContains(t, err, "shellexec: start")
}

func TestShellRunner_Cancel(t *testing.T) {
	r := &ShellRunner{Shell: "/bin/sh"}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.Run(ctx, "sleep 10")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestShellRunner_Stdin(t *testing.T) {
	r := &ShellRunner{Shell: "/bin/sh", Stdin: strings.NewReader("piped\n")}

	res, err := r.Run(context.Background(), "cat")
	require.NoError(t, err)
	assert.Equal(t, "piped\n", res.Output)
}

func TestShellRunner_Logs(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := &ShellRunner{Shell: "/bin/sh", Log: log}
	_, _ = r.Run(context.Background(), "exit 2")

	assert.Contains(t, logs.String(), "command finished")
	assert.Contains(t, logs.String(), "exit_code=2")
}
