package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arkterm/arkterm/cmd/arkterm/internal/format"
	"github.com/arkterm/arkterm/cmd/arkterm/internal/styles"
	"github.com/arkterm/arkterm/pkg/shellexec"
	"github.com/arkterm/arkterm/pkg/suggest"
)

// confirmAndRun lets the user pick and approve one of blocks, then runs it.
// Only end of input and ctx cancellation are returned as errors.
func (s *Session) confirmAndRun(ctx context.Context, blocks []suggest.Block) error {
	s.println("")

	block := blocks[0]
	if len(blocks) == 1 {
		s.println(styles.CommandLabelStyle.Render("Suggested command:"))
		s.printBlocks(blocks)
	} else {
		s.println(styles.CommandLabelStyle.Render("Suggested commands:"))
		s.printBlocks(blocks)

		idx, err := s.selectBlock(ctx, len(blocks))
		if err != nil || idx < 0 {
			return s.abandon(err)
		}
		block = blocks[idx]
	}

	return s.confirmCommand(ctx, block.Command)
}

// confirmCommand asks y/N/a for command unless it is a simple command of a
// trusted program, and runs it when approved.
func (s *Session) confirmCommand(ctx context.Context, command string) error {
	decision, err := s.gate.Check(ctx, command)
	switch {
	case decision == shellexec.Trusted && err != nil:
		s.warn(fmt.Sprintf("Could not remember this program in %s: %v", s.opts.Permissions.Path(), err))
	case err != nil:
		return s.abandon(err)
	}

	s.log.Debug("command decision", "command", command, "decision", decision.String())

	if !decision.Runs() {
		s.println(styles.DimStyle.Render("Skipped."))
		return nil
	}

	switch decision {
	case shellexec.Trusted:
		s.println(styles.DimStyle.Render(fmt.Sprintf("Trusted %q for future runs.", suggest.Program(command))))
	case shellexec.PreTrusted:
		s.println(styles.DimStyle.Render(fmt.Sprintf("Running trusted program %q.", suggest.Program(command))))
	}

	s.runCommand(ctx, command)

	return nil
}

// selectBlock asks for a block number in 1..n. It returns -1 when the user
// skips.
func (s *Session) selectBlock(ctx context.Context, n int) (int, error) {
	question := fmt.Sprintf("Select a command to run [1-%d] (Enter to skip):", n)

	for {
		answer, err := s.prompt(ctx, styles.QuestionStyle.Render(question)+" ")
		if err != nil {
			return -1, err
		}

		answer = strings.TrimSpace(answer)
		if answer == "" {
			s.println(styles.DimStyle.Render("Skipped."))
			return -1, nil
		}

		idx, convErr := strconv.Atoi(answer)
		if convErr == nil && idx >= 1 && idx <= n {
			return idx - 1, nil
		}

		s.warn(fmt.Sprintf("Please enter a number between 1 and %d.", n))
	}
}

// abandon maps an error from a confirmation prompt onto the loop: end of
// input ends the session, an interrupt discards the suggestion.
func (s *Session) abandon(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		s.println("")
		return errEndSession
	case errors.Is(err, errInterrupted):
		s.println("")
		s.println(styles.DimStyle.Render("Skipped."))
		return nil
	default:
		return err
	}
}

// runCommand executes command and prints its output. Failures are reported,
// not returned; an interrupt stops only the command.
func (s *Session) runCommand(ctx context.Context, command string) {
	runCtx, cancel := context.WithCancel(ctx)
	stopWatch := s.cancelOnInterrupt(runCtx, cancel)

	res, err := s.opts.Runner.Run(runCtx, command)

	stopWatch()
	cancel()

	var cmdErr *shellexec.CommandError

	switch {
	case err == nil:
		s.printOutput(res.Output)
		if s.opts.Verbose {
			s.println(styles.StatusStyle.Render(styles.TreeCorner + "exit 0 · " + format.FmtDuration(res.Duration)))
		}
	case errors.As(err, &cmdErr):
		s.printOutput(cmdErr.Output)
		s.println(styles.ErrorStyle.Render(fmt.Sprintf("CommandExecutionFailed: exit code %d", cmdErr.ExitCode)))
	case errors.Is(err, context.Canceled):
		s.printOutput(res.Output)
		s.println(styles.WarningStyle.Render("Interrupted."))
	default:
		s.println(styles.ErrorStyle.Render(fmt.Sprintf("Could not run command: %v", err)))
	}
}

func (s *Session) printOutput(out string) {
	out = strings.TrimRight(out, "\n")
	if out == "" {
		return
	}
	s.println(out)
}
