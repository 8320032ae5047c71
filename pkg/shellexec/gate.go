package shellexec

import (
	"context"
	"fmt"
	"strings"

	"github.com/arkterm/arkterm/pkg/permissions"
	"github.com/arkterm/arkterm/pkg/suggest"
)

// ConfirmQuestion is asked before running an untrusted command.
const ConfirmQuestion = "Execute this command? [y/N/a]"

// AskFunc asks the user a question and blocks until a response is received.
type AskFunc func(ctx context.Context, question string, options []string) (string, error)

// Decision is the user's answer to a confirmation.
type Decision int

const (
	// Declined means the command must not run.
	Declined Decision = iota
	// Approved runs the command once.
	Approved
	// Trusted runs the command and trusts its program from now on.
	Trusted
	// PreTrusted means the program was already trusted and nobody was asked.
	PreTrusted
)

func (d Decision) String() string {
	switch d {
	case Approved:
		return "approved"
	case Trusted:
		return "trusted"
	case PreTrusted:
		return "pre-trusted"
	default:
		return "declined"
	}
}

// Runs reports whether the command should be executed.
func (d Decision) Runs() bool { return d != Declined }

// ParseAnswer maps a y/N/a reply to a Decision. Anything that is not a yes
// or an always declines.
func ParseAnswer(answer string) Decision {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return Approved
	case "a", "always":
		return Trusted
	default:
		return Declined
	}
}

// Gate asks for approval before commands run, consulting and updating the
// trusted program store.
type Gate struct {
	store *permissions.Store
	ask   AskFunc
}

// NewGate creates a Gate. A nil store trusts nothing and cannot remember
// "always" answers, which then behave as a plain yes.
func NewGate(store *permissions.Store, askFn AskFunc) *Gate {
	return &Gate{store: store, ask: askFn}
}

// IsTrusted reports whether command may run without asking: it must be a
// simple command, not run through sudo, whose program is trusted.
func (g *Gate) IsTrusted(command string) bool {
	program, ok := trustKey(command)
	return ok && g.store != nil && g.store.IsCommandTrusted(program)
}

// trustKey returns the program a trust decision applies to. Compound
// commands and sudo invocations have none, so they are always asked about.
func trustKey(command string) (string, bool) {
	if !IsSimpleCommand(command) {
		return "", false
	}

	program := suggest.Program(command)
	if program == "" || program != strings.Fields(command)[0] {
		return "", false
	}

	return program, true
}

// Check returns the decision for command, asking the user unless it is
// trusted. An "always" answer persists the program; a failure to persist is
// returned together with the Trusted decision so the caller can still run
// the command and warn. For a command without a trust key "always" runs it
// once.
func (g *Gate) Check(ctx context.Context, command string) (Decision, error) {
	if g.IsTrusted(command) {
		return PreTrusted, nil
	}

	resp, err := g.ask(ctx, ConfirmQuestion, []string{"y", "N", "a"})
	if err != nil {
		return Declined, fmt.Errorf("shellexec: ask permission: %w", err)
	}

	d := ParseAnswer(resp)
	if d != Trusted {
		return d, nil
	}

	program, ok := trustKey(command)
	if g.store == nil || !ok {
		return Approved, nil
	}

	if err := g.store.TrustCommand(program); err != nil {
		return Trusted, fmt.Errorf("shellexec: trust %s: %w", program, err)
	}

	return Trusted, nil
}
