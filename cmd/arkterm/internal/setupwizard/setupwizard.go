// Package setupwizard implements `arkterm --setup`: a huh form that writes
// ~/.aiterm/config.yaml after showing what will change.
package setupwizard

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/arkterm/arkterm/cmd/arkterm/internal/styles"
	"github.com/arkterm/arkterm/pkg/config"
	"github.com/arkterm/arkterm/pkg/providers/groq"
)

var (
	// ErrNeedsAPIKey is returned after defaults were written without a
	// terminal to ask for the key.
	ErrNeedsAPIKey = errors.New("setup: api_key must be edited before use")
	// ErrNotInteractive is returned when an existing config would need a
	// terminal to be changed.
	ErrNotInteractive = errors.New("setup: a terminal is required to change an existing config")
	// ErrAborted is returned when the user quits the form.
	ErrAborted = errors.New("setup: aborted")
)

// Answers holds the form fields as the user edits them.
type Answers struct {
	APIKey    string //nolint:gosec // form field, not a hardcoded secret
	Model     string
	APIBase   string
	MaxTokens string
	AllowExec bool
}

// AnswersFrom pre-fills the form from cfg. The placeholder key is left blank.
func AnswersFrom(cfg config.Config) Answers {
	a := Answers{
		APIKey:    cfg.API.APIKey,
		Model:     cfg.API.Model,
		APIBase:   cfg.API.APIBase,
		MaxTokens: strconv.Itoa(cfg.Settings.MaxTokens),
		AllowExec: cfg.Settings.AllowCommandExecution,
	}
	if a.APIKey == config.PlaceholderAPIKey {
		a.APIKey = ""
	}
	return a
}

// Config returns the defaults with the answers applied. Settings the form
// does not show are reset to their defaults, so rerunning setup replaces the
// file rather than merging into it.
func (a Answers) Config() (config.Config, error) {
	maxTokens, err := strconv.Atoi(strings.TrimSpace(a.MaxTokens))
	if err != nil {
		return config.Config{}, fmt.Errorf("setup: max_tokens: %w", err)
	}

	cfg := config.Default()
	cfg.API.APIKey = strings.TrimSpace(a.APIKey)
	cfg.API.Model = strings.TrimSpace(a.Model)
	cfg.API.APIBase = strings.TrimRight(strings.TrimSpace(a.APIBase), "/")
	cfg.Settings.MaxTokens = maxTokens
	cfg.Settings.AllowCommandExecution = a.AllowExec

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("setup: %w", err)
	}

	return cfg, nil
}

// FormFunc lets the user edit answers in place.
type FormFunc func(a *Answers) error

// ConfirmFunc asks a yes/no question.
type ConfirmFunc func(title string) (bool, error)

// Wizard runs the setup flow for one config file.
type Wizard struct {
	Path        string
	Out         io.Writer
	Interactive bool        // Stdin and stdout are terminals.
	Form        FormFunc    // nil uses RunForm.
	Confirm     ConfirmFunc // nil uses a huh confirm.
}

// Run executes the wizard. Without a terminal, a missing config is created
// with defaults and ErrNeedsAPIKey is returned so the caller exits non-zero.
func (w *Wizard) Run() error {
	current, existed, err := w.current()
	if err != nil {
		return err
	}

	if !w.Interactive {
		return w.writeDefaults(existed)
	}

	form := w.Form
	if form == nil {
		form = RunForm
	}
	confirm := w.Confirm
	if confirm == nil {
		confirm = runConfirm
	}

	answers := AnswersFrom(current)
	if err := form(&answers); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return fmt.Errorf("setup: form: %w", err)
	}

	next, err := answers.Config()
	if err != nil {
		return err
	}

	var before config.Config
	if existed {
		before = current
	}

	diff, err := Diff(w.Path, before, next, existed)
	if err != nil {
		return err
	}

	if diff == "" {
		w.println(styles.DimStyle.Render("No changes."))
		return nil
	}

	w.println(styles.HeadingStyle.Render("Changes to " + w.Path))
	w.println(colorDiff(diff))

	ok, err := confirm("Save these changes?")
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return fmt.Errorf("setup: confirm: %w", err)
	}
	if !ok {
		w.println(styles.DimStyle.Render("Nothing written."))
		return nil
	}

	if err := config.Save(w.Path, next); err != nil {
		return err
	}

	w.println(styles.SuccessStyle.Render("Saved " + w.Path))
	return nil
}

// current returns the config to start from and whether a file existed. An
// unreadable or invalid file is replaced by defaults.
func (w *Wizard) current() (config.Config, bool, error) {
	cfg, err := config.LoadRaw(w.Path)
	switch {
	case err == nil:
		return cfg, true, nil
	case errors.Is(err, config.ErrConfigMissing):
		return config.Default(), false, nil
	case errors.Is(err, config.ErrConfigInvalid):
		w.println(styles.WarningStyle.Render(fmt.Sprintf("Existing config is invalid (%v); starting from defaults.", err)))
		return config.Default(), false, nil
	default:
		return config.Config{}, false, err
	}
}

func (w *Wizard) writeDefaults(existed bool) error {
	if existed {
		w.println(fmt.Sprintf("%s already exists. Edit it directly or rerun arkterm --setup in a terminal.", w.Path))
		return ErrNotInteractive
	}

	if err := config.Save(w.Path, config.Default()); err != nil {
		return err
	}

	w.println(fmt.Sprintf("Wrote default config to %s.", w.Path))
	w.println(fmt.Sprintf("Replace %s with your Groq API key (or set ARKTERM_API_KEY).", config.PlaceholderAPIKey))
	return ErrNeedsAPIKey
}

func (w *Wizard) println(s string) {
	if w.Out == nil {
		return
	}
	_, _ = fmt.Fprintln(w.Out, s)
}

// RunForm shows the setup form on the terminal.
func RunForm(a *Answers) error {
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Groq API key").
			Description("Stored in the config file with mode 0600. ${VAR} references are expanded at load time.").
			EchoMode(huh.EchoModePassword).
			Value(&a.APIKey).
			Validate(validateKey),
		huh.NewSelect[string]().
			Title("Model").
			Options(huh.NewOptions(modelOptions(a.Model)...)...).
			Value(&a.Model),
		huh.NewInput().
			Title("API base URL").
			Value(&a.APIBase).
			Validate(validateBase),
		huh.NewInput().
			Title("Max tokens per response").
			Value(&a.MaxTokens).
			Validate(validateMaxTokens),
		huh.NewConfirm().
			Title("Offer to run suggested commands?").
			Description("Every command still needs your confirmation.").
			Value(&a.AllowExec),
	)).Run()
}

func runConfirm(title string) (bool, error) {
	ok := true
	err := huh.NewConfirm().Title(title).Value(&ok).Run()
	return ok, err
}

// modelOptions lists the known models, keeping current first when it is not
// one of them.
func modelOptions(current string) []string {
	if current == "" || groq.IsKnownModel(current) {
		return groq.Models
	}
	return append([]string{current}, groq.Models...)
}

func validateKey(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || s == config.PlaceholderAPIKey {
		return errors.New("an API key is required")
	}
	return nil
}

func validateBase(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an absolute http(s) URL")
	}
	return nil
}

func validateMaxTokens(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 || n > config.MaxTokensLimit {
		return fmt.Errorf("must be an integer between 1 and %d", config.MaxTokensLimit)
	}
	return nil
}
