package setupwizard

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/arkterm/arkterm/pkg/config"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "gsk_abcdefghijklmnopqrstuvwxyz"

func fillForm(key, model string, allow bool) FormFunc {
	return func(a *Answers) error {
		a.APIKey = key
		a.Model = model
		a.AllowExec = allow
		return nil
	}
}

func alwaysConfirm(answer bool) ConfirmFunc {
	return func(string) (bool, error) { return answer, nil }
}

func newWizard(t *testing.T, form FormFunc, confirm ConfirmFunc) (*Wizard, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}
	return &Wizard{
		Path:        filepath.Join(t.TempDir(), ".aiterm", "config.yaml"),
		Out:         out,
		Interactive: true,
		Form:        form,
		Confirm:     confirm,
	}, out
}

func TestAnswersFrom_HidesPlaceholder(t *testing.T) {
	a := AnswersFrom(config.Default())

	assert.Empty(t, a.APIKey)
	assert.Equal(t, config.DefaultModel, a.Model)
	assert.Equal(t, "2048", a.MaxTokens)
	assert.False(t, a.AllowExec)
}

func TestAnswers_Config(t *testing.T) {
	a := Answers{
		APIKey:    "  " + testKey + " ",
		Model:     "llama-3.3-70b-versatile",
		APIBase:   "https://api.groq.com/openai/v1/",
		MaxTokens: "512",
		AllowExec: true,
	}

	cfg, err := a.Config()
	require.NoError(t, err)
	assert.Equal(t, testKey, cfg.API.APIKey)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.API.APIBase)
	assert.Equal(t, 512, cfg.Settings.MaxTokens)
	assert.True(t, cfg.Settings.AllowCommandExecution)
	assert.InDelta(t, config.DefaultTemperature, cfg.Settings.Temperature, 1e-9)
	assert.Equal(t, config.DefaultProvider, cfg.API.Provider)
}

func TestAnswers_ConfigRejectsInvalid(t *testing.T) {
	a := AnswersFrom(config.Default())
	a.APIKey = testKey
	a.MaxTokens = "lots"

	_, err := a.Config()
	require.Error(t, err)

	a.MaxTokens = "0"
	_, err = a.Config()
	require.ErrorIs(t, err, config.ErrConfigInvalid)
}

func TestValidators(t *testing.T) {
	require.NoError(t, validateKey(testKey))
	require.Error(t, validateKey(" "))
	require.Error(t, validateKey(config.PlaceholderAPIKey))

	require.NoError(t, validateBase("http://localhost:8080/v1"))
	require.Error(t, validateBase("api.groq.com"))

	require.NoError(t, validateMaxTokens("16"))
	require.Error(t, validateMaxTokens("0"))
	require.Error(t, validateMaxTokens("131073"))
}

func TestModelOptions(t *testing.T) {
	assert.Equal(t, config.DefaultModel, modelOptions(config.DefaultModel)[0])

	custom := modelOptions("my-finetune")
	assert.Equal(t, "my-finetune", custom[0])
	assert.Len(t, custom, len(modelOptions(""))+1)
}

func TestRun_NonInteractiveWritesDefaults(t *testing.T) {
	w, out := newWizard(t, nil, nil)
	w.Interactive = false

	err := w.Run()
	require.ErrorIs(t, err, ErrNeedsAPIKey)

	cfg, err := config.LoadRaw(w.Path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Contains(t, out.String(), config.PlaceholderAPIKey)

	info, err := os.Stat(w.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRun_NonInteractiveKeepsExistingFile(t *testing.T) {
	w, _ := newWizard(t, nil, nil)
	w.Interactive = false

	existing := config.Default()
	existing.API.APIKey = testKey
	require.NoError(t, config.Save(w.Path, existing))

	require.ErrorIs(t, w.Run(), ErrNotInteractive)

	cfg, err := config.LoadRaw(w.Path)
	require.NoError(t, err)
	assert.Equal(t, testKey, cfg.API.APIKey)
}

func TestRun_InteractiveSaves(t *testing.T) {
	w, out := newWizard(t, fillForm(testKey, "llama-3.1-8b-instant", true), alwaysConfirm(true))

	require.NoError(t, w.Run())

	cfg, err := config.Load(w.Path)
	require.NoError(t, err)
	assert.Equal(t, testKey, cfg.API.APIKey)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.API.Model)
	assert.True(t, cfg.Settings.AllowCommandExecution)

	printed := out.String()
	assert.Contains(t, printed, "+  model: llama-3.1-8b-instant")
	assert.NotContains(t, printed, testKey)
	assert.Contains(t, printed, "Saved "+w.Path)
}

func TestRun_TwiceOverwrites(t *testing.T) {
	w, _ := newWizard(t, fillForm(testKey, "llama-3.1-8b-instant", true), alwaysConfirm(true))
	require.NoError(t, w.Run())

	w.Form = fillForm(testKey, "gemma2-9b-it", false)
	require.NoError(t, w.Run())

	cfg, err := config.Load(w.Path)
	require.NoError(t, err)
	assert.Equal(t, "gemma2-9b-it", cfg.API.Model)
	assert.False(t, cfg.Settings.AllowCommandExecution)
}

func TestRun_ResetsSettingsTheFormHides(t *testing.T) {
	w, _ := newWizard(t, fillForm(testKey, config.DefaultModel, false), alwaysConfirm(true))

	prev := config.Default()
	prev.API.APIKey = testKey
	prev.API.Provider = "openai"
	prev.Settings.Temperature = 0.2
	prev.Settings.TopP = 0.5
	require.NoError(t, config.Save(w.Path, prev))

	require.NoError(t, w.Run())

	cfg, err := config.Load(w.Path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultProvider, cfg.API.Provider)
	assert.InDelta(t, config.DefaultTemperature, cfg.Settings.Temperature, 1e-9)
	assert.InDelta(t, config.DefaultTopP, cfg.Settings.TopP, 1e-9)
}

func TestRun_NoChanges(t *testing.T) {
	w, out := newWizard(t, fillForm(testKey, config.DefaultModel, false), alwaysConfirm(true))
	require.NoError(t, w.Run())

	confirmed := false
	w.Confirm = func(string) (bool, error) {
		confirmed = true
		return true, nil
	}
	out.Reset()

	require.NoError(t, w.Run())
	assert.False(t, confirmed)
	assert.Contains(t, out.String(), "No changes.")
}

func TestRun_DeclinedWritesNothing(t *testing.T) {
	w, out := newWizard(t, fillForm(testKey, config.DefaultModel, false), alwaysConfirm(false))

	require.NoError(t, w.Run())

	_, err := os.Stat(w.Path)
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, out.String(), "Nothing written.")
}

func TestRun_Aborted(t *testing.T) {
	w, _ := newWizard(t, func(*Answers) error { return huh.ErrUserAborted }, nil)

	require.ErrorIs(t, w.Run(), ErrAborted)
}

func TestRun_FormError(t *testing.T) {
	w, _ := newWizard(t, func(*Answers) error { return errors.New("no tty") }, nil)

	err := w.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tty")
}

func TestRun_InvalidExistingStartsFromDefaults(t *testing.T) {
	w, out := newWizard(t, fillForm(testKey, config.DefaultModel, false), alwaysConfirm(true))
	require.NoError(t, os.MkdirAll(filepath.Dir(w.Path), 0o700))
	require.NoError(t, os.WriteFile(w.Path, []byte("- just\n- a list\n"), 0o600))

	require.NoError(t, w.Run())
	assert.Contains(t, out.String(), "Existing config is invalid")

	_, err := config.Load(w.Path)
	require.NoError(t, err)
}

func TestDiff(t *testing.T) {
	before := config.Default()
	before.API.APIKey = testKey
	after := before
	after.Settings.MaxTokens = 16

	d, err := Diff("config.yaml", before, after, true)
	require.NoError(t, err)
	assert.Contains(t, d, "-  max_tokens: 2048")
	assert.Contains(t, d, "+  max_tokens: 16")
	assert.NotContains(t, d, testKey)

	same, err := Diff("config.yaml", before, before, true)
	require.NoError(t, err)
	assert.Empty(t, same)
}
