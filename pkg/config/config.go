// Package config loads, validates and saves the arkterm YAML configuration
// stored at ~/.aiterm/config.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arkterm/arkterm/pkg/arktermdir"
)

// Defaults applied to optional fields at load time.
const (
	DefaultAPIBase     = "https://api.groq.com/openai/v1"
	DefaultModel       = "llama3-8b-8192"
	DefaultProvider    = "groq"
	DefaultMaxTokens   = 2048
	DefaultTemperature = 0.7
	DefaultTopP        = 0.95

	// MaxTokensLimit is the largest accepted max_tokens value.
	MaxTokensLimit = 131072

	// PlaceholderAPIKey is written by setup when no key is known yet.
	PlaceholderAPIKey = "YOUR_GROQ_API_KEY_HERE"
)

// Environment variables that override an empty or placeholder api_key.
var apiKeyEnvVars = []string{"ARKTERM_API_KEY", "GROQ_API_KEY"}

// envRef matches a value that is exactly one ${VAR} or $VAR reference.
var envRef = regexp.MustCompile(`^\$(?:\{([A-Za-z_][A-Za-z0-9_]*)\}|([A-Za-z_][A-Za-z0-9_]*))$`)

// Config is the top-level configuration file.
type Config struct {
	API      API      `yaml:"API"`
	Settings Settings `yaml:"SETTINGS"`
}

// API holds the chat completions endpoint settings.
type API struct {
	APIKey   string `yaml:"api_key"` //nolint:gosec // configuration field, not a hardcoded secret
	Model    string `yaml:"model"`
	APIBase  string `yaml:"api_base"`
	Provider string `yaml:"provider,omitempty"`
}

// Settings holds runtime behaviour settings.
type Settings struct {
	AllowCommandExecution bool    `yaml:"allow_command_execution"`
	MaxTokens             int     `yaml:"max_tokens"`
	Temperature           float64 `yaml:"temperature"`
	TopP                  float64 `yaml:"top_p"`
}

// rawConfig mirrors Config with pointers for the optional fields so that an
// absent key can be told apart from an explicit zero.
type rawConfig struct {
	API struct {
		APIKey   string `yaml:"api_key"`
		Model    string `yaml:"model"`
		APIBase  string `yaml:"api_base"`
		Provider string `yaml:"provider"`
	} `yaml:"API"`
	Settings struct {
		AllowCommandExecution bool     `yaml:"allow_command_execution"`
		MaxTokens             *int     `yaml:"max_tokens"`
		Temperature           *float64 `yaml:"temperature"`
		TopP                  *float64 `yaml:"top_p"`
	} `yaml:"SETTINGS"`
}

// Default returns the configuration written by setup when nothing else is
// known, with the placeholder API key.
func Default() Config {
	return Config{
		API: API{
			APIKey:   PlaceholderAPIKey,
			Model:    DefaultModel,
			APIBase:  DefaultAPIBase,
			Provider: DefaultProvider,
		},
		Settings: Settings{
			AllowCommandExecution: false,
			MaxTokens:             DefaultMaxTokens,
			Temperature:           DefaultTemperature,
			TopP:                  DefaultTopP,
		},
	}
}

// Load reads, expands and validates the config at path. An api value that
// is exactly ${VAR} or $VAR is replaced by that environment variable; a "$"
// anywhere else is kept literally. ARKTERM_API_KEY or GROQ_API_KEY replace
// an empty or placeholder api_key.
func Load(path string) (Config, error) {
	data, err := read(path)
	if err != nil {
		return Config{}, err
	}

	cfg, err := parse(path, data)
	if err != nil {
		return Config{}, err
	}

	cfg.API.APIKey = expandRef(cfg.API.APIKey)
	cfg.API.Model = expandRef(cfg.API.Model)
	cfg.API.APIBase = strings.TrimRight(expandRef(cfg.API.APIBase), "/")
	cfg.API.Provider = strings.ToLower(expandRef(cfg.API.Provider))
	if cfg.API.APIBase == "" {
		cfg.API.APIBase = DefaultAPIBase
	}
	if cfg.API.Provider == "" {
		cfg.API.Provider = DefaultProvider
	}

	if !cfg.API.HasKey() {
		for _, name := range apiKeyEnvVars {
			if v := strings.TrimSpace(os.Getenv(name)); v != "" {
				cfg.API.APIKey = v
				break
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		var ie *InvalidError
		if errors.As(err, &ie) {
			ie.Path = path
		}
		return Config{}, err
	}

	return cfg, nil
}

// LoadRaw reads the config at path with defaults applied but without env
// expansion or validation. Setup uses it to pre-fill its form.
func LoadRaw(path string) (Config, error) {
	data, err := read(path)
	if err != nil {
		return Config{}, err
	}

	return parse(path, data)
}

// Save writes cfg to path atomically with mode 0600, replacing any existing
// file. The parent directory is created with mode 0700.
func Save(path string, cfg Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := arktermdir.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("config: save %s: %w", path, err)
	}

	return nil
}

// Marshal returns cfg as written by Save.
func Marshal(cfg Config) ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}

	return buf.Bytes(), nil
}

// HasKey reports whether a usable API key is set.
func (a API) HasKey() bool {
	k := strings.TrimSpace(a.APIKey)
	return k != "" && k != PlaceholderAPIKey
}

// Validate checks the invariants every Chat Client call relies on.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.API.APIKey) == "":
		return invalid("api_key", "is required")
	case c.API.APIKey == PlaceholderAPIKey:
		return invalid("api_key", "is still the setup placeholder; edit it or set ARKTERM_API_KEY")
	case strings.TrimSpace(c.API.Model) == "":
		return invalid("model", "is required")
	}

	u, err := url.Parse(c.API.APIBase)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("api_base", fmt.Sprintf("%q is not an absolute http(s) URL", c.API.APIBase))
	}

	if c.Settings.MaxTokens <= 0 || c.Settings.MaxTokens > MaxTokensLimit {
		return invalid("max_tokens", fmt.Sprintf("must be between 1 and %d, got %d", MaxTokensLimit, c.Settings.MaxTokens))
	}
	if c.Settings.Temperature < 0 || c.Settings.Temperature > 2 {
		return invalid("temperature", fmt.Sprintf("must be between 0 and 2, got %g", c.Settings.Temperature))
	}
	if c.Settings.TopP < 0 || c.Settings.TopP > 1 {
		return invalid("top_p", fmt.Sprintf("must be between 0 and 1, got %g", c.Settings.TopP))
	}

	return nil
}

// Redacted returns a copy with the API key masked, safe to print or diff.
func (c Config) Redacted() Config {
	c.API.APIKey = MaskKey(c.API.APIKey)
	return c
}

// MaskKey hides all but the edges of a key. Short keys and the placeholder
// are masked entirely or left as is respectively.
func MaskKey(key string) string {
	switch {
	case key == "" || key == PlaceholderAPIKey:
		return key
	case len(key) <= 12:
		return strings.Repeat("*", len(key))
	default:
		return key[:4] + strings.Repeat("*", 8) + key[len(key)-4:]
	}
}

func expandRef(v string) string {
	m := envRef.FindStringSubmatch(v)
	if m == nil {
		return v
	}

	name := m[1]
	if name == "" {
		name = m[2]
	}

	return strings.TrimSpace(os.Getenv(name))
}

func read(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: %s: %w", path, ErrConfigMissing)
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	return data, nil
}

// parse decodes data and applies defaults. The document must be a mapping.
func parse(path string, data []byte) (Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, &InvalidError{Path: path, Reason: "corrupted YAML", Err: err}
	}

	if len(doc.Content) == 0 {
		return Config{}, &InvalidError{Path: path, Reason: "file is empty"}
	}
	if doc.Content[0].Kind != yaml.MappingNode {
		return Config{}, &InvalidError{Path: path, Reason: "top level is not a YAML mapping"}
	}

	var raw rawConfig
	if err := doc.Decode(&raw); err != nil {
		return Config{}, &InvalidError{Path: path, Reason: "unexpected structure", Err: err}
	}

	return fromRaw(raw), nil
}

func fromRaw(raw rawConfig) Config {
	cfg := Config{
		API: API{
			APIKey:   strings.TrimSpace(raw.API.APIKey),
			Model:    strings.TrimSpace(raw.API.Model),
			APIBase:  strings.TrimRight(strings.TrimSpace(raw.API.APIBase), "/"),
			Provider: strings.ToLower(strings.TrimSpace(raw.API.Provider)),
		},
		Settings: Settings{
			AllowCommandExecution: raw.Settings.AllowCommandExecution,
			MaxTokens:             DefaultMaxTokens,
			Temperature:           DefaultTemperature,
			TopP:                  DefaultTopP,
		},
	}

	if cfg.API.APIBase == "" {
		cfg.API.APIBase = DefaultAPIBase
	}
	if cfg.API.Provider == "" {
		cfg.API.Provider = DefaultProvider
	}
	if raw.Settings.MaxTokens != nil {
		cfg.Settings.MaxTokens = *raw.Settings.MaxTokens
	}
	if raw.Settings.Temperature != nil {
		cfg.Settings.Temperature = *raw.Settings.Temperature
	}
	if raw.Settings.TopP != nil {
		cfg.Settings.TopP = *raw.Settings.TopP
	}

	return cfg
}
