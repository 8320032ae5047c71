package providers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/arkterm/arkterm/pkg/config"
	"github.com/arkterm/arkterm/pkg/modeladapter"
	"github.com/arkterm/arkterm/pkg/providers/groq"
	"github.com/arkterm/arkterm/pkg/providers/openai"
)

// Factory creates a Completer from the API and settings sections of the config.
type Factory func(api config.API, settings config.Settings, client *http.Client) (modeladapter.Completer, error)

var (
	factoryMu   sync.RWMutex
	factories   = map[string]Factory{}
	defaultsReg sync.Once
)

func ensureDefaults() {
	defaultsReg.Do(func() {
		factories["groq"] = newGroq
		factories["openai"] = newOpenAI
	})
}

// RegisterProvider registers a factory under the given kind, replacing any
// existing one.
func RegisterProvider(kind string, factory Factory) {
	ensureDefaults()

	factoryMu.Lock()
	defer factoryMu.Unlock()

	factories[kind] = factory
}

// Kinds returns the registered provider kinds in sorted order.
func Kinds() []string {
	ensureDefaults()

	factoryMu.RLock()
	defer factoryMu.RUnlock()

	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	return kinds
}

func getFactory(kind string) (Factory, bool) {
	ensureDefaults()

	factoryMu.RLock()
	defer factoryMu.RUnlock()

	f, ok := factories[kind]
	return f, ok
}

// New builds the Completer for api.Provider (groq when empty). A nil client
// falls back to the adapter's default client.
func New(api config.API, settings config.Settings, client *http.Client) (modeladapter.Completer, error) {
	kind := api.Provider
	if kind == "" {
		kind = config.DefaultProvider
	}

	factory, ok := getFactory(kind)
	if !ok {
		return nil, fmt.Errorf("providers: unknown provider kind %q (known: %s)", kind, strings.Join(Kinds(), ", "))
	}

	c, err := factory(api, settings, client)
	if err != nil {
		return nil, fmt.Errorf("providers: %s: %w", kind, err)
	}

	return c, nil
}

func newGroq(api config.API, settings config.Settings, client *http.Client) (modeladapter.Completer, error) {
	a := groq.New(api.APIBase, api.APIKey, client)
	applySettings(&a.ModelAdapter, api, settings)

	return a, nil
}

func newOpenAI(api config.API, settings config.Settings, client *http.Client) (modeladapter.Completer, error) {
	a := openai.New(api.APIBase, api.APIKey, client)
	applySettings(&a.ModelAdapter, api, settings)

	return a, nil
}

func applySettings(m *modeladapter.ModelAdapter, api config.API, settings config.Settings) {
	m.Name = api.Model
	m.MaxTokens = settings.MaxTokens
	m.Temperature = &settings.Temperature
	m.TopP = &settings.TopP
}
