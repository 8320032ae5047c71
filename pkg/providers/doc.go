// Package providers builds a modeladapter.Completer from the config file.
//
// Concrete adapters live in sub-packages:
//   - [github.com/arkterm/arkterm/pkg/providers/groq]: native HTTP client for Groq's OpenAI-compatible API
//   - [github.com/arkterm/arkterm/pkg/providers/openai]: client built on the openai-go SDK
//
// The registry in this package maps the config's provider kind to a factory.
package providers
