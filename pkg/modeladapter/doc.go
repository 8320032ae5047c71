// Package modeladapter defines the interface and shared plumbing for LLM
// chat-completion adapters.
//
// It contains:
//   - [Completer] interface and embeddable [ModelAdapter] base struct with HTTP helpers, auth, and custom headers
//   - the error taxonomy returned by adapters ([AuthError], [RateLimitError], [ProviderError], [NetworkError], [StatusError])
//   - [WithLogger], a Completer wrapper that logs each call with log/slog
//   - [TokenEstimator], a character-based estimate of a conversation's input tokens
//   - [github.com/arkterm/arkterm/pkg/modeladapter/usage]: thread-safe token usage tracker
//
// This package contains no provider-specific code; concrete adapters live in
// pkg/providers.
package modeladapter
