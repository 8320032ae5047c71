// Package chats provides the provider-agnostic conversation model used by a
// terminal session.
//
// It is organized into sub-packages:
//   - [github.com/arkterm/arkterm/pkg/chats/role] — conversation roles (system, user, assistant)
//   - [github.com/arkterm/arkterm/pkg/chats/message] — a single conversation turn
//   - [github.com/arkterm/arkterm/pkg/chats/chat] — the ordered turn sequence kept for one session
//
// No provider or API code is included; adapters in pkg/providers translate
// a chat into their wire format.
package chats
