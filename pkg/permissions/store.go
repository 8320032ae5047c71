// Package permissions persists the set of programs the user chose to always
// allow, so their suggested commands run without a y/N question.
package permissions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/arkterm/arkterm/pkg/arktermdir"
)

// ErrCorrupt is returned by New when the file exists but cannot be parsed.
// The returned Store is still usable and starts empty; the next write
// replaces the corrupt file.
var ErrCorrupt = errors.New("permissions: corrupt file")

// Store manages trusted commands persisted to a JSON file. It is safe for
// concurrent use.
type Store struct {
	mu       sync.RWMutex
	commands map[string]struct{}
	filePath string
}

// fileFormat is the JSON structure written to disk.
type fileFormat struct {
	TrustedCommands []string `json:"trusted_commands"`
}

// New creates a Store backed by the given file. Existing data is loaded
// immediately; a missing file is an empty store.
func New(filePath string) (*Store, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("permissions: resolve path: %w", err)
	}

	s := &Store{
		commands: make(map[string]struct{}),
		filePath: abs,
	}

	if err := s.load(); err != nil {
		return s, err
	}

	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.filePath }

// IsCommandTrusted reports whether a program has been trusted.
func (s *Store) IsCommandTrusted(program string) bool {
	if program == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.commands[program]

	return ok
}

// TrustCommand marks a program as trusted and persists the change.
func (s *Store) TrustCommand(program string) error {
	if program == "" {
		return errors.New("permissions: empty program name")
	}

	s.mu.Lock()
	s.commands[program] = struct{}{}
	snap := s.snapshot()
	s.mu.Unlock()

	return s.persistSnapshot(snap)
}

// RevokeCommand removes a program from the trusted set and persists the
// change. Revoking an unknown program is a no-op.
func (s *Store) RevokeCommand(program string) error {
	s.mu.Lock()
	if _, ok := s.commands[program]; !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.commands, program)
	snap := s.snapshot()
	s.mu.Unlock()

	return s.persistSnapshot(snap)
}

// Commands returns the trusted programs in sorted order.
func (s *Store) Commands() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot().TrustedCommands
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("permissions: read file: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	var ff fileFormat
	if err := json.Unmarshal(trimmed, &ff); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, s.filePath, err)
	}

	for _, c := range ff.TrustedCommands {
		if c != "" {
			s.commands[c] = struct{}{}
		}
	}

	return nil
}

// snapshot returns a sorted copy of the current data. Must be called while
// s.mu is held.
func (s *Store) snapshot() fileFormat {
	ff := fileFormat{TrustedCommands: make([]string, 0, len(s.commands))}

	for c := range s.commands {
		ff.TrustedCommands = append(ff.TrustedCommands, c)
	}
	sort.Strings(ff.TrustedCommands)

	return ff
}

func (s *Store) persistSnapshot(ff fileFormat) error {
	data, err := json.MarshalIndent(ff, "", "  ")
	if err != nil {
		return fmt.Errorf("permissions: marshal: %w", err)
	}

	if err := arktermdir.WriteFileAtomic(s.filePath, data); err != nil {
		return fmt.Errorf("permissions: %w", err)
	}

	return nil
}
