// Package history persists the query/response log kept in
// ~/.aiterm/history.json. The file is a JSON array of entries; older files
// holding only query and response still load.
package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/arkterm/arkterm/pkg/arktermdir"
)

// ErrCorrupt is returned when the history file cannot be parsed. Append
// still succeeds in that case by starting a fresh history.
var ErrCorrupt = errors.New("history: corrupt file")

// Entry is one saved exchange.
type Entry struct {
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Model     string    `json:"model,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// Store reads and appends history entries. It is safe for concurrent use
// within one process.
type Store struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// New returns a Store for the given file. No I/O is performed.
func New(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Entries returns all saved entries, oldest first. A missing or empty file
// yields no entries; a corrupt file yields ErrCorrupt.
func (s *Store) Entries() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read()
}

// Last returns up to n most recent entries, oldest first.
func (s *Store) Last(n int) ([]Entry, error) {
	entries, err := s.Entries()
	if err != nil {
		return nil, err
	}

	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}

	return entries, nil
}

// Append adds an entry and rewrites the file atomically. A zero Timestamp is
// set to the current time. When the existing file is corrupt it is replaced
// by a history holding only e, and the returned error wraps ErrCorrupt so the
// caller can warn.
func (s *Store) Append(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Timestamp.IsZero() {
		e.Timestamp = s.now().UTC()
	}

	entries, readErr := s.read()
	if readErr != nil && !errors.Is(readErr, ErrCorrupt) {
		return readErr
	}

	entries = append(entries, e)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("history: marshal: %w", err)
	}

	if err := arktermdir.WriteFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("history: %w", err)
	}

	return readErr
}

func (s *Store) read() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("history: read file: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}

	return entries, nil
}
