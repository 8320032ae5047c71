// Package arktermdir encapsulates all path knowledge for the ~/.aiterm/
// directory. It provides a Dir value object with accessors for the config,
// history and permissions files.
package arktermdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirName is the directory created under the user's home.
const DirName = ".aiterm"

// Dir is a value object that resolves paths within an ~/.aiterm/ directory.
type Dir struct {
	root string
}

// New creates a Dir rooted at the given path. The path is converted to an
// absolute path. No I/O is performed; use EnsureStructure to create the
// directory.
func New(root string) Dir {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}

	return Dir{root: abs}
}

// Default returns the Dir under the current user's home directory.
func Default() (Dir, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Dir{}, fmt.Errorf("arktermdir: resolve home: %w", err)
	}

	return New(filepath.Join(home, DirName)), nil
}

// Root returns the absolute path to the directory.
func (d Dir) Root() string { return d.root }

// ConfigPath returns the path to the YAML config file.
func (d Dir) ConfigPath() string { return filepath.Join(d.root, "config.yaml") }

// HistoryPath returns the path to the query history file.
func (d Dir) HistoryPath() string { return filepath.Join(d.root, "history.json") }

// PermissionsPath returns the path to the trusted commands file.
func (d Dir) PermissionsPath() string { return filepath.Join(d.root, "permissions.json") }

// Exists reports whether the root directory exists on disk.
func (d Dir) Exists() bool {
	info, err := os.Stat(d.root)

	return err == nil && info.IsDir()
}
