package arktermdir

import (
	"fmt"
	"os"
)

// EnsureStructure creates the root directory with owner-only permissions if
// it is missing. It is safe to call multiple times.
func EnsureStructure(d Dir) error {
	if err := os.MkdirAll(d.Root(), 0o700); err != nil {
		return fmt.Errorf("arktermdir: create dir: %w", err)
	}

	return nil
}
