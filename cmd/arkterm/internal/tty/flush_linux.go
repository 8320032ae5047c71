//go:build linux

package tty

import (
	"os"

	"golang.org/x/sys/unix"
)

// FlushStdinBuffer discards any data left in stdin by prior terminal queries.
func FlushStdinBuffer() {
	//nolint:gosec // Stdin fd is always a small non-negative int.
	_ = unix.IoctlSetInt(int(os.Stdin.Fd()), unix.TCFLSH, unix.TCIFLUSH)
}
