//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package tty

import (
	"os"

	"golang.org/x/sys/unix"
)

// flushRead is FREAD from <sys/fcntl.h>; TIOCFLUSH then drops pending input
// only.
const flushRead = 1

// FlushStdinBuffer discards unread terminal input, like tcflush(TCIFLUSH).
func FlushStdinBuffer() {
	//nolint:gosec // Stdin fd is always a small non-negative int.
	_ = unix.IoctlSetPointerInt(int(os.Stdin.Fd()), unix.TIOCFLUSH, flushRead)
}
