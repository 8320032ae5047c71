//go:build !(linux || darwin || dragonfly || freebsd || netbsd || openbsd)

package tty

// FlushStdinBuffer is a no-op on platforms without a termios input flush.
func FlushStdinBuffer() {}
