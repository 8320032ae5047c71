package session

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

// errInterrupted is returned by reads abandoned by a SIGINT.
var errInterrupted = errors.New("interrupted")

type readResult struct {
	line string
	err  error
}

// lineReader reads lines on demand from a goroutine so that a blocked read
// can be abandoned on interrupt. A read is only started when a caller asks
// for a line, so no read is pending while a command shares stdin. An
// abandoned read stays pending and its line goes to the next caller.
type lineReader struct {
	want    chan struct{}
	lines   chan readResult
	pending bool
}

func newLineReader(r io.Reader) *lineReader {
	lr := &lineReader{
		want:  make(chan struct{}, 1),
		lines: make(chan readResult, 1),
	}

	go func() {
		br := bufio.NewReader(r)
		for range lr.want {
			line, err := br.ReadString('\n')
			if err != nil && line != "" {
				// Deliver a final unterminated line; EOF comes with the next read.
				err = nil
			}
			lr.lines <- readResult{line: strings.TrimRight(line, "\r\n"), err: err}
		}
	}()

	return lr
}

// ReadLine returns the next line. It returns errInterrupted when a value
// arrives on interrupts first, ctx.Err() when ctx is done, and io.EOF at end
// of input.
func (lr *lineReader) ReadLine(ctx context.Context, interrupts <-chan struct{}) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if !lr.pending {
		lr.want <- struct{}{}
		lr.pending = true
	}

	select {
	case r := <-lr.lines:
		lr.pending = false
		return r.line, r.err
	case <-interrupts:
		return "", errInterrupted
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops the reader goroutine once its current read, if any, returns.
func (lr *lineReader) Close() {
	close(lr.want)
}
