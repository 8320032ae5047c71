package session

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader_Lines(t *testing.T) {
	lr := newLineReader(strings.NewReader("one\r\ntwo\nthree"))
	defer lr.Close()

	ctx := context.Background()

	for _, want := range []string{"one", "two", "three"} {
		got, err := lr.ReadLine(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := lr.ReadLine(ctx, nil)
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineReader_InterruptKeepsPendingRead(t *testing.T) {
	pr, pw := io.Pipe()
	lr := newLineReader(pr)
	defer lr.Close()

	interrupts := make(chan struct{}, 1)
	interrupts <- struct{}{}

	_, err := lr.ReadLine(context.Background(), interrupts)
	assert.ErrorIs(t, err, errInterrupted)

	go func() { _, _ = pw.Write([]byte("late\n")) }()

	got, err := lr.ReadLine(context.Background(), interrupts)
	require.NoError(t, err)
	assert.Equal(t, "late", got)
}

func TestLineReader_ContextDone(t *testing.T) {
	pr, _ := io.Pipe()
	lr := newLineReader(pr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := lr.ReadLine(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
