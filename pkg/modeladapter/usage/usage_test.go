package usage_test

import (
	"sync"
	"testing"

	"github.com/arkterm/arkterm/pkg/modeladapter/usage"
	"github.com/stretchr/testify/assert"
)

func TestTokenCount_Total(t *testing.T) {
	assert.Equal(t, 150, usage.TokenCount{InputTokens: 100, OutputTokens: 50}.Total())
	assert.Zero(t, usage.TokenCount{}.Total())
}

func TestTracker_Empty(t *testing.T) {
	var tr usage.Tracker

	_, ok := tr.Last()
	assert.False(t, ok)
	assert.Zero(t, tr.Calls())
	assert.Equal(t, usage.TokenCount{}, tr.Total())
}

func TestTracker_LastAndTotal(t *testing.T) {
	var tr usage.Tracker
	tr.Add(usage.TokenCount{InputTokens: 120, OutputTokens: 16})
	tr.Add(usage.TokenCount{InputTokens: 180, OutputTokens: 9})

	last, ok := tr.Last()
	assert.True(t, ok)
	assert.Equal(t, usage.TokenCount{InputTokens: 180, OutputTokens: 9}, last)
	assert.Equal(t, usage.TokenCount{InputTokens: 300, OutputTokens: 25}, tr.Total())
	assert.Equal(t, 2, tr.Calls())
}

func TestTracker_Reset(t *testing.T) {
	var tr usage.Tracker
	tr.Add(usage.TokenCount{InputTokens: 10, OutputTokens: 5})

	tr.Reset()

	_, ok := tr.Last()
	assert.False(t, ok)
	assert.Zero(t, tr.Total().Total())
	assert.Zero(t, tr.Calls())
}

func TestTracker_ConcurrentAdd(t *testing.T) {
	var tr usage.Tracker
	var wg sync.WaitGroup

	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Add(usage.TokenCount{InputTokens: 1, OutputTokens: 2})
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, tr.Calls())
	assert.Equal(t, usage.TokenCount{InputTokens: 100, OutputTokens: 200}, tr.Total())
}
