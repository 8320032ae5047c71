package spinner

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/stretchr/testify/assert"
)

func TestDisabledSpinner_DrawsNothing(t *testing.T) {
	var buf bytes.Buffer

	stop := New(&buf, false).Start("Thinking...")
	stop()
	stop()

	assert.Empty(t, buf.String())
}

func TestModel_QuitClearsView(t *testing.T) {
	m := newModel("Thinking...")
	assert.Contains(t, m.View(), "Thinking...")

	next, cmd := m.Update(quitMsg{})
	assert.NotNil(t, cmd)
	assert.Empty(t, next.View())
}

func TestModel_TickAdvances(t *testing.T) {
	m := newModel("Thinking...")

	next, cmd := m.Update(m.spin.Tick())
	assert.NotNil(t, cmd)
	assert.IsType(t, model{}, next)

	_, cmd = m.Update(spinner.TickMsg{ID: 1 << 30})
	assert.Nil(t, cmd, "ticks for other spinners are ignored")
}
