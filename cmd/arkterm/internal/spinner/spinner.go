// Package spinner shows an animated "Thinking..." line while a request is in
// flight. It runs a small bubbletea program that never reads stdin, so the
// session's line reader keeps sole ownership of the terminal input.
package spinner

import (
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/arkterm/arkterm/cmd/arkterm/internal/styles"
)

// Frames are braille characters for smooth animation.
var Frames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

type quitMsg struct{}

type model struct {
	spin spinner.Model
	msg  string
	done bool
}

func newModel(msg string) model {
	s := spinner.New(
		spinner.WithSpinner(spinner.Spinner{Frames: Frames, FPS: spinner.MiniDot.FPS}),
		spinner.WithStyle(styles.SpinnerStyle),
	)

	return model{spin: s, msg: msg}
}

func (m model) Init() tea.Cmd { return m.spin.Tick }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case quitMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) View() string {
	if m.done {
		return ""
	}
	return m.spin.View() + " " + styles.DimStyle.Render(m.msg)
}

// Spinner starts animations on an output stream.
type Spinner struct {
	out     io.Writer
	enabled bool
}

// New returns a Spinner drawing on out. A disabled Spinner draws nothing,
// which is what non-terminal output wants.
func New(out io.Writer, enabled bool) *Spinner {
	return &Spinner{out: out, enabled: enabled}
}

// Start begins animating msg and returns a function that stops the
// animation and clears its line. The stop function is idempotent.
func (s *Spinner) Start(msg string) func() {
	if !s.enabled {
		return func() {}
	}

	p := tea.NewProgram(newModel(msg),
		tea.WithOutput(s.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		_, _ = p.Run()
	}()

	var once sync.Once

	return func() {
		once.Do(func() {
			p.Send(quitMsg{})
			<-finished
		})
	}
}
