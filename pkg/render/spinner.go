package render

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// workDoneMsg stops the spinner program.
type workDoneMsg struct{}

// spinnerModel is a one-line bubbletea program showing label next to a spinner.
type spinnerModel struct {
	spinner spinner.Model
	label   string
	done    bool
}

func newSpinnerModel(label string, st styles) spinnerModel {
	return spinnerModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(st.spinner)),
		label:   st.info.Render(label),
	}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case workDoneMsg:
		m.done = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.label
}

// Spin runs fn while a spinner with label animates. Without WithSpinner it
// just calls fn. The spinner never reads stdin and leaves signal handling to
// the caller.
func (t *Terminal) Spin(ctx context.Context, label string, fn func(ctx context.Context) error) error {
	if !t.animate {
		return fn(ctx)
	}

	p := tea.NewProgram(
		newSpinnerModel(label, t.styles),
		tea.WithOutput(t.w),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
		tea.WithContext(ctx),
	)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		_, _ = p.Run()
	}()

	t.setLive(p)
	err := fn(ctx)
	t.setLive(nil)

	p.Send(workDoneMsg{})
	<-finished
	return err
}

// setLive routes Status lines through p while it owns the output.
func (t *Terminal) setLive(p *tea.Program) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.live = p
}

// printLive prints line above the running spinner. It reports false when no
// spinner is running.
func (t *Terminal) printLive(line string) bool {
	t.mu.Lock()
	p := t.live
	t.mu.Unlock()
	if p == nil {
		return false
	}
	p.Send(tea.Println(line)())
	return true
}
