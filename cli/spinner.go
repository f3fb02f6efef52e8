// Package cli holds terminal helpers shared by the commands.
package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

type spinnerModel struct {
	spinner  spinner.Model
	message  string
	quitting bool
	done     bool
}

type doneMsg struct{}

func newSpinnerModel(message string) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return spinnerModel{spinner: s, message: message}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	case doneMsg:
		m.done = true
		m.quitting = true
		return m, tea.Quit
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.quitting {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.message)
}

// ExecuteWithSpinner runs fn behind a spinner, or behind a plain status
// line when stderr is not a terminal.
func ExecuteWithSpinner[T any](message string, fn func() (T, error)) (T, error) {
	if !IsTerminal(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s\n", message)
		return fn()
	}

	var result T
	var fnErr error
	finished := make(chan struct{})

	p := tea.NewProgram(newSpinnerModel(message), tea.WithOutput(os.Stderr))
	go func() {
		result, fnErr = fn()
		close(finished)
		p.Send(doneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		// Spinner failed to start; the call still runs to completion.
		<-finished
		return result, fnErr
	}
	<-finished
	return result, fnErr
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
