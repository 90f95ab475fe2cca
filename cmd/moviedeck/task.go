package main

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// errInterrupted is returned when the user quits before a task finishes.
var errInterrupted = errors.New("interrupted")

// taskFunc does the network work of a one-shot command and returns the text to print.
type taskFunc func(ctx context.Context) (string, error)

// runTask runs fn behind a spinner and prints its output once it finishes.
func runTask(ctx context.Context, label string, fn taskFunc) error {
	p := tea.NewProgram(newTaskModel(ctx, label, fn))
	m, err := p.Run()
	if err != nil {
		return err
	}

	tm, ok := m.(taskModel)
	if !ok {
		return errors.New("unexpected model type from tea program")
	}
	return tm.err
}

// taskDoneMsg carries the task result back to the TUI.
type taskDoneMsg struct {
	output string
	err    error
}

type taskModel struct {
	ctx     context.Context
	label   string
	fn      taskFunc
	spinner spinner.Model
	output  string
	err     error
	done    bool
}

func newTaskModel(ctx context.Context, label string, fn taskFunc) taskModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleInfo
	return taskModel{
		ctx:     ctx,
		label:   label,
		fn:      fn,
		spinner: s,
	}
}

func (m taskModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run())
}

func (m taskModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = errInterrupted
			return m, tea.Quit
		}
	case taskDoneMsg:
		m.output = msg.output
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m taskModel) View() string {
	if m.done {
		if m.err != nil {
			// The error itself is printed by main.
			return ""
		}
		return m.output + "\n"
	}
	if m.err != nil {
		return ""
	}
	return m.spinner.View() + styleDim.Render(" "+m.label) + "\n"
}

func (m taskModel) run() tea.Cmd {
	return func() tea.Msg {
		out, err := m.fn(m.ctx)
		return taskDoneMsg{output: out, err: err}
	}
}
