// Package tui renders a live dashboard of a running script session.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/megatron/internal/engine"
)

const maxReports = 8

// EventMsg carries one engine event into the program.
type EventMsg struct {
	Event engine.Event
}

// DoneMsg reports that the session has ended.
type DoneMsg struct {
	Summary engine.Summary
	Err     error
}

// Model is the Bubbletea state of the session dashboard.
type Model struct {
	title   string
	spinner spinner.Model
	cancel  context.CancelFunc

	state      engine.State
	stack      []string
	line       string
	lineNo     int
	loop       string
	reports    []string
	diversions int
	lines      int

	started   time.Time
	finished  bool
	cancelled bool
	summary   engine.Summary
	err       error
}

// NewModel returns a dashboard titled with the session name. cancel is
// invoked when the operator interrupts the session.
func NewModel(title string, cancel context.CancelFunc) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return Model{
		title:   title,
		spinner: s,
		cancel:  cancel,
		state:   engine.StateIdle,
		started: time.Now(),
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Observer returns an engine observer that forwards events to p.
func Observer(p *tea.Program) engine.Observer {
	return func(ev engine.Event) {
		p.Send(EventMsg{Event: ev})
	}
}

// IsFinished reports whether the session has ended.
func (m Model) IsFinished() bool {
	return m.finished
}

// Summary returns the final session summary once finished.
func (m Model) Summary() engine.Summary {
	return m.summary
}

// Err returns the error the session ended with, if any.
func (m Model) Err() error {
	return m.err
}
