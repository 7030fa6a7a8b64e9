package tui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/megatron/internal/engine"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case EventMsg:
		m.apply(msg.Event)
		return m, nil
	case DoneMsg:
		m.finished = true
		m.summary = msg.Summary
		m.state = msg.Summary.State
		m.err = msg.Err
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if !m.cancelled {
				m.cancelled = true
				if m.cancel != nil {
					m.cancel()
				}
			}
			return m, nil
		}
	}
	return m, nil
}

func (m *Model) apply(ev engine.Event) {
	m.state = ev.State
	switch ev.Kind {
	case engine.EventScriptStarted:
		m.stack = append(m.stack, filepath.Base(ev.Script))
	case engine.EventScriptFinished:
		if len(m.stack) > 0 {
			m.stack = m.stack[:len(m.stack)-1]
		}
	case engine.EventLine:
		m.lines++
		m.line = ev.Text
		m.lineNo = ev.Line
	case engine.EventLoopIteration:
		m.loop = ev.Text
	case engine.EventDiversion:
		m.diversions++
		m.stack = nil
		m.loop = ""
		m.addReport(fmt.Sprintf("diverted to %s", filepath.Base(ev.Script)))
	case engine.EventReport:
		if ev.Err != nil {
			m.addReport(ev.Err.Error())
		}
	case engine.EventSessionEnded:
		m.stack = nil
	}
}

func (m *Model) addReport(text string) {
	m.reports = append(m.reports, text)
	if len(m.reports) > maxReports {
		m.reports = m.reports[len(m.reports)-maxReports:]
	}
}
