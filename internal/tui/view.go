package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/megatron/internal/engine"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	title := titleStyle.Render(fmt.Sprintf("Megatron • %s", m.heading()))
	sections = append(sections, title)

	status := fmt.Sprintf("%s %s", m.indicator(), StateLabel(m.state))
	if m.loop != "" && m.state == engine.StateInLoop {
		status += mutedStyle.Render(fmt.Sprintf(" (iteration %s)", m.loop))
	}
	sections = append(sections, status)

	if len(m.stack) > 0 {
		sections = append(sections, sectionStyle.Render("Scripts"), strings.Join(m.stack, " › "))
	}

	if m.line != "" {
		sections = append(sections, sectionStyle.Render("Current line"), fmt.Sprintf(" %4d  %s", m.lineNo, m.line))
	}

	if len(m.reports) > 0 {
		lines := make([]string, len(m.reports))
		for i, r := range m.reports {
			lines[i] = warningStyle.Render(" ! ") + r
		}
		sections = append(sections, sectionStyle.Render("Reports"), strings.Join(lines, "\n"))
	}

	if m.finished {
		sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(m.summaryText()))
	} else if m.cancelled {
		sections = append(sections, mutedStyle.Render("Cancelling..."))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) heading() string {
	if strings.TrimSpace(m.title) != "" {
		return m.title
	}
	return "Session"
}

func (m Model) indicator() string {
	if !m.finished {
		return m.spinner.View()
	}
	if m.err != nil {
		return failureStyle.Render("✗")
	}
	return successStyle.Render("✓")
}

func (m Model) summaryText() string {
	s := m.summary
	text := fmt.Sprintf("%d steps, %d diversions, %d reports in %s",
		s.Steps, s.Diversions, s.Reports, s.Duration.Truncate(10*time.Millisecond))
	if m.err != nil {
		text += "\n" + failureStyle.Render(m.err.Error())
	}
	return text
}

// StateLabel renders an engine state with its color.
func StateLabel(s engine.State) string {
	switch s {
	case engine.StateRunning, engine.StateInLoop:
		return runningStyle.Render(s.String())
	case engine.StateDiverting:
		return warningStyle.Render(s.String())
	case engine.StateFinished, engine.StateExited:
		return successStyle.Render(s.String())
	case engine.StateStopped:
		return failureStyle.Render(s.String())
	default:
		return mutedStyle.Render(s.String())
	}
}
