package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case StateDashboard:
		content = docStyle.Render(m.dashboardModel.View())
	case StateExperiments:
		content = docStyle.Render(m.experimentsList.View())
	case StateCheckin, StateAddExperiment:
		content = m.form.View()
	case StateConfirmDelete:
		content = m.viewConfirm("Are you sure you want to delete this experiment?")
	case StateConfirmArchive:
		content = m.viewConfirm("Archive this experiment? Archived experiments are read-only.")
	}

	sections := []string{m.viewTabs(), content}
	if m.statusMessage != "" {
		sections = append(sections, "  "+m.statusMessage)
	}
	if m.validationWarning != "" {
		sections = append(sections, "  "+dangerStyle.Render(m.validationWarning))
	}
	sections = append(sections, m.help.View(m))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Today", "Experiments"} {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewConfirm(question string) string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(question),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
