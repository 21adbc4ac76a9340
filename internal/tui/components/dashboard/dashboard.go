package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Width(24)

	streakStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Italic(true)
)

// Row is one experiment's pre-computed snapshot for today.
type Row struct {
	Name      string
	Streak    int
	Completed int
	Target    int
	Progress  float64
	AtRisk    bool
	Disrupted bool
	Paused    bool
	LoggedDay bool
}

type Model struct {
	viewport viewport.Model
	rows     []Row
	width    int
	height   int
}

func New(width, height int) Model {
	vp := viewport.New(width, height)
	return Model{viewport: vp}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.rows) == 0 {
		return "No active experiments. Add one with 'stint add'."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

func (m *Model) SetRows(rows []Row) {
	m.rows = rows
	m.Render()
}

func (m *Model) Render() {
	var b strings.Builder
	for _, row := range m.rows {
		check := "·"
		if row.LoggedDay {
			check = "✓"
		}

		line := fmt.Sprintf("%s %s %s  %s",
			check,
			nameStyle.Render(row.Name),
			streakStyle.Render(fmt.Sprintf("▲ %d", row.Streak)),
			progressStyle.Render(fmt.Sprintf("%d/%d (%s)", row.Completed, row.Target, progressBar(row.Progress))),
		)

		switch {
		case row.Disrupted:
			line += "  " + warnStyle.Render("disrupted")
		case row.Paused:
			line += "  " + warnStyle.Render("paused")
		case row.AtRisk:
			line += "  " + warnStyle.Render("at risk")
		}

		b.WriteString(line)
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
}

func progressBar(p float64) string {
	const width = 10
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	filled := int(p * width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
