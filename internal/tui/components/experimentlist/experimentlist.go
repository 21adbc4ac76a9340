package experimentlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/emmanuelcabrera1/stint/internal/models"
)

type AddMsg struct{}

type CheckinMsg struct {
	Experiment models.Experiment
}

type ArchiveMsg struct {
	ID string
}

type DeleteMsg struct {
	ID string
}

type RestoreMsg struct {
	ID string
}

type Item struct {
	Experiment models.Experiment
	Streak     int
}

func (i Item) Title() string {
	if i.Experiment.DeletedAt != nil {
		return "👻 " + i.Experiment.Name + " (deleted)"
	}
	return i.Experiment.Name
}

func (i Item) Description() string {
	exp := i.Experiment
	desc := fmt.Sprintf("%s | %s | streak %d", exp.Frequency, exp.Status, i.Streak)
	if exp.DeletedAt != nil {
		desc = fmt.Sprintf("%s | can restore with 'r'", exp.Frequency)
	}
	return desc
}

func (i Item) FilterValue() string { return i.Experiment.Name }

type KeyMap struct {
	Add     key.Binding
	Checkin key.Binding
	Archive key.Binding
	Delete  key.Binding
	Restore key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Checkin: key.NewBinding(
			key.WithKeys("c", "enter"),
			key.WithHelp("c", "check in"),
		),
		Archive: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "archive"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Restore: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restore"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(items []Item, width, height int) Model {
	listItems := make([]list.Item, len(items))
	for i, it := range items {
		listItems[i] = it
	}

	l := list.New(listItems, list.NewDefaultDelegate(), width, height)
	l.Title = "Experiments"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // We handle help globally in the main model

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Checkin, keys.Archive, keys.Delete, keys.Restore}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Checkin, keys.Archive, keys.Delete, keys.Restore}
	}

	return Model{list: l, keys: keys}
}

func (m *Model) SetItems(items []Item) {
	listItems := make([]list.Item, len(items))
	for i, it := range items {
		listItems[i] = it
	}
	m.list.SetItems(listItems)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddMsg{} }
		case key.Matches(msg, m.keys.Checkin):
			if i, ok := m.list.SelectedItem().(Item); ok {
				if i.Experiment.DeletedAt == nil && i.Experiment.Status != models.StatusArchived {
					return m, func() tea.Msg { return CheckinMsg{Experiment: i.Experiment} }
				}
			}
		case key.Matches(msg, m.keys.Archive):
			if i, ok := m.list.SelectedItem().(Item); ok {
				if i.Experiment.DeletedAt == nil && i.Experiment.Status != models.StatusArchived {
					return m, func() tea.Msg { return ArchiveMsg{ID: i.Experiment.ID} }
				}
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				if i.Experiment.DeletedAt == nil {
					return m, func() tea.Msg { return DeleteMsg{ID: i.Experiment.ID} }
				}
			}
		case key.Matches(msg, m.keys.Restore):
			if i, ok := m.list.SelectedItem().(Item); ok {
				if i.Experiment.DeletedAt != nil {
					return m, func() tea.Msg { return RestoreMsg{ID: i.Experiment.ID} }
				}
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No experiments yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
