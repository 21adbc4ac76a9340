package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/emmanuelcabrera1/stint/internal/tui/components/experimentlist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.dashboardModel.SetSize(msg.Width-4, msg.Height-6)
		m.experimentsList.SetSize(msg.Width-4, msg.Height-6)

	case experimentlist.AddMsg:
		m.startAddExperiment()
		return m, m.form.Init()

	case experimentlist.CheckinMsg:
		m.startCheckin(msg.Experiment)
		return m, m.form.Init()

	case experimentlist.ArchiveMsg:
		m.experimentToArchiveID = msg.ID
		m.state = StateConfirmArchive
		return m, nil

	case experimentlist.DeleteMsg:
		m.experimentToDeleteID = msg.ID
		m.state = StateConfirmDelete
		return m, nil

	case experimentlist.RestoreMsg:
		if err := m.store.RestoreExperiment(msg.ID); err != nil {
			m.statusMessage = fmt.Sprintf("⚠ restore failed: %v", err)
		} else {
			m.statusMessage = "✓ Experiment restored"
		}
		m.refresh()
		return m, nil
	}

	switch m.state {
	case StateCheckin:
		return m.updateCheckin(msg)
	case StateAddExperiment:
		return m.updateAddExperiment(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	case StateConfirmArchive:
		return m.updateConfirmArchive(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(keyMsg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(keyMsg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(keyMsg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateDashboard:
		m.dashboardModel, cmd = m.dashboardModel.Update(msg)
	case StateExperiments:
		m.experimentsList, cmd = m.experimentsList.Update(msg)
	}

	return m, cmd
}

func (m Model) updateCheckin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		m.form = nil
		m.checkinForm = nil
		m.checkinTarget = nil
		m.state = StateExperiments
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.saveCheckin()
		m.state = StateExperiments
	}

	return m, cmd
}

func (m Model) updateAddExperiment(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		m.form = nil
		m.experimentForm = nil
		m.state = StateExperiments
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.saveExperiment()
		m.state = StateExperiments
	}

	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "y", "Y":
			if err := m.store.DeleteExperiment(m.experimentToDeleteID); err != nil {
				m.statusMessage = fmt.Sprintf("⚠ delete failed: %v", err)
			} else {
				m.statusMessage = "✓ Experiment deleted (restore with 'r')"
			}
			m.experimentToDeleteID = ""
			m.refresh()
			m.state = StateExperiments
		case "n", "N", "esc", "q":
			m.experimentToDeleteID = ""
			m.state = StateExperiments
		}
	}
	return m, nil
}

func (m Model) updateConfirmArchive(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "y", "Y":
			exp, err := m.store.GetExperiment(m.experimentToArchiveID)
			if err == nil {
				updated, archiveErr := m.engine.Archive(exp, time.Now().UTC())
				if archiveErr == nil {
					archiveErr = m.store.UpdateExperiment(updated)
				}
				err = archiveErr
			}
			if err != nil {
				m.statusMessage = fmt.Sprintf("⚠ archive failed: %v", err)
			} else {
				m.statusMessage = "✓ Experiment archived"
			}
			m.experimentToArchiveID = ""
			m.refresh()
			m.state = StateExperiments
		case "n", "N", "esc", "q":
			m.experimentToArchiveID = ""
			m.state = StateExperiments
		}
	}
	return m, nil
}
