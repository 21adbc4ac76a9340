package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/emmanuelcabrera1/stint/internal/engine"
	"github.com/emmanuelcabrera1/stint/internal/models"
	"github.com/emmanuelcabrera1/stint/internal/storage"
	"github.com/emmanuelcabrera1/stint/internal/tui/components/dashboard"
	"github.com/emmanuelcabrera1/stint/internal/tui/components/experimentlist"
	"github.com/emmanuelcabrera1/stint/internal/validation"
)

type SessionState int

const (
	StateDashboard SessionState = iota
	StateExperiments
	StateCheckin
	StateAddExperiment
	StateConfirmDelete
	StateConfirmArchive
)

// tabCount covers the cycling tabs; modal states are entered explicitly
const tabCount = 2

type CheckinFormModel struct {
	Kind string
	Note string
}

type ExperimentFormModel struct {
	Name       string
	Frequency  string
	Target     string
	Difficulty string
}

type Model struct {
	store           storage.Provider
	engine          *engine.Engine
	state           SessionState
	keys            KeyMap
	help            help.Model
	dashboardModel  dashboard.Model
	experimentsList experimentlist.Model

	form           *huh.Form
	checkinForm    *CheckinFormModel
	checkinTarget  *models.Experiment
	experimentForm *ExperimentFormModel

	experimentToDeleteID  string
	experimentToArchiveID string

	validationWarning string
	statusMessage     string
	quitting          bool
	width             int
	height            int
}

func NewModel(store storage.Provider, eng *engine.Engine) Model {
	m := Model{
		store:           store,
		engine:          eng,
		state:           StateDashboard,
		keys:            DefaultKeyMap(),
		help:            help.New(),
		dashboardModel:  dashboard.New(0, 0),
		experimentsList: experimentlist.New(nil, 0, 0),
	}

	m.refresh()
	m.updateValidationStatus()

	return m
}

// refresh reloads experiments from the store and rebuilds both tabs.
func (m *Model) refresh() {
	today := time.Now().Format("2006-01-02")

	experiments, err := m.store.GetAllExperimentsIncludingDeleted()
	if err != nil {
		m.statusMessage = fmt.Sprintf("⚠ failed to load experiments: %v", err)
		return
	}

	var rows []dashboard.Row
	var items []experimentlist.Item
	for _, exp := range experiments {
		streak := 0
		if exp.DeletedAt == nil && exp.Status != models.StatusArchived {
			if s, err := m.engine.CurrentStreak(exp, today); err == nil {
				streak = s
			}
		}
		items = append(items, experimentlist.Item{Experiment: exp, Streak: streak})

		if exp.DeletedAt != nil || exp.Status == models.StatusArchived {
			continue
		}

		completed, _ := m.engine.DaysCompleted(exp)
		progress, _ := m.engine.Progress(exp)
		atRisk, _ := m.engine.IsAtRisk(exp, today)
		report, _ := m.engine.DetectDisruption(exp, today)
		_, logged := exp.EntryFor(today)

		rows = append(rows, dashboard.Row{
			Name:      exp.Name,
			Streak:    streak,
			Completed: completed,
			Target:    exp.TargetDays + exp.ExtensionDays,
			Progress:  progress,
			AtRisk:    atRisk,
			Disrupted: report.Disrupted,
			Paused:    exp.Status == models.StatusPaused,
			LoggedDay: logged,
		})
	}

	m.dashboardModel.SetRows(rows)
	m.experimentsList.SetItems(items)
}

// startCheckin opens the check-in form for an experiment.
func (m *Model) startCheckin(exp models.Experiment) {
	m.checkinTarget = &exp
	m.checkinForm = &CheckinFormModel{Kind: string(models.EntryCompleted)}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("Check in: %s", exp.Name)).
				Options(
					huh.NewOption("Completed", string(models.EntryCompleted)),
					huh.NewOption("Minimum viable", string(models.EntryMinimum)),
					huh.NewOption("Missed", string(models.EntryMissed)),
				).
				Value(&m.checkinForm.Kind),
			huh.NewInput().
				Title("Note (optional)").
				Value(&m.checkinForm.Note),
		),
	)

	m.state = StateCheckin
}

// startAddExperiment opens the new-experiment form.
func (m *Model) startAddExperiment() {
	m.experimentForm = &ExperimentFormModel{
		Frequency:  string(models.FrequencyDaily),
		Target:     strconv.Itoa(models.DefaultTargetDays),
		Difficulty: "2",
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Experiment name").
				Value(&m.experimentForm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Frequency").
				Options(
					huh.NewOption("Daily", string(models.FrequencyDaily)),
					huh.NewOption("Weekly", string(models.FrequencyWeekly)),
				).
				Value(&m.experimentForm.Frequency),
			huh.NewInput().
				Title("Target days").
				Value(&m.experimentForm.Target).
				Validate(func(s string) error {
					if _, err := strconv.Atoi(s); err != nil {
						return fmt.Errorf("target must be a number")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Difficulty").
				Options(
					huh.NewOption("Gentle", "1"),
					huh.NewOption("Standard", "2"),
					huh.NewOption("Ambitious", "3"),
				).
				Value(&m.experimentForm.Difficulty),
		),
	)

	m.state = StateAddExperiment
}

// saveExperiment persists the completed new-experiment form.
func (m *Model) saveExperiment() {
	if m.experimentForm == nil {
		return
	}

	target, _ := strconv.Atoi(m.experimentForm.Target)
	difficulty, _ := strconv.Atoi(m.experimentForm.Difficulty)

	now := time.Now().UTC()
	exp := models.Experiment{
		ID:         uuid.New().String(),
		Name:       strings.TrimSpace(m.experimentForm.Name),
		Frequency:  models.Frequency(m.experimentForm.Frequency),
		StartDate:  time.Now().Format("2006-01-02"),
		TargetDays: target,
		Difficulty: difficulty,
		Status:     models.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := m.store.AddExperiment(exp); err != nil {
		m.statusMessage = fmt.Sprintf("⚠ add failed: %v", err)
	} else {
		m.statusMessage = fmt.Sprintf("✓ Started %s", exp.Name)
	}

	m.experimentForm = nil
	m.form = nil
	m.refresh()
	m.updateValidationStatus()
}

// saveCheckin persists the completed check-in form as today's entry.
func (m *Model) saveCheckin() {
	if m.checkinTarget == nil || m.checkinForm == nil {
		return
	}

	now := time.Now().UTC()
	entry := models.Entry{
		Day:       time.Now().Format("2006-01-02"),
		Kind:      models.EntryKind(m.checkinForm.Kind),
		Note:      m.checkinForm.Note,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := m.store.SaveEntry(m.checkinTarget.ID, entry); err != nil {
		m.statusMessage = fmt.Sprintf("⚠ check-in failed: %v", err)
	} else {
		m.statusMessage = fmt.Sprintf("✓ %s: %s", m.checkinTarget.Name, entry.Kind)
	}

	m.checkinTarget = nil
	m.checkinForm = nil
	m.form = nil
	m.refresh()
	m.updateValidationStatus()
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == StateExperiments {
		keys = append(keys, m.keys.Checkin, m.keys.Archive, m.keys.Delete)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Enter}

	var actions []key.Binding
	if m.state == StateExperiments {
		actions = []key.Binding{m.keys.Checkin, m.keys.Archive, m.keys.Delete, m.keys.Restore}
	}

	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// updateValidationStatus runs validation and updates the warning message
func (m *Model) updateValidationStatus() {
	experiments, err := m.store.GetAllExperiments()
	if err != nil {
		// Store errors prevent validation - show generic message
		m.validationWarning = "⚠ Validation unavailable"
		return
	}

	validator := validation.New()
	result := validator.ValidateExperiments(experiments)

	if result.HasConflicts() {
		m.validationWarning = fmt.Sprintf("⚠ %d validation warning(s)", len(result.Conflicts))
	} else {
		m.validationWarning = ""
	}
}
