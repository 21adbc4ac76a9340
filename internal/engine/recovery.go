package engine

import (
	"fmt"
	"time"

	"github.com/emmanuelcabrera1/stint/internal/constants"
	"github.com/emmanuelcabrera1/stint/internal/models"
)

type RecoveryAction string

const (
	RecoveryPause     RecoveryAction = "pause"
	RecoveryExtend    RecoveryAction = "extend"
	RecoveryScaleDown RecoveryAction = "scale_down"
	RecoveryRestart   RecoveryAction = "restart"
	RecoveryEndEarly  RecoveryAction = "end_early"
)

// ApplyRecovery applies a recovery action to a disrupted experiment and
// returns the transformed state. It performs no side effects; persisting the
// result is the caller's responsibility. Recovery without a detected
// disruption is rejected as a contract violation.
func (e *Engine) ApplyRecovery(exp models.Experiment, action RecoveryAction, asOf string) (models.Experiment, error) {
	if err := guardComputable(exp); err != nil {
		return exp, err
	}

	report, err := e.DetectDisruption(exp, asOf)
	if err != nil {
		return exp, err
	}
	if !report.Disrupted {
		return exp, ErrNotDisrupted
	}

	asOfDay, err := models.ParseDay(asOf)
	if err != nil {
		return exp, err
	}

	switch action {
	case RecoveryPause:
		exp.Status = models.StatusPaused
		exp.Grace = &models.GracePeriod{
			Active:    true,
			StartedAt: asOf,
			ExpiresAt: models.FormatDay(asOfDay.AddDate(0, 0, constants.GraceDays)),
		}

	case RecoveryExtend:
		exp.ExtensionDays += report.ConsecutiveMisses * periodLength(exp.Frequency)

	case RecoveryScaleDown:
		exp.Difficulty = models.MinDifficulty

	case RecoveryRestart:
		for _, entry := range exp.Entries {
			if entry.Note != "" {
				exp.ArchivedNotes = append(exp.ArchivedNotes, entry)
			}
		}
		exp.Entries = nil
		exp.StartDate = asOf
		exp.RestartCount++
		exp.SkipDaysUsed = 0
		exp.Grace = nil

	case RecoveryEndEarly:
		exp.Status = models.StatusArchived
		exp.ReflectionDue = true

	default:
		return exp, fmt.Errorf("unknown recovery action: %q", action)
	}

	return exp, nil
}

// Resume returns a paused experiment to active and closes its grace window.
func (e *Engine) Resume(exp models.Experiment) (models.Experiment, error) {
	if exp.Status == models.StatusArchived {
		return exp, ErrArchived
	}
	if exp.Status != models.StatusPaused {
		return exp, ErrNotPaused
	}
	exp.Status = models.StatusActive
	if exp.Grace != nil {
		closed := *exp.Grace
		closed.Active = false
		exp.Grace = &closed
	}
	return exp, nil
}

// Archive ends an experiment. No transition leaves the archived state.
func (e *Engine) Archive(exp models.Experiment, now time.Time) (models.Experiment, error) {
	if exp.Status == models.StatusArchived {
		return exp, ErrArchived
	}
	exp.Status = models.StatusArchived
	exp.UpdatedAt = now
	return exp, nil
}
