package models

import (
	"errors"
	"time"
)

var (
	ErrUnknownKind = errors.New("unknown entry kind")
	ErrBadDay      = errors.New("invalid day")
)

type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

type ExperimentStatus string

const (
	StatusActive   ExperimentStatus = "active"
	StatusPaused   ExperimentStatus = "paused"
	StatusArchived ExperimentStatus = "archived"
)

const (
	MinDifficulty = 1
	MaxDifficulty = 3
)

// DefaultTargetDays is applied when an experiment is stored without a usable
// target. An explicit zero is preserved (progress treats it as already met).
const DefaultTargetDays = 30

// GracePeriod is a time-boxed shield against streak breakage. A missed period
// inside [StartedAt, ExpiresAt] bridges the streak instead of breaking it.
type GracePeriod struct {
	Active    bool   `json:"active"`
	StartedAt string `json:"started_at"` // YYYY-MM-DD format
	ExpiresAt string `json:"expires_at"` // YYYY-MM-DD format
}

// Experiment is a time-boxed habit commitment tracked with dated check-ins.
type Experiment struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Frequency     Frequency        `json:"frequency"`
	StartDate     string           `json:"start_date"` // YYYY-MM-DD format
	TargetDays    int              `json:"target_days"`
	ExtensionDays int              `json:"extension_days,omitempty"`
	Difficulty    int              `json:"difficulty"`
	Grace         *GracePeriod     `json:"grace,omitempty"`
	SkipDaysUsed  int              `json:"skip_days_used"`
	RestartCount  int              `json:"restart_count,omitempty"`
	ReflectionDue bool             `json:"reflection_due,omitempty"`
	Status        ExperimentStatus `json:"status"`
	Entries       []Entry          `json:"entries"`
	ArchivedNotes []Entry          `json:"archived_notes,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     *time.Time       `json:"deleted_at,omitempty"`
}

// EntryFor returns the entry recorded for a day, if any.
func (e Experiment) EntryFor(day string) (Entry, bool) {
	for _, entry := range e.Entries {
		if entry.Day == day && entry.DeletedAt == nil {
			return entry, true
		}
	}
	return Entry{}, false
}

// UpsertEntry records a check-in, replacing any prior entry for the same day.
func (e *Experiment) UpsertEntry(entry Entry) {
	for i := range e.Entries {
		if e.Entries[i].Day == entry.Day {
			entry.CreatedAt = e.Entries[i].CreatedAt
			e.Entries[i] = entry
			return
		}
	}
	e.Entries = append(e.Entries, entry)
}

// Normalize applies configuration-gap defaults and legacy entry migration.
// Called once when an experiment is loaded from storage; the engine never
// branches on legacy shapes.
func (e Experiment) Normalize() Experiment {
	if e.TargetDays < 0 {
		e.TargetDays = DefaultTargetDays
	}
	if e.Frequency == "" {
		e.Frequency = FrequencyDaily
	}
	if e.Status == "" {
		e.Status = StatusActive
	}
	if e.Difficulty < MinDifficulty {
		e.Difficulty = MinDifficulty
	} else if e.Difficulty > MaxDifficulty {
		e.Difficulty = MaxDifficulty
	}
	for i := range e.Entries {
		e.Entries[i] = e.Entries[i].NormalizeLegacy()
	}
	return e
}
