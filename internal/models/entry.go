package models

import (
	"fmt"
	"time"
)

type EntryKind string

const (
	EntryCompleted EntryKind = "completed"
	EntryMinimum   EntryKind = "minimum"
	EntrySkipped   EntryKind = "skipped"
	EntryMissed    EntryKind = "missed"
)

// ParseEntryKind maps a stored string onto the closed kind set. Unknown kinds
// are a data-integrity failure and must surface to the storage layer rather
// than be coerced to a default.
func ParseEntryKind(s string) (EntryKind, error) {
	switch EntryKind(s) {
	case EntryCompleted, EntryMinimum, EntrySkipped, EntryMissed:
		return EntryKind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Entry represents a single period's check-in record for an experiment.
// There is at most one entry per (experiment, day); recording a check-in for
// an existing day replaces the prior entry.
type Entry struct {
	Day       string     `json:"day"` // YYYY-MM-DD format
	Kind      EntryKind  `json:"kind"`
	Note      string     `json:"note,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	// IsCompleted is the pre-v2 shape, kept only so old stores unmarshal.
	// Normalized into Kind by NormalizeLegacy on load.
	IsCompleted *bool `json:"is_completed,omitempty"`
}

// Validate checks an entry at the data-model boundary.
func (e Entry) Validate() error {
	if _, err := ParseDay(e.Day); err != nil {
		return err
	}
	if _, err := ParseEntryKind(string(e.Kind)); err != nil {
		return err
	}
	return nil
}

// NormalizeLegacy converts a legacy is_completed record into the tagged kind
// set. Entries that already carry a kind are returned unchanged.
func (e Entry) NormalizeLegacy() Entry {
	if e.Kind != "" || e.IsCompleted == nil {
		return e
	}
	if *e.IsCompleted {
		e.Kind = EntryCompleted
	} else {
		e.Kind = EntryMissed
	}
	e.IsCompleted = nil
	return e
}

// ParseDay parses a canonical YYYY-MM-DD day string.
func ParseDay(day string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDay, day)
	}
	return t, nil
}

// FormatDay renders a time as a canonical day string.
func FormatDay(t time.Time) string {
	return t.Format("2006-01-02")
}
