package validation

import (
	"fmt"
	"strings"

	"github.com/emmanuelcabrera1/stint/internal/models"
)

// ConflictType identifies a category of data integrity problem
type ConflictType string

const (
	ConflictDuplicateExperimentName ConflictType = "duplicate_experiment_name"
	ConflictInvalidDate             ConflictType = "invalid_date"
	ConflictUnknownEntryKind        ConflictType = "unknown_entry_kind"
	ConflictDuplicateEntryDay       ConflictType = "duplicate_entry_day"
	ConflictEntryBeforeStart        ConflictType = "entry_before_start"
	ConflictMalformedGraceWindow    ConflictType = "malformed_grace_window"
)

// Conflict describes a single integrity problem found in the store
type Conflict struct {
	Type        ConflictType
	Description string
	Items       []string // IDs or days involved
}

// ValidationResult collects all conflicts found during validation
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if any conflicts were found
func (r *ValidationResult) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (r *ValidationResult) FormatReport() string {
	if !r.HasConflicts() {
		return "No conflicts detected."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d conflict(s):\n", len(r.Conflicts)))
	for i, conflict := range r.Conflicts {
		sb.WriteString(fmt.Sprintf("  %d. [%s] %s\n", i+1, conflict.Type, conflict.Description))
	}
	return sb.String()
}

// Validator checks experiments and their entry logs for integrity problems
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateExperiments checks cross-experiment invariants. Soft-deleted
// experiments are skipped.
func (v *Validator) ValidateExperiments(experiments []models.Experiment) ValidationResult {
	result := ValidationResult{}

	seen := make(map[string]string) // lowercase name -> id
	for _, exp := range experiments {
		if exp.DeletedAt != nil {
			continue
		}

		key := strings.ToLower(exp.Name)
		if otherID, ok := seen[key]; ok {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateExperimentName,
				Description: fmt.Sprintf("experiment name %q is used by both %s and %s", exp.Name, otherID, exp.ID),
				Items:       []string{otherID, exp.ID},
			})
		} else {
			seen[key] = exp.ID
		}

		if _, err := models.ParseDay(exp.StartDate); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDate,
				Description: fmt.Sprintf("experiment %q has unparseable start date %q", exp.Name, exp.StartDate),
				Items:       []string{exp.ID},
			})
		}

		if exp.Grace != nil {
			start, errStart := models.ParseDay(exp.Grace.StartedAt)
			end, errEnd := models.ParseDay(exp.Grace.ExpiresAt)
			if errStart != nil || errEnd != nil {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictMalformedGraceWindow,
					Description: fmt.Sprintf("experiment %q has unparseable grace window dates", exp.Name),
					Items:       []string{exp.ID},
				})
			} else if end.Before(start) {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictMalformedGraceWindow,
					Description: fmt.Sprintf("experiment %q grace window expires (%s) before it starts (%s)", exp.Name, exp.Grace.ExpiresAt, exp.Grace.StartedAt),
					Items:       []string{exp.ID},
				})
			}
		}

		result.Conflicts = append(result.Conflicts, v.validateEntries(exp)...)
	}

	return result
}

// validateEntries checks a single experiment's entry log. Soft-deleted
// entries are skipped.
func (v *Validator) validateEntries(exp models.Experiment) []Conflict {
	var conflicts []Conflict

	start, startErr := models.ParseDay(exp.StartDate)

	seenDays := make(map[string]bool)
	for _, entry := range exp.Entries {
		if entry.DeletedAt != nil {
			continue
		}

		if _, err := models.ParseEntryKind(string(entry.Kind)); err != nil {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictUnknownEntryKind,
				Description: fmt.Sprintf("experiment %q has entry with unknown kind %q on %s", exp.Name, entry.Kind, entry.Day),
				Items:       []string{exp.ID, entry.Day},
			})
		}

		day, err := models.ParseDay(entry.Day)
		if err != nil {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictInvalidDate,
				Description: fmt.Sprintf("experiment %q has entry with unparseable day %q", exp.Name, entry.Day),
				Items:       []string{exp.ID, entry.Day},
			})
			continue
		}

		if seenDays[entry.Day] {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictDuplicateEntryDay,
				Description: fmt.Sprintf("experiment %q has multiple entries for %s", exp.Name, entry.Day),
				Items:       []string{exp.ID, entry.Day},
			})
		}
		seenDays[entry.Day] = true

		if startErr == nil && day.Before(start) {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictEntryBeforeStart,
				Description: fmt.Sprintf("experiment %q has entry on %s before its start date %s", exp.Name, entry.Day, exp.StartDate),
				Items:       []string{exp.ID, entry.Day},
			})
		}
	}

	return conflicts
}
