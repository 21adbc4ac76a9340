package validation

import (
	"testing"
	"time"

	"github.com/emmanuelcabrera1/stint/internal/models"
)

func TestValidateExperiments_DuplicateNames(t *testing.T) {
	validator := New()

	experiments := []models.Experiment{
		{ID: "1", Name: "Morning Pages", StartDate: "2025-01-01", Status: models.StatusActive},
		{ID: "2", Name: "Cold Showers", StartDate: "2025-01-01", Status: models.StatusActive},
		{ID: "3", Name: "morning pages", StartDate: "2025-01-01", Status: models.StatusActive}, // Duplicate
	}

	result := validator.ValidateExperiments(experiments)

	if !result.HasConflicts() {
		t.Error("Expected to detect duplicate experiment names")
	}

	found := false
	for _, conflict := range result.Conflicts {
		if conflict.Type == ConflictDuplicateExperimentName {
			found = true
			if len(conflict.Items) != 2 {
				t.Errorf("Expected 2 items in conflict, got %d", len(conflict.Items))
			}
		}
	}
	if !found {
		t.Error("Expected ConflictDuplicateExperimentName conflict type")
	}
}

func TestValidateExperiments_InvalidDates(t *testing.T) {
	validator := New()

	experiments := []models.Experiment{
		{ID: "1", Name: "Bad Start", StartDate: "Jan 1st", Status: models.StatusActive},
		{
			ID: "2", Name: "Bad Entry", StartDate: "2025-01-01", Status: models.StatusActive,
			Entries: []models.Entry{{Day: "not-a-day", Kind: models.EntryCompleted}},
		},
	}

	result := validator.ValidateExperiments(experiments)

	invalidDateCount := 0
	for _, conflict := range result.Conflicts {
		if conflict.Type == ConflictInvalidDate {
			invalidDateCount++
		}
	}
	if invalidDateCount != 2 {
		t.Errorf("Expected 2 invalid date conflicts, got %d", invalidDateCount)
	}
}

func TestValidateExperiments_UnknownEntryKind(t *testing.T) {
	validator := New()

	experiments := []models.Experiment{
		{
			ID: "1", Name: "Corrupt Log", StartDate: "2025-01-01", Status: models.StatusActive,
			Entries: []models.Entry{{Day: "2025-01-02", Kind: "sort_of_done"}},
		},
	}

	result := validator.ValidateExperiments(experiments)

	found := false
	for _, conflict := range result.Conflicts {
		if conflict.Type == ConflictUnknownEntryKind {
			found = true
		}
	}
	if !found {
		t.Error("Expected ConflictUnknownEntryKind conflict type")
	}
}

func TestValidateExperiments_DuplicateEntryDays(t *testing.T) {
	validator := New()

	experiments := []models.Experiment{
		{
			ID: "1", Name: "Double Logged", StartDate: "2025-01-01", Status: models.StatusActive,
			Entries: []models.Entry{
				{Day: "2025-01-02", Kind: models.EntryCompleted},
				{Day: "2025-01-02", Kind: models.EntryMinimum},
			},
		},
	}

	result := validator.ValidateExperiments(experiments)

	found := false
	for _, conflict := range result.Conflicts {
		if conflict.Type == ConflictDuplicateEntryDay {
			found = true
		}
	}
	if !found {
		t.Error("Expected ConflictDuplicateEntryDay conflict type")
	}
}

func TestValidateExperiments_EntryBeforeStart(t *testing.T) {
	validator := New()

	experiments := []models.Experiment{
		{
			ID: "1", Name: "Time Traveler", StartDate: "2025-01-10", Status: models.StatusActive,
			Entries: []models.Entry{{Day: "2025-01-05", Kind: models.EntryCompleted}},
		},
	}

	result := validator.ValidateExperiments(experiments)

	found := false
	for _, conflict := range result.Conflicts {
		if conflict.Type == ConflictEntryBeforeStart {
			found = true
		}
	}
	if !found {
		t.Error("Expected ConflictEntryBeforeStart conflict type")
	}
}

func TestValidateExperiments_MalformedGraceWindow(t *testing.T) {
	validator := New()

	experiments := []models.Experiment{
		{
			ID: "1", Name: "Inverted Grace", StartDate: "2025-01-01", Status: models.StatusActive,
			Grace: &models.GracePeriod{Active: true, StartedAt: "2025-01-10", ExpiresAt: "2025-01-05"},
		},
	}

	result := validator.ValidateExperiments(experiments)

	found := false
	for _, conflict := range result.Conflicts {
		if conflict.Type == ConflictMalformedGraceWindow {
			found = true
		}
	}
	if !found {
		t.Error("Expected ConflictMalformedGraceWindow conflict type")
	}
}

func TestValidateExperiments_NoConflicts(t *testing.T) {
	validator := New()

	experiments := []models.Experiment{
		{
			ID: "1", Name: "Morning Pages", StartDate: "2025-01-01", Status: models.StatusActive,
			Entries: []models.Entry{
				{Day: "2025-01-01", Kind: models.EntryCompleted},
				{Day: "2025-01-02", Kind: models.EntryMinimum},
				{Day: "2025-01-03", Kind: models.EntrySkipped},
			},
		},
		{ID: "2", Name: "Cold Showers", StartDate: "2025-02-01", Status: models.StatusPaused},
	}

	result := validator.ValidateExperiments(experiments)

	if result.HasConflicts() {
		t.Errorf("Expected no conflicts, got: %s", result.FormatReport())
	}
}

func TestValidateExperiments_SkipsDeleted(t *testing.T) {
	validator := New()

	deleted := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	experiments := []models.Experiment{
		{ID: "1", Name: "Morning Pages", StartDate: "2025-01-01", Status: models.StatusActive},
		{ID: "2", Name: "Morning Pages", StartDate: "bogus", Status: models.StatusActive, DeletedAt: &deleted}, // Deleted duplicate
		{
			ID: "3", Name: "Cold Showers", StartDate: "2025-01-01", Status: models.StatusActive,
			Entries: []models.Entry{
				{Day: "2025-01-02", Kind: models.EntryCompleted},
				{Day: "2025-01-02", Kind: "bogus", DeletedAt: &deleted}, // Deleted duplicate with bad kind
			},
		},
	}

	result := validator.ValidateExperiments(experiments)

	if result.HasConflicts() {
		t.Errorf("Expected no conflicts (deleted records should be skipped), got: %s", result.FormatReport())
	}
}

func TestValidationResult_FormatReport(t *testing.T) {
	result := ValidationResult{
		Conflicts: []Conflict{
			{
				Type:        ConflictDuplicateEntryDay,
				Description: "experiment \"Morning Pages\" has multiple entries for 2025-01-02",
			},
		},
	}

	report := result.FormatReport()
	if report == "" {
		t.Error("Expected non-empty report")
	}
	if report == "No conflicts detected." {
		t.Error("Expected conflicts in report")
	}
}

func TestValidationResult_FormatReport_NoConflicts(t *testing.T) {
	result := ValidationResult{Conflicts: []Conflict{}}

	report := result.FormatReport()
	if report != "No conflicts detected." {
		t.Errorf("Expected 'No conflicts detected.', got: %s", report)
	}
}
