package engine

import (
	"errors"
	"testing"

	"github.com/emmanuelcabrera1/stint/internal/models"
)

// dailyExperiment builds an active daily experiment starting at start with
// one entry per consecutive day for each kind given.
func dailyExperiment(start string, kinds ...models.EntryKind) models.Experiment {
	exp := models.Experiment{
		ID:         "exp-test",
		Name:       "Test Experiment",
		Frequency:  models.FrequencyDaily,
		StartDate:  start,
		TargetDays: 30,
		Difficulty: 2,
		Status:     models.StatusActive,
	}
	day, _ := models.ParseDay(start)
	for _, kind := range kinds {
		exp.Entries = append(exp.Entries, models.Entry{
			Day:  models.FormatDay(day),
			Kind: kind,
		})
		day = day.AddDate(0, 0, 1)
	}
	return exp
}

func repeatKind(kind models.EntryKind, n int) []models.EntryKind {
	kinds := make([]models.EntryKind, n)
	for i := range kinds {
		kinds[i] = kind
	}
	return kinds
}

func TestCurrentStreak_TenCompletedDays(t *testing.T) {
	eng := New()
	exp := dailyExperiment("2025-03-01", repeatKind(models.EntryCompleted, 10)...)

	streak, err := eng.CurrentStreak(exp, "2025-03-10")
	if err != nil {
		t.Fatalf("CurrentStreak failed: %v", err)
	}
	if streak != 10 {
		t.Errorf("expected streak 10, got %d", streak)
	}

	earned, err := eng.EarnedSkipDays(exp, "2025-03-10")
	if err != nil {
		t.Fatalf("EarnedSkipDays failed: %v", err)
	}
	if earned != 1 {
		t.Errorf("expected 1 earned skip day, got %d", earned)
	}

	atRisk, err := eng.IsAtRisk(exp, "2025-03-10")
	if err != nil {
		t.Fatalf("IsAtRisk failed: %v", err)
	}
	if atRisk {
		t.Errorf("expected experiment not to be at risk")
	}
}

func TestCurrentStreak_ZeroEntries(t *testing.T) {
	eng := New()
	exp := dailyExperiment("2025-03-01")

	streak, err := eng.CurrentStreak(exp, "2025-03-10")
	if err != nil {
		t.Fatalf("CurrentStreak failed: %v", err)
	}
	if streak != 0 {
		t.Errorf("expected streak 0 for empty log, got %d", streak)
	}
}

func TestCurrentStreak_UnloggedTodayDoesNotBreak(t *testing.T) {
	eng := New()
	exp := dailyExperiment("2025-03-01", repeatKind(models.EntryCompleted, 5)...)

	// asOf is the day after the last entry; today simply has no check-in yet.
	streak, err := eng.CurrentStreak(exp, "2025-03-06")
	if err != nil {
		t.Fatalf("CurrentStreak failed: %v", err)
	}
	if streak != 5 {
		t.Errorf("expected streak 5, got %d", streak)
	}
}

func TestCurrentStreak_MissBreaks(t *testing.T) {
	eng := New()
	exp := dailyExperiment("2025-03-01",
		models.EntryCompleted,
		models.EntryCompleted,
		models.EntryMissed,
		models.EntryCompleted,
		models.EntryCompleted,
	)

	streak, err := eng.CurrentStreak(exp, "2025-03-05")
	if err != nil {
		t.Fatalf("CurrentStreak failed: %v", err)
	}
	if streak != 2 {
		t.Errorf("expected streak 2 after unprotected miss, got %d", streak)
	}
}

func TestCurrentStreak_SkippedPreservesWithoutCounting(t *testing.T) {
	eng := New()
	exp := dailyExperiment("2025-03-01",
		models.EntryCompleted,
		models.EntryCompleted,
		models.EntrySkipped,
		models.EntryCompleted,
	)

	streak, err := eng.CurrentStreak(exp, "2025-03-04")
	if err != nil {
		t.Fatalf("CurrentStreak failed: %v", err)
	}
	// Three completions count; the skipped day bridges but does not add.
	if streak != 3 {
		t.Errorf("expected streak 3, got %d", streak)
	}
}

func TestCurrentStreak_GraceBridgesGap(t *testing.T) {
	eng := New()
	exp := dailyExperiment("2025-03-01", repeatKind(models.EntryCompleted, 5)...)
	// Day 6 is missed but covered by an active grace window.
	exp.Grace = &models.GracePeriod{
		Active:    true,
		StartedAt: "2025-03-06",
		ExpiresAt: "2025-03-13",
	}
	exp.UpsertEntry(models.Entry{Day: "2025-03-07", Kind: models.EntryCompleted})

	before, err := eng.CurrentStreak(exp, "2025-03-05")
	if err != nil {
		t.Fatalf("CurrentStreak before gap failed: %v", err)
	}
	after, err := eng.CurrentStreak(exp, "2025-03-07")
	if err != nil {
		t.Fatalf("CurrentStreak after gap failed: %v", err)
	}

	// Streak after the bridged gap equals the streak before the gap plus the
	// one completion recorded inside the grace window.
	if after != before+1 {
		t.Errorf("expected streak %d after graced gap, got %d", before+1, after)
	}
}

func TestCurrentStreak_FutureEntriesIgnored(t *testing.T) {
	eng := New()
	exp := dailyExperiment("2025-03-01", repeatKind(models.EntryCompleted, 3)...)
	exp.UpsertEntry(models.Entry{Day: "2025-03-20", Kind: models.EntryCompleted})

	streak, err := eng.CurrentStreak(exp, "2025-03-03")
	if err != nil {
		t.Fatalf("CurrentStreak failed: %v", err)
	}
	if streak != 3 {
		t.Errorf("expected future entry to be ignored, got streak %d", streak)
	}
}

func TestCurrentStreak_WeeklyFrequency(t *testing.T) {
	eng := New()
	exp := models.Experiment{
		ID:         "exp-weekly",
		Name:       "Weekly Review",
		Frequency:  models.FrequencyWeekly,
		StartDate:  "2025-03-03",
		TargetDays: 12,
		Difficulty: 1,
		Status:     models.StatusActive,
	}
	// One completion in each of the first three weekly periods.
	exp.UpsertEntry(models.Entry{Day: "2025-03-04", Kind: models.EntryCompleted})
	exp.UpsertEntry(models.Entry{Day: "2025-03-12", Kind: models.EntryCompleted})
	exp.UpsertEntry(models.Entry{Day: "2025-03-18", Kind: models.EntryCompleted})

	streak, err := eng.CurrentStreak(exp, "2025-03-20")
	if err != nil {
		t.Fatalf("CurrentStreak failed: %v", err)
	}
	if streak != 3 {
		t.Errorf("expected weekly streak 3, got %d", streak)
	}
}

func TestCurrentStreak_ArchivedRejected(t *testing.T) {
	eng := New()
	exp := dailyExperiment("2025-03-01", models.EntryCompleted)
	exp.Status = models.StatusArchived

	if _, err := eng.CurrentStreak(exp, "2025-03-01"); !errors.Is(err, ErrArchived) {
		t.Errorf("expected ErrArchived, got %v", err)
	}
}

func TestDaysCompleted_BoundedByLog(t *testing.T) {
	eng := New()
	exp := dailyExperiment("2025-03-01",
		models.EntryCompleted,
		models.EntryMinimum,
		models.EntrySkipped,
		models.EntryMissed,
		models.EntryCompleted,
	)

	completed, err := eng.DaysCompleted(exp)
	if err != nil {
		t.Fatalf("DaysCompleted failed: %v", err)
	}
	if completed != 3 {
		t.Errorf("expected 3 completed days, got %d", completed)
	}
	if completed > len(exp.Entries) {
		t.Errorf("completed count %d exceeds log size %d", completed, len(exp.Entries))
	}
}

func TestProgress_ZeroTarget(t *testing.T) {
	eng := New()
	exp := dailyExperiment("2025-03-01", models.EntryCompleted)
	exp.TargetDays = 0

	progress, err := eng.Progress(exp)
	if err != nil {
		t.Fatalf("Progress failed: %v", err)
	}
	if progress != 1.0 {
		t.Errorf("expected progress 1.0 for zero target, got %v", progress)
	}
}

func TestProgress_CappedAtOne(t *testing.T) {
	eng := New()
	exp := dailyExperiment("2025-03-01", repeatKind(models.EntryCompleted, 5)...)
	exp.TargetDays = 3

	progress, err := eng.Progress(exp)
	if err != nil {
		t.Fatalf("Progress failed: %v", err)
	}
	if progress != 1.0 {
		t.Errorf("expected progress capped at 1.0, got %v", progress)
	}
}

func TestProgress_ExtendedTarget(t *testing.T) {
	eng := New()
	exp := dailyExperiment("2025-03-01", repeatKind(models.EntryCompleted, 5)...)
	exp.TargetDays = 10
	exp.ExtensionDays = 10

	progress, err := eng.Progress(exp)
	if err != nil {
		t.Fatalf("Progress failed: %v", err)
	}
	if progress != 0.25 {
		t.Errorf("expected progress 0.25 against extended target, got %v", progress)
	}
}

func TestSkipDay_RetroactiveApplication(t *testing.T) {
	eng := New()
	exp := dailyExperiment("2025-03-01", repeatKind(models.EntryCompleted, 14)...)
	// Day 15 was missed; grace opened the same day.
	exp.Grace = &models.GracePeriod{
		Active:    true,
		StartedAt: "2025-03-15",
		ExpiresAt: "2025-03-22",
	}

	ok, err := eng.CanUseSkipDay(exp, "2025-03-16")
	if err != nil {
		t.Fatalf("CanUseSkipDay failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected skip day to be available")
	}

	updated, err := eng.UseSkipDay(exp, "2025-03-16")
	if err != nil {
		t.Fatalf("UseSkipDay failed: %v", err)
	}

	entry, found := updated.EntryFor("2025-03-15")
	if !found {
		t.Fatalf("expected a skipped entry recorded for the missed day")
	}
	if entry.Kind != models.EntrySkipped {
		t.Errorf("expected skipped entry, got %s", entry.Kind)
	}
	if updated.SkipDaysUsed != 1 {
		t.Errorf("expected 1 skip day used, got %d", updated.SkipDaysUsed)
	}
}

func TestSkipDay_UnavailableWithoutGrace(t *testing.T) {
	eng := New()
	exp := dailyExperiment("2025-03-01", repeatKind(models.EntryCompleted, 14)...)

	ok, err := eng.CanUseSkipDay(exp, "2025-03-16")
	if err != nil {
		t.Fatalf("CanUseSkipDay failed: %v", err)
	}
	if ok {
		t.Errorf("expected skip day to be unavailable without an active grace window")
	}

	if _, err := eng.UseSkipDay(exp, "2025-03-16"); !errors.Is(err, ErrSkipUnavailable) {
		t.Errorf("expected ErrSkipUnavailable, got %v", err)
	}
}

func TestSkipDay_ConservationUnderConsumption(t *testing.T) {
	eng := New()
	exp := dailyExperiment("2025-03-01", repeatKind(models.EntryCompleted, 14)...)
	exp.Grace = &models.GracePeriod{
		Active:    true,
		StartedAt: "2025-03-15",
		ExpiresAt: "2025-03-22",
	}

	earnedBefore, err := eng.EarnedSkipDays(exp, "2025-03-16")
	if err != nil {
		t.Fatalf("EarnedSkipDays failed: %v", err)
	}

	updated, err := eng.UseSkipDay(exp, "2025-03-16")
	if err != nil {
		t.Fatalf("UseSkipDay failed: %v", err)
	}

	earnedAfter, err := eng.EarnedSkipDays(updated, "2025-03-16")
	if err != nil {
		t.Fatalf("EarnedSkipDays after use failed: %v", err)
	}

	// Earned plus consumed never decreases: applying the skip moved one unit
	// from the earned budget to the used counter.
	if earnedBefore+exp.SkipDaysUsed != earnedAfter+updated.SkipDaysUsed {
		t.Errorf("skip-day budget not conserved: before %d+%d, after %d+%d",
			earnedBefore, exp.SkipDaysUsed, earnedAfter, updated.SkipDaysUsed)
	}
}
