package engine

import (
	"testing"

	"github.com/emmanuelcabrera1/stint/internal/models"
)

func TestRecommendDifficulty_DowngradeOnMisses(t *testing.T) {
	eng := New()
	exp := dailyExperiment("2025-03-01",
		models.EntryCompleted,
		models.EntryMissed,
		models.EntryCompleted,
		models.EntryMissed,
		models.EntryCompleted,
		models.EntryMissed,
		models.EntryCompleted,
	)
	exp.Difficulty = 2

	rec, err := eng.RecommendDifficulty(exp, "2025-03-07")
	if err != nil {
		t.Fatalf("RecommendDifficulty failed: %v", err)
	}

	if rec.Action != AdaptDowngrade {
		t.Errorf("expected downgrade for 3 misses, got %s", rec.Action)
	}
	if rec.NewLevel != 1 {
		t.Errorf("expected new level 1, got %d", rec.NewLevel)
	}
}

func TestRecommendDifficulty_DowngradeOnMinimumGrind(t *testing.T) {
	eng := New()
	// 5 minimum, 1 completed, 1 skipped: minimum >= 4 and completed <= 1.
	exp := dailyExperiment("2025-03-01",
		models.EntryMinimum,
		models.EntryMinimum,
		models.EntryMinimum,
		models.EntryCompleted,
		models.EntryMinimum,
		models.EntrySkipped,
		models.EntryMinimum,
	)
	exp.Difficulty = 3

	rec, err := eng.RecommendDifficulty(exp, "2025-03-07")
	if err != nil {
		t.Fatalf("RecommendDifficulty failed: %v", err)
	}

	if rec.Action != AdaptDowngrade {
		t.Errorf("expected downgrade for minimum grind, got %s", rec.Action)
	}
	if rec.NewLevel != 2 {
		t.Errorf("expected new level 2, got %d", rec.NewLevel)
	}
}

func TestRecommendDifficulty_MinimumGrindNeedsLowCompleted(t *testing.T) {
	eng := New()
	// 5 minimum but 2 completed: completed <= 1 does not hold, and misses are
	// zero, so neither downgrade branch fires.
	exp := dailyExperiment("2025-03-01",
		models.EntryMinimum,
		models.EntryMinimum,
		models.EntryCompleted,
		models.EntryMinimum,
		models.EntryMinimum,
		models.EntryCompleted,
		models.EntryMinimum,
	)
	exp.Difficulty = 2

	rec, err := eng.RecommendDifficulty(exp, "2025-03-07")
	if err != nil {
		t.Fatalf("RecommendDifficulty failed: %v", err)
	}

	if rec.Action != AdaptMaintain {
		t.Errorf("expected maintain with 5 minimum but 2 completed, got %s", rec.Action)
	}
	if rec.NewLevel != 2 {
		t.Errorf("expected level unchanged at 2, got %d", rec.NewLevel)
	}
}

func TestRecommendDifficulty_Upgrade(t *testing.T) {
	eng := New()
	exp := dailyExperiment("2025-03-01", repeatKind(models.EntryCompleted, 7)...)
	exp.Difficulty = 2

	rec, err := eng.RecommendDifficulty(exp, "2025-03-07")
	if err != nil {
		t.Fatalf("RecommendDifficulty failed: %v", err)
	}

	if rec.Action != AdaptUpgrade {
		t.Errorf("expected upgrade for a clean week, got %s", rec.Action)
	}
	if rec.NewLevel != 3 {
		t.Errorf("expected new level 3, got %d", rec.NewLevel)
	}
}

func TestRecommendDifficulty_NoUpgradeAtMaxLevel(t *testing.T) {
	eng := New()
	exp := dailyExperiment("2025-03-01", repeatKind(models.EntryCompleted, 7)...)
	exp.Difficulty = models.MaxDifficulty

	rec, err := eng.RecommendDifficulty(exp, "2025-03-07")
	if err != nil {
		t.Fatalf("RecommendDifficulty failed: %v", err)
	}

	if rec.Action != AdaptMaintain {
		t.Errorf("expected maintain at max level, got %s", rec.Action)
	}
	if rec.NewLevel != models.MaxDifficulty {
		t.Errorf("expected level to stay at %d, got %d", models.MaxDifficulty, rec.NewLevel)
	}
}

func TestRecommendDifficulty_DowngradeFloorsAtMinLevel(t *testing.T) {
	eng := New()
	exp := dailyExperiment("2025-03-01", repeatKind(models.EntryMissed, 7)...)
	exp.Difficulty = models.MinDifficulty

	rec, err := eng.RecommendDifficulty(exp, "2025-03-07")
	if err != nil {
		t.Fatalf("RecommendDifficulty failed: %v", err)
	}

	if rec.Action != AdaptDowngrade {
		t.Errorf("expected downgrade, got %s", rec.Action)
	}
	if rec.NewLevel != models.MinDifficulty {
		t.Errorf("expected level floored at %d, got %d", models.MinDifficulty, rec.NewLevel)
	}
}

func TestRecommendDifficulty_EmptyLogMaintains(t *testing.T) {
	eng := New()
	exp := dailyExperiment("2025-03-01")
	exp.Difficulty = 2

	rec, err := eng.RecommendDifficulty(exp, "2025-03-10")
	if err != nil {
		t.Fatalf("RecommendDifficulty failed: %v", err)
	}

	if rec.Action != AdaptMaintain {
		t.Errorf("expected maintain for empty log, got %s", rec.Action)
	}
}
