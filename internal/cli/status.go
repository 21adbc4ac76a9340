package cli

import (
	"fmt"

	"github.com/emmanuelcabrera1/stint/internal/constants"
	"github.com/emmanuelcabrera1/stint/internal/engine"
	"github.com/emmanuelcabrera1/stint/internal/models"
)

type StatusCmd struct {
	Experiment string `arg:"" help:"Experiment ID or name."`
	Day        string `help:"Evaluate as of this date (YYYY-MM-DD, default: today)." default:""`
}

func (c *StatusCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	exp, err := findExperiment(ctx, c.Experiment)
	if err != nil {
		return err
	}

	asOf, err := resolveDay(c.Day)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s, %s difficulty)\n", exp.Name, formatFrequency(exp.Frequency), difficultyLabel(exp.Difficulty))
	fmt.Printf("  Status: %s, started %s\n", exp.Status, exp.StartDate)
	if exp.RestartCount > 0 {
		fmt.Printf("  Restarts: %d\n", exp.RestartCount)
	}

	if exp.Status == models.StatusArchived {
		if exp.ReflectionDue {
			fmt.Println("  Reflection pending: review how this experiment went.")
		}
		return nil
	}

	streak, err := ctx.Engine.CurrentStreak(exp, asOf)
	if err != nil {
		return err
	}
	completed, err := ctx.Engine.DaysCompleted(exp)
	if err != nil {
		return err
	}
	progress, err := ctx.Engine.Progress(exp)
	if err != nil {
		return err
	}
	earned, err := ctx.Engine.EarnedSkipDays(exp, asOf)
	if err != nil {
		return err
	}

	fmt.Printf("  Streak: %d\n", streak)
	fmt.Printf("  Progress: %d/%d days (%.0f%%)\n", completed, targetWithExtensions(exp), progress*100)
	fmt.Printf("  Skip days: %d earned, %d used\n", earned, exp.SkipDaysUsed)

	if exp.Grace != nil && exp.Grace.Active {
		fmt.Printf("  Grace period: until %s\n", exp.Grace.ExpiresAt)
	}

	report, err := ctx.Engine.DetectDisruption(exp, asOf)
	if err != nil {
		return err
	}
	if report.Disrupted {
		fmt.Printf("  ⚠ Disrupted: %d consecutive missed periods since %s\n", report.ConsecutiveMisses, report.StartDay)
		fmt.Println("    Run 'stint recover' to choose a way forward.")
		return nil
	}

	atRisk, err := ctx.Engine.IsAtRisk(exp, asOf)
	if err != nil {
		return err
	}
	if atRisk {
		fmt.Println("  ⚠ At risk: recent check-ins are slipping.")
	}

	rec, err := ctx.Engine.RecommendDifficulty(exp, asOf)
	if err != nil {
		return err
	}
	if rec.Action != engine.AdaptMaintain {
		fmt.Printf("  Suggestion: %s difficulty to %s (%s)\n", rec.Action, difficultyLabel(rec.NewLevel), rec.Reason)
	}

	stats, err := ctx.Engine.WindowStats(exp, asOf, constants.StatsWindowPeriods)
	if err != nil {
		return err
	}
	fmt.Printf("  Last %d periods: %d completed, %d minimum, %d skipped, %d missed\n",
		stats.Periods, stats.Completed, stats.Minimum, stats.Skipped, stats.Missed)

	return nil
}
