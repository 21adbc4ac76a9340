package cli

import (
	"fmt"
	"time"

	"github.com/emmanuelcabrera1/stint/internal/models"
)

type CheckinCmd struct {
	Experiment string `arg:"" help:"Experiment ID or name."`
	Day        string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
	Minimum    bool   `short:"m" help:"Record a minimum viable check-in instead of a full completion."`
	Missed     bool   `help:"Record the period as missed."`
	Note       string `short:"n" help:"Optional note." default:""`
}

func (c *CheckinCmd) Validate() error {
	if c.Minimum && c.Missed {
		return fmt.Errorf("--minimum and --missed are mutually exclusive")
	}
	return nil
}

func (c *CheckinCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	exp, err := findExperiment(ctx, c.Experiment)
	if err != nil {
		return err
	}

	if exp.Status == models.StatusArchived {
		return fmt.Errorf("experiment %q is archived", exp.Name)
	}

	day, err := resolveDay(c.Day)
	if err != nil {
		return err
	}

	kind := models.EntryCompleted
	if c.Minimum {
		kind = models.EntryMinimum
	}
	if c.Missed {
		kind = models.EntryMissed
	}

	entry := models.Entry{
		Day:       day,
		Kind:      kind,
		Note:      c.Note,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := ctx.Store.SaveEntry(exp.ID, entry); err != nil {
		return err
	}

	fmt.Printf("%s %s: %s for %s\n", kindGlyph(kind), exp.Name, kind, day)

	// Show the updated streak so a check-in gives immediate feedback
	updated, err := ctx.Store.GetExperiment(exp.ID)
	if err != nil {
		return nil
	}
	today, err := resolveDay("today")
	if err != nil {
		return nil
	}
	if streak, err := ctx.Engine.CurrentStreak(updated, today); err == nil {
		fmt.Printf("  Current streak: %d\n", streak)
	}
	return nil
}
