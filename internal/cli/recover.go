package cli

import (
	"errors"
	"fmt"

	"github.com/emmanuelcabrera1/stint/internal/engine"
)

type RecoverCmd struct {
	Pause     RecoverPauseCmd     `cmd:"" help:"Pause the experiment with a 7-day grace period."`
	Extend    RecoverExtendCmd    `cmd:"" help:"Extend the target by the missed periods."`
	ScaleDown RecoverScaleDownCmd `cmd:"" name:"scale-down" help:"Drop difficulty to the gentlest level."`
	Restart   RecoverRestartCmd   `cmd:"" help:"Restart the experiment from today, preserving notes."`
	EndEarly  RecoverEndEarlyCmd  `cmd:"" name:"end-early" help:"End the experiment and queue a reflection."`
}

func applyRecovery(ctx *Context, ref, day string, action engine.RecoveryAction) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	exp, err := findExperiment(ctx, ref)
	if err != nil {
		return err
	}

	asOf, err := resolveDay(day)
	if err != nil {
		return err
	}

	updated, err := ctx.Engine.ApplyRecovery(exp, action, asOf)
	if err != nil {
		if errors.Is(err, engine.ErrNotDisrupted) {
			return fmt.Errorf("%s is not disrupted: recovery requires 3 or more consecutive missed periods", exp.Name)
		}
		return err
	}

	if err := ctx.Store.UpdateExperiment(updated); err != nil {
		return err
	}

	switch action {
	case engine.RecoveryPause:
		fmt.Printf("✓ Paused %s with a grace period until %s\n", updated.Name, updated.Grace.ExpiresAt)
		fmt.Println("  Run 'stint resume' when you're ready to continue.")
	case engine.RecoveryExtend:
		fmt.Printf("✓ Extended %s: target is now %d days\n", updated.Name, targetWithExtensions(updated))
	case engine.RecoveryScaleDown:
		fmt.Printf("✓ Scaled %s down to %s difficulty\n", updated.Name, difficultyLabel(updated.Difficulty))
	case engine.RecoveryRestart:
		fmt.Printf("✓ Restarted %s from %s (restart #%d)\n", updated.Name, updated.StartDate, updated.RestartCount)
		if len(updated.ArchivedNotes) > 0 {
			fmt.Printf("  %d note(s) preserved from the previous attempt.\n", len(updated.ArchivedNotes))
		}
	case engine.RecoveryEndEarly:
		fmt.Printf("✓ Ended %s early\n", updated.Name)
		fmt.Println("  A reflection is pending: what did you learn?")
	}

	return nil
}

type RecoverPauseCmd struct {
	Experiment string `arg:"" help:"Experiment ID or name."`
	Day        string `help:"Evaluate as of this date (YYYY-MM-DD, default: today)." default:""`
}

func (c *RecoverPauseCmd) Run(ctx *Context) error {
	return applyRecovery(ctx, c.Experiment, c.Day, engine.RecoveryPause)
}

type RecoverExtendCmd struct {
	Experiment string `arg:"" help:"Experiment ID or name."`
	Day        string `help:"Evaluate as of this date (YYYY-MM-DD, default: today)." default:""`
}

func (c *RecoverExtendCmd) Run(ctx *Context) error {
	return applyRecovery(ctx, c.Experiment, c.Day, engine.RecoveryExtend)
}

type RecoverScaleDownCmd struct {
	Experiment string `arg:"" help:"Experiment ID or name."`
	Day        string `help:"Evaluate as of this date (YYYY-MM-DD, default: today)." default:""`
}

func (c *RecoverScaleDownCmd) Run(ctx *Context) error {
	return applyRecovery(ctx, c.Experiment, c.Day, engine.RecoveryScaleDown)
}

type RecoverRestartCmd struct {
	Experiment string `arg:"" help:"Experiment ID or name."`
	Day        string `help:"Evaluate as of this date (YYYY-MM-DD, default: today)." default:""`
}

func (c *RecoverRestartCmd) Run(ctx *Context) error {
	return applyRecovery(ctx, c.Experiment, c.Day, engine.RecoveryRestart)
}

type RecoverEndEarlyCmd struct {
	Experiment string `arg:"" help:"Experiment ID or name."`
	Day        string `help:"Evaluate as of this date (YYYY-MM-DD, default: today)." default:""`
}

func (c *RecoverEndEarlyCmd) Run(ctx *Context) error {
	return applyRecovery(ctx, c.Experiment, c.Day, engine.RecoveryEndEarly)
}
