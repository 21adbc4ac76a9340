package cli

import (
	"errors"
	"fmt"

	"github.com/emmanuelcabrera1/stint/internal/engine"
)

type SkipCmd struct {
	Experiment string `arg:"" help:"Experiment ID or name."`
	Day        string `help:"Evaluate as of this date (YYYY-MM-DD, default: today)." default:""`
}

func (c *SkipCmd) Run(ctx *Context) error {
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

	updated, err := ctx.Engine.UseSkipDay(exp, asOf)
	if err != nil {
		if errors.Is(err, engine.ErrSkipUnavailable) {
			earned, earnErr := ctx.Engine.EarnedSkipDays(exp, asOf)
			if earnErr == nil && earned == 0 {
				return fmt.Errorf("no skip days earned yet: one is earned per 7 streak periods")
			}
			return fmt.Errorf("no skip day can be applied here: the previous period is already logged")
		}
		return err
	}

	if err := ctx.Store.UpdateExperiment(updated); err != nil {
		return err
	}

	remaining, err := ctx.Engine.EarnedSkipDays(updated, asOf)
	if err != nil {
		return err
	}

	fmt.Printf("» Skip day applied to %s\n", updated.Name)
	fmt.Printf("  Skip days remaining: %d\n", remaining)
	return nil
}
