package cli

import (
	"fmt"

	"github.com/emmanuelcabrera1/stint/internal/engine"
)

type AdaptCmd struct {
	Experiment string `arg:"" help:"Experiment ID or name."`
	Apply      bool   `help:"Apply the recommended difficulty change."`
	Day        string `help:"Evaluate as of this date (YYYY-MM-DD, default: today)." default:""`
}

func (c *AdaptCmd) Run(ctx *Context) error {
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

	rec, err := ctx.Engine.RecommendDifficulty(exp, asOf)
	if err != nil {
		return err
	}

	switch rec.Action {
	case engine.AdaptMaintain:
		fmt.Printf("%s: keep %s difficulty (%s)\n", exp.Name, difficultyLabel(rec.NewLevel), rec.Reason)
		return nil
	default:
		fmt.Printf("%s: %s to %s difficulty (%s)\n", exp.Name, rec.Action, difficultyLabel(rec.NewLevel), rec.Reason)
	}

	if !c.Apply {
		fmt.Println("Run again with --apply to make the change.")
		return nil
	}

	exp.Difficulty = rec.NewLevel
	if err := ctx.Store.UpdateExperiment(exp); err != nil {
		return err
	}

	fmt.Printf("✓ Difficulty set to %s\n", difficultyLabel(rec.NewLevel))
	return nil
}
