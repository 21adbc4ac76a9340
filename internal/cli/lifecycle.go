package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/emmanuelcabrera1/stint/internal/engine"
)

type ResumeCmd struct {
	Experiment string `arg:"" help:"Experiment ID or name."`
}

func (c *ResumeCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	exp, err := findExperiment(ctx, c.Experiment)
	if err != nil {
		return err
	}

	updated, err := ctx.Engine.Resume(exp)
	if err != nil {
		if errors.Is(err, engine.ErrNotPaused) {
			return fmt.Errorf("%s is not paused", exp.Name)
		}
		return err
	}

	if err := ctx.Store.UpdateExperiment(updated); err != nil {
		return err
	}

	fmt.Printf("✓ Resumed %s\n", updated.Name)
	return nil
}

type ArchiveCmd struct {
	Experiment string `arg:"" help:"Experiment ID or name."`
}

func (c *ArchiveCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	exp, err := findExperiment(ctx, c.Experiment)
	if err != nil {
		return err
	}

	updated, err := ctx.Engine.Archive(exp, time.Now().UTC())
	if err != nil {
		if errors.Is(err, engine.ErrArchived) {
			return fmt.Errorf("%s is already archived", exp.Name)
		}
		return err
	}

	if err := ctx.Store.UpdateExperiment(updated); err != nil {
		return err
	}

	fmt.Printf("✓ Archived %s\n", updated.Name)
	return nil
}

type DeleteCmd struct {
	Experiment string `arg:"" help:"Experiment ID or name."`
}

func (c *DeleteCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	exp, err := findExperiment(ctx, c.Experiment)
	if err != nil {
		return err
	}

	if err := ctx.Store.DeleteExperiment(exp.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted experiment: %s\n", exp.Name)
	fmt.Println("(This is a soft delete. Use 'stint restore' to undo)")
	return nil
}

type RestoreCmd struct {
	Experiment string `arg:"" help:"Experiment ID."`
}

func (c *RestoreCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if err := ctx.Store.RestoreExperiment(c.Experiment); err != nil {
		return err
	}

	fmt.Printf("Restored experiment: %s\n", c.Experiment)
	return nil
}
