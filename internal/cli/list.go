package cli

import (
	"fmt"

	"github.com/emmanuelcabrera1/stint/internal/models"
)

type ListCmd struct {
	All     bool `help:"Include paused and archived experiments."`
	Deleted bool `help:"Include soft-deleted experiments."`
}

func (c *ListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	var experiments []models.Experiment
	var err error
	if c.Deleted {
		experiments, err = ctx.Store.GetAllExperimentsIncludingDeleted()
	} else {
		experiments, err = ctx.Store.GetAllExperiments()
	}
	if err != nil {
		return err
	}

	if len(experiments) == 0 {
		fmt.Println("No experiments found")
		return nil
	}

	today, err := resolveDay("today")
	if err != nil {
		return err
	}

	fmt.Println("Experiments:")
	for _, exp := range experiments {
		if !c.All && !c.Deleted && exp.Status != models.StatusActive {
			continue
		}

		status := string(exp.Status)
		if exp.DeletedAt != nil {
			status = "deleted"
		}

		line := fmt.Sprintf("  [%s] %s - %s, %s", status, exp.Name, formatFrequency(exp.Frequency), difficultyLabel(exp.Difficulty))

		if exp.Status == models.StatusActive && exp.DeletedAt == nil {
			streak, err := ctx.Engine.CurrentStreak(exp, today)
			if err == nil {
				line += fmt.Sprintf(", streak %d", streak)
			}
		}

		fmt.Println(line)
		fmt.Printf("      ID: %s, started %s\n", exp.ID, exp.StartDate)
	}

	return nil
}
