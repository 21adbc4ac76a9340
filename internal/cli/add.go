package cli

import (
	"fmt"
	"time"

	"github.com/emmanuelcabrera1/stint/internal/models"
	"github.com/google/uuid"
)

type AddCmd struct {
	Name       string `arg:"" help:"Experiment name."`
	Frequency  string `short:"f" help:"Check-in frequency (daily|weekly)." default:""`
	Target     int    `short:"t" help:"Target number of completed days." default:"-1"`
	Difficulty int    `short:"d" help:"Difficulty level (1-3)." default:"2"`
	Start      string `short:"s" help:"Start date (YYYY-MM-DD, default: today)." default:""`
}

func (c *AddCmd) Validate() error {
	if c.Difficulty < models.MinDifficulty || c.Difficulty > models.MaxDifficulty {
		return fmt.Errorf("difficulty must be between %d and %d", models.MinDifficulty, models.MaxDifficulty)
	}
	return nil
}

func (c *AddCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}

	frequency := models.Frequency(c.Frequency)
	if c.Frequency == "" {
		frequency = models.Frequency(settings.DefaultFrequency)
	}
	switch frequency {
	case models.FrequencyDaily, models.FrequencyWeekly:
	default:
		return fmt.Errorf("invalid frequency: %s (expected daily or weekly)", c.Frequency)
	}

	target := c.Target
	if target < 0 {
		target = settings.DefaultTargetDays
	}

	start, err := resolveDay(c.Start)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	exp := models.Experiment{
		ID:         uuid.New().String(),
		Name:       c.Name,
		Frequency:  frequency,
		StartDate:  start,
		TargetDays: target,
		Difficulty: c.Difficulty,
		Status:     models.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := ctx.Store.AddExperiment(exp); err != nil {
		return err
	}

	fmt.Printf("Added experiment: %s (ID: %s)\n", c.Name, exp.ID)
	fmt.Printf("  %s, target %d days, %s difficulty, starting %s\n",
		formatFrequency(frequency), target, difficultyLabel(c.Difficulty), start)
	return nil
}
