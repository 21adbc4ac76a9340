package cli

import (
	"fmt"

	"github.com/emmanuelcabrera1/stint/internal/validation"
)

type ValidateCmd struct {
	Deleted bool `help:"Include soft-deleted experiments."`
}

func (cmd *ValidateCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	defer ctx.Store.Close()

	experiments, err := ctx.Store.GetAllExperiments()
	if cmd.Deleted {
		experiments, err = ctx.Store.GetAllExperimentsIncludingDeleted()
	}
	if err != nil {
		return fmt.Errorf("failed to load experiments: %w", err)
	}

	fmt.Println("Validating experiments...")

	validator := validation.New()
	result := validator.ValidateExperiments(experiments)

	fmt.Println()
	fmt.Println(result.FormatReport())

	// Conflicts are reported, not treated as a command failure
	return nil
}
