package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/emmanuelcabrera1/stint/internal/cli"
	"github.com/emmanuelcabrera1/stint/internal/engine"
	"github.com/emmanuelcabrera1/stint/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" default:"~/.config/stint/stint.db"`

	Init     cli.InitCmd     `cmd:"" help:"Initialize stint storage."`
	Tui      cli.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Add      cli.AddCmd      `cmd:"" help:"Start a new experiment."`
	List     cli.ListCmd     `cmd:"" help:"List experiments."`
	Checkin  cli.CheckinCmd  `cmd:"" help:"Record a check-in for a day."`
	Log      cli.LogCmd      `cmd:"" help:"Show an experiment's check-in log."`
	Status   cli.StatusCmd   `cmd:"" help:"Show streak, progress, and insights."`
	Skip     cli.SkipCmd     `cmd:"" help:"Spend an earned skip day."`
	Adapt    cli.AdaptCmd    `cmd:"" help:"Review or apply a difficulty recommendation."`
	Recover  cli.RecoverCmd  `cmd:"" help:"Recover a disrupted experiment."`
	Resume   cli.ResumeCmd   `cmd:"" help:"Resume a paused experiment."`
	Archive  cli.ArchiveCmd  `cmd:"" help:"Archive an experiment."`
	Delete   cli.DeleteCmd   `cmd:"" help:"Delete an experiment (soft delete)."`
	Restore  cli.RestoreCmd  `cmd:"" help:"Restore a deleted experiment."`
	Backup   cli.BackupCmd   `cmd:"" help:"Manage database backups."`
	Doctor   cli.DoctorCmd   `cmd:"" help:"Run health checks."`
	Validate cli.ValidateCmd `cmd:"" help:"Check data integrity."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("stint"),
		kong.Description("Time-boxed habit experiments with streaks, grace, and recovery"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	// Determine storage type based on extension
	var store storage.Provider
	if strings.HasSuffix(CLI.Config, ".json") {
		store = storage.NewJSONStore(CLI.Config)
	} else {
		store = storage.NewSQLiteStore(CLI.Config)
	}

	appCtx := &cli.Context{
		Store:  store,
		Engine: engine.New(),
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
