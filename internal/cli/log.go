package cli

import (
	"fmt"
	"sort"
)

type LogCmd struct {
	Experiment string `arg:"" help:"Experiment ID or name."`
	Days       int    `help:"Show only the last N logged days." default:"0"`
	Notes      bool   `help:"Show notes alongside entries."`
}

func (c *LogCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	exp, err := findExperiment(ctx, c.Experiment)
	if err != nil {
		return err
	}

	entries := exp.Entries
	sort.Slice(entries, func(i, j int) bool { return entries[i].Day < entries[j].Day })

	if c.Days > 0 && len(entries) > c.Days {
		entries = entries[len(entries)-c.Days:]
	}

	if len(entries) == 0 {
		fmt.Printf("No check-ins recorded for %s yet.\n", exp.Name)
		return nil
	}

	fmt.Printf("Check-in log for %s:\n", exp.Name)
	for _, entry := range entries {
		if entry.DeletedAt != nil {
			continue
		}
		fmt.Printf("  %s %s  %s\n", kindGlyph(entry.Kind), entry.Day, entry.Kind)
		if c.Notes && entry.Note != "" {
			fmt.Printf("      %s\n", entry.Note)
		}
	}

	if len(exp.ArchivedNotes) > 0 && c.Notes {
		fmt.Printf("\nNotes preserved from before restart:\n")
		for _, entry := range exp.ArchivedNotes {
			fmt.Printf("  %s: %s\n", entry.Day, entry.Note)
		}
	}

	return nil
}
