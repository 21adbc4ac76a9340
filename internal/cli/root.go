package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/emmanuelcabrera1/stint/internal/backup"
	"github.com/emmanuelcabrera1/stint/internal/engine"
	"github.com/emmanuelcabrera1/stint/internal/models"
	"github.com/emmanuelcabrera1/stint/internal/storage"
)

type Context struct {
	Store  storage.Provider
	Engine *engine.Engine
}

// PerformAutomaticBackup backs up the database if auto-backup is enabled.
// Failures are reported as warnings and never block the command.
func (ctx *Context) PerformAutomaticBackup() {
	settings, err := ctx.Store.GetSettings()
	if err != nil || !settings.AutoBackup {
		return
	}

	if _, ok := ctx.Store.(*storage.SQLiteStore); !ok {
		return
	}

	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: automatic backup failed: %v\n", err)
	}
}

// resolveDay turns a user-supplied day reference into YYYY-MM-DD. An empty
// string and "today" mean the current day; "yesterday" is also accepted.
func resolveDay(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return time.Now().Format("2006-01-02"), nil
	case "yesterday":
		return time.Now().AddDate(0, 0, -1).Format("2006-01-02"), nil
	}

	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", s)
	}
	return s, nil
}

// findExperiment resolves a reference that may be an ID or a name.
// Name matching is case-insensitive.
func findExperiment(ctx *Context, ref string) (models.Experiment, error) {
	if exp, err := ctx.Store.GetExperiment(ref); err == nil {
		return exp, nil
	}

	experiments, err := ctx.Store.GetAllExperiments()
	if err != nil {
		return models.Experiment{}, err
	}

	wanted := strings.ToLower(strings.TrimSpace(ref))
	var matches []models.Experiment
	for _, exp := range experiments {
		if strings.ToLower(exp.Name) == wanted {
			matches = append(matches, exp)
		}
	}

	switch len(matches) {
	case 0:
		return models.Experiment{}, fmt.Errorf("no experiment found matching %q", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Experiment{}, fmt.Errorf("multiple experiments named %q, use the ID instead", ref)
	}
}

func difficultyLabel(level int) string {
	switch level {
	case 1:
		return "gentle"
	case 2:
		return "standard"
	case 3:
		return "ambitious"
	default:
		return fmt.Sprintf("level %d", level)
	}
}

func formatFrequency(f models.Frequency) string {
	switch f {
	case models.FrequencyDaily:
		return "daily"
	case models.FrequencyWeekly:
		return "weekly"
	default:
		return string(f)
	}
}

func kindGlyph(kind models.EntryKind) string {
	switch kind {
	case models.EntryCompleted:
		return "✓"
	case models.EntryMinimum:
		return "~"
	case models.EntrySkipped:
		return "»"
	case models.EntryMissed:
		return "✗"
	default:
		return "?"
	}
}

// targetWithExtensions is the effective target including recovery extensions.
func targetWithExtensions(exp models.Experiment) int {
	return exp.TargetDays + exp.ExtensionDays
}
