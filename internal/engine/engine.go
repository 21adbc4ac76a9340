package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/emmanuelcabrera1/stint/internal/models"
)

var (
	// ErrArchived signals a caller contract violation: statistics and
	// recovery are undefined for archived experiments, distinct from a
	// correctly computed zero.
	ErrArchived = errors.New("experiment is archived")

	// ErrNotDisrupted signals a recovery action requested without a detected
	// disruption, which would corrupt the skip-day/difficulty invariants.
	ErrNotDisrupted = errors.New("experiment is not disrupted")

	ErrSkipUnavailable = errors.New("no skip day can be applied")
	ErrNotPaused       = errors.New("experiment is not paused")
)

// Engine computes engagement metrics for an experiment. Every method is a
// pure function of (experiment snapshot, asOf day): the engine never reads
// the system clock or touches storage.
type Engine struct{}

func New() *Engine {
	return &Engine{}
}

// periodLength returns the length of one qualifying period in days.
func periodLength(freq models.Frequency) int {
	if freq == models.FrequencyWeekly {
		return 7
	}
	return 1
}

// periodState classifies one period of an experiment's log.
type periodState int

const (
	periodAbsent    periodState = iota // no entry recorded
	periodCompleted                    // completed or minimum entry
	periodSkipped                      // skip-day entry
	periodMissed                       // explicit missed entry
)

// periodWalk precomputes the per-period classification of an experiment's
// entry log up to asOf. Periods are consecutive buckets of periodLength days
// anchored at the experiment's start date; entries after asOf are ignored.
type periodWalk struct {
	start   time.Time
	length  int
	last    int // index of the period containing asOf
	states  map[int]periodState
	entries int // non-deleted entries considered
}

func newPeriodWalk(exp models.Experiment, asOf string) (*periodWalk, error) {
	asOfDay, err := models.ParseDay(asOf)
	if err != nil {
		return nil, err
	}
	start, err := models.ParseDay(exp.StartDate)
	if err != nil {
		return nil, fmt.Errorf("experiment start date: %w", err)
	}

	length := periodLength(exp.Frequency)
	w := &periodWalk{
		start:  start,
		length: length,
		last:   daysBetween(start, asOfDay) / length,
		states: make(map[int]periodState),
	}

	for _, entry := range exp.Entries {
		if entry.DeletedAt != nil {
			continue
		}
		day, err := models.ParseDay(entry.Day)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", entry.Day, err)
		}
		if day.After(asOfDay) || day.Before(start) {
			continue
		}
		w.entries++

		idx := daysBetween(start, day) / length
		state := periodMissed
		switch entry.Kind {
		case models.EntryCompleted, models.EntryMinimum:
			state = periodCompleted
		case models.EntrySkipped:
			state = periodSkipped
		}
		// A weekly period holds several days; keep the best outcome.
		if current, ok := w.states[idx]; !ok || better(state, current) {
			w.states[idx] = state
		}
	}

	return w, nil
}

// better reports whether a beats b when several entries land in one period.
func better(a, b periodState) bool {
	rank := map[periodState]int{
		periodCompleted: 3,
		periodSkipped:   2,
		periodMissed:    1,
		periodAbsent:    0,
	}
	return rank[a] > rank[b]
}

func (w *periodWalk) state(idx int) periodState {
	if s, ok := w.states[idx]; ok {
		return s
	}
	return periodAbsent
}

// day returns the first day of a period as a canonical day string.
func (w *periodWalk) day(idx int) string {
	return models.FormatDay(w.start.AddDate(0, 0, idx*w.length))
}

// graced reports whether a period is bridged by the experiment's grace
// window. Coverage is by the window's recorded dates, so a streak computed
// after the window closed still sees the bridge.
func graced(exp models.Experiment, periodDay string) bool {
	g := exp.Grace
	if g == nil || !g.Active {
		return false
	}
	return periodDay >= g.StartedAt && periodDay <= g.ExpiresAt
}

// graceExpired reports whether the grace window has lapsed as of a day.
func graceExpired(exp models.Experiment, asOf string) bool {
	g := exp.Grace
	if g == nil || !g.Active {
		return true
	}
	return asOf > g.ExpiresAt
}

// daysBetween returns whole calendar days from a to b, ignoring any time
// component.
func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func guardComputable(exp models.Experiment) error {
	if exp.Status == models.StatusArchived {
		return ErrArchived
	}
	return nil
}
