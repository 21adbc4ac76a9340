package engine

import (
	"github.com/emmanuelcabrera1/stint/internal/constants"
	"github.com/emmanuelcabrera1/stint/internal/models"
)

// Stats holds per-kind counts over a trailing window of periods. A period
// with no entry counts as missed, matching the entry-kind definition of a
// miss as "no action taken, explicit or inferred by absence".
type Stats struct {
	Completed int
	Minimum   int
	Skipped   int
	Missed    int
	Periods   int
}

// DisruptionReport describes a run of consecutive missed periods ending at
// the inspection day.
type DisruptionReport struct {
	Disrupted         bool
	ConsecutiveMisses int
	StartDay          string // first day of the earliest missed period in the run
}

// WindowStats aggregates the trailing window periods ending at asOf. The
// window is clipped to the experiment's start date, and an empty log yields
// zero counts rather than a wall of inferred misses.
func (e *Engine) WindowStats(exp models.Experiment, asOf string, window int) (Stats, error) {
	if err := guardComputable(exp); err != nil {
		return Stats{}, err
	}
	if window <= 0 {
		window = constants.StatsWindowPeriods
	}

	w, err := newPeriodWalk(exp, asOf)
	if err != nil {
		return Stats{}, err
	}
	if w.entries == 0 {
		return Stats{}, nil
	}

	stats := Stats{}
	for idx := w.last; idx > w.last-window && idx >= 0; idx-- {
		stats.Periods++
		switch w.state(idx) {
		case periodCompleted:
			// The walk collapses completed and minimum into one rank for
			// streak purposes; recount the raw kinds here.
			if hasKind(exp, w, idx, models.EntryCompleted) {
				stats.Completed++
			} else {
				stats.Minimum++
			}
		case periodSkipped:
			stats.Skipped++
		default:
			stats.Missed++
		}
	}

	return stats, nil
}

// hasKind reports whether any non-deleted entry of the given kind falls in
// the period.
func hasKind(exp models.Experiment, w *periodWalk, idx int, kind models.EntryKind) bool {
	lo := w.day(idx)
	hi := models.FormatDay(w.start.AddDate(0, 0, (idx+1)*w.length - 1))
	for _, entry := range exp.Entries {
		if entry.DeletedAt != nil || entry.Kind != kind {
			continue
		}
		if entry.Day >= lo && entry.Day <= hi {
			return true
		}
	}
	return false
}

// IsAtRisk is an early-warning heuristic over the most recent seven periods:
// at risk when minimum entries reach four or misses reach two. Thresholds
// are inclusive.
func (e *Engine) IsAtRisk(exp models.Experiment, asOf string) (bool, error) {
	stats, err := e.WindowStats(exp, asOf, constants.AtRiskWindowPeriods)
	if err != nil {
		return false, err
	}
	if stats.Periods == 0 {
		return false, nil
	}
	return stats.Minimum >= constants.AtRiskMinimumCount ||
		stats.Missed >= constants.AtRiskMissedCount, nil
}

// DetectDisruption scans backward from asOf for an unbroken run of missed
// periods. Any completed, minimum, or skipped entry terminates the run
// immediately; the scan stops after fourteen periods. Three or more
// consecutive misses count as disrupted.
func (e *Engine) DetectDisruption(exp models.Experiment, asOf string) (DisruptionReport, error) {
	if err := guardComputable(exp); err != nil {
		return DisruptionReport{}, err
	}

	w, err := newPeriodWalk(exp, asOf)
	if err != nil {
		return DisruptionReport{}, err
	}
	if w.entries == 0 {
		return DisruptionReport{}, nil
	}

	report := DisruptionReport{}
	for idx := w.last; idx > w.last-constants.DisruptionScanPeriods && idx >= 0; idx-- {
		state := w.state(idx)
		if state == periodCompleted || state == periodSkipped {
			break
		}
		report.ConsecutiveMisses++
		report.StartDay = w.day(idx)
	}

	report.Disrupted = report.ConsecutiveMisses >= constants.DisruptionRunLength
	return report, nil
}
