package engine

import (
	"github.com/emmanuelcabrera1/stint/internal/constants"
	"github.com/emmanuelcabrera1/stint/internal/models"
)

// CurrentStreak returns the number of consecutive qualifying periods ending
// at asOf. Completed and minimum entries increment the count, skipped entries
// and graced periods preserve continuity without incrementing, and the walk
// stops at the first period with no entry and no grace coverage.
func (e *Engine) CurrentStreak(exp models.Experiment, asOf string) (int, error) {
	if err := guardComputable(exp); err != nil {
		return 0, err
	}

	w, err := newPeriodWalk(exp, asOf)
	if err != nil {
		return 0, err
	}
	if w.entries == 0 {
		return 0, nil
	}

	idx := w.last
	// The current period not being logged yet is not a break; start the walk
	// one period earlier.
	if w.state(idx) == periodAbsent && !graced(exp, w.day(idx)) {
		idx--
	}

	streak := 0
	for ; idx >= 0; idx-- {
		switch w.state(idx) {
		case periodCompleted:
			streak++
		case periodSkipped:
			// Continuity preserved, count unchanged.
		default:
			if !graced(exp, w.day(idx)) {
				return streak, nil
			}
		}
	}

	return streak, nil
}

// DaysCompleted counts completed and minimum entries across the whole log.
// It is the progress numerator and is not windowed.
func (e *Engine) DaysCompleted(exp models.Experiment) (int, error) {
	if err := guardComputable(exp); err != nil {
		return 0, err
	}

	count := 0
	for _, entry := range exp.Entries {
		if entry.DeletedAt != nil {
			continue
		}
		if entry.Kind == models.EntryCompleted || entry.Kind == models.EntryMinimum {
			count++
		}
	}
	return count, nil
}

// Progress returns completion progress in [0, 1] against the effective
// target (base target plus recovery extensions). A zero base target is
// treated as already met rather than dividing by zero.
func (e *Engine) Progress(exp models.Experiment) (float64, error) {
	if err := guardComputable(exp); err != nil {
		return 0, err
	}

	if exp.TargetDays <= 0 {
		return 1.0, nil
	}
	target := exp.TargetDays + exp.ExtensionDays

	completed, err := e.DaysCompleted(exp)
	if err != nil {
		return 0, err
	}

	progress := float64(completed) / float64(target)
	if progress > 1 {
		progress = 1
	}
	return progress, nil
}

// EarnedSkipDays returns the unspent skip-day budget: one skip day per seven
// consecutive maintained periods, minus the skip days already consumed,
// floored at zero.
func (e *Engine) EarnedSkipDays(exp models.Experiment, asOf string) (int, error) {
	streak, err := e.CurrentStreak(exp, asOf)
	if err != nil {
		return 0, err
	}

	earned := streak/constants.StreakPeriodsPerSkip - exp.SkipDaysUsed
	if earned < 0 {
		earned = 0
	}
	return earned, nil
}

// CanUseSkipDay reports whether a skip day can be applied right now. Skip
// days are a recovery mechanism, not a vacation pass: they only cover the
// immediately preceding unlogged period, and only while grace is active and
// unexpired.
func (e *Engine) CanUseSkipDay(exp models.Experiment, asOf string) (bool, error) {
	earned, err := e.EarnedSkipDays(exp, asOf)
	if err != nil {
		return false, err
	}
	if earned == 0 {
		return false, nil
	}

	w, err := newPeriodWalk(exp, asOf)
	if err != nil {
		return false, err
	}
	if w.last == 0 {
		return false, nil
	}
	if w.state(w.last-1) != periodAbsent {
		return false, nil
	}

	return !graceExpired(exp, asOf), nil
}

// UseSkipDay applies one earned skip day to the immediately preceding
// period, recording a skipped entry and consuming budget. The transformed
// experiment is returned; persisting it is the caller's responsibility.
func (e *Engine) UseSkipDay(exp models.Experiment, asOf string) (models.Experiment, error) {
	ok, err := e.CanUseSkipDay(exp, asOf)
	if err != nil {
		return exp, err
	}
	if !ok {
		return exp, ErrSkipUnavailable
	}

	w, err := newPeriodWalk(exp, asOf)
	if err != nil {
		return exp, err
	}

	exp.UpsertEntry(models.Entry{
		Day:  w.day(w.last - 1),
		Kind: models.EntrySkipped,
	})
	exp.SkipDaysUsed++
	return exp, nil
}
