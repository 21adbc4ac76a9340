package engine

import (
	"github.com/emmanuelcabrera1/stint/internal/constants"
	"github.com/emmanuelcabrera1/stint/internal/models"
)

type AdaptationAction string

const (
	AdaptUpgrade   AdaptationAction = "upgrade"
	AdaptDowngrade AdaptationAction = "downgrade"
	AdaptMaintain  AdaptationAction = "maintain"
)

// Recommendation is the outcome of difficulty adaptation over a trailing
// stats window.
type Recommendation struct {
	Action   AdaptationAction
	NewLevel int
	Reason   string
}

// RecommendDifficulty evaluates the trailing window and recommends a
// difficulty change. The downgrade check runs first and short-circuits, so
// a window that technically satisfies both conditions downgrades.
func (e *Engine) RecommendDifficulty(exp models.Experiment, asOf string) (Recommendation, error) {
	stats, err := e.WindowStats(exp, asOf, constants.StatsWindowPeriods)
	if err != nil {
		return Recommendation{}, err
	}

	level := exp.Difficulty
	if level < models.MinDifficulty {
		level = models.MinDifficulty
	}

	if stats.Missed >= constants.DowngradeMissedCount {
		return Recommendation{
			Action:   AdaptDowngrade,
			NewLevel: max(models.MinDifficulty, level-1),
			Reason:   "too many missed periods in the last week",
		}, nil
	}
	if stats.Minimum >= constants.DowngradeMinimumCount && stats.Completed <= constants.DowngradeCompletedMax {
		return Recommendation{
			Action:   AdaptDowngrade,
			NewLevel: max(models.MinDifficulty, level-1),
			Reason:   "mostly minimum check-ins with almost no full completions",
		}, nil
	}
	if stats.Completed >= constants.UpgradeCompletedCount && stats.Missed == 0 && level < models.MaxDifficulty {
		return Recommendation{
			Action:   AdaptUpgrade,
			NewLevel: min(models.MaxDifficulty, level+1),
			Reason:   "a full week of completions with no misses",
		}, nil
	}

	return Recommendation{
		Action:   AdaptMaintain,
		NewLevel: level,
		Reason:   "recent performance is steady",
	}, nil
}
