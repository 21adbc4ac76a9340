package constants

const (
	// Streak and skip-day constants:
	// - StreakPeriodsPerSkip is how many consecutive maintained periods earn
	//   one skip day.
	// - GraceDays is the length of the grace window recorded by the pause
	//   recovery action.
	StreakPeriodsPerSkip = 7
	GraceDays            = 7

	// Disruption detection constants.
	DisruptionScanPeriods = 14 // how far back the scan walks
	DisruptionRunLength   = 3  // consecutive misses that count as disrupted

	// At-risk heuristic over the trailing window (inclusive thresholds).
	AtRiskWindowPeriods = 7
	AtRiskMinimumCount  = 4
	AtRiskMissedCount   = 2

	// Difficulty adaptation thresholds over the trailing stats window.
	// Downgrade is evaluated before upgrade and short-circuits.
	StatsWindowPeriods    = 7
	DowngradeMissedCount  = 3
	DowngradeMinimumCount = 4
	DowngradeCompletedMax = 1
	UpgradeCompletedCount = 6
)

func init() {
	// Runtime validation: the at-risk and adaptation windows must fit inside
	// the disruption scan, otherwise status output contradicts itself.
	if AtRiskWindowPeriods > DisruptionScanPeriods || StatsWindowPeriods > DisruptionScanPeriods {
		panic("trailing windows must not exceed DisruptionScanPeriods")
	}
}
