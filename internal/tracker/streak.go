package tracker

import "smokebuddy/internal/types"

// EvaluateDay runs the end-of-day comparison. Smoking fewer than yesterday
// extends the streak and earns the tier at min(streak, len(catalog)); any
// other outcome resets the streak and earns nothing.
func EvaluateDay(rec types.CounterRecord, catalog RewardCatalog) (types.CounterRecord, *types.RewardTier) {
	if rec.Today < rec.Yesterday {
		rec.Streak++
		return rec, catalog.TierFor(rec.Streak)
	}
	rec.Streak = 0
	return rec, nil
}
