// Package tracker holds the daily counter state machine: day rollover,
// count adjustment, manual reset and the end-of-day streak evaluation.
//
// Every transition here is a pure function over types.CounterRecord. The
// Service type wraps them in load -> transition -> save cycles against an
// injected types.CounterRepository.
package tracker

import (
	"math"

	"smokebuddy/internal/types"
)

// ApplyRolloverIfNeeded moves Today into Yesterday and zeroes Today when the
// record's date differs from currentDate. Applying it again on the same day
// is a no-op because Date already matches.
func ApplyRolloverIfNeeded(rec types.CounterRecord, currentDate string) types.CounterRecord {
	if rec.Date == currentDate {
		return rec
	}
	rec.Yesterday = rec.Today
	rec.Today = 0
	rec.Date = currentDate
	return rec
}

// Adjust applies a signed delta to Today, clamping at zero. There is no upper
// bound other than saturating at math.MaxInt instead of wrapping.
func Adjust(rec types.CounterRecord, delta int) types.CounterRecord {
	switch {
	case delta > 0 && rec.Today > math.MaxInt-delta:
		rec.Today = math.MaxInt
	case rec.Today+delta < 0:
		rec.Today = 0
	default:
		rec.Today += delta
	}
	return rec
}

// ResetToday zeroes Today and leaves Yesterday and Streak untouched.
func ResetToday(rec types.CounterRecord) types.CounterRecord {
	rec.Today = 0
	return rec
}
