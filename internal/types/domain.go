package types

import "time"

// DateLayout is the day-granularity ISO layout used for CounterRecord.Date.
const DateLayout = "2006-01-02"

// CounterRecord is the single persisted entity of a deployment. It is
// serialized verbatim (pretty-printed) by the file and object stores and
// mapped column-for-column by the Postgres store.
type CounterRecord struct {
	// Date is the day (YYYY-MM-DD, in the configured timezone) for which
	// Today has been accumulating.
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Today     int    `json:"today" validate:"gte=0"`
	Yesterday int    `json:"yesterday" validate:"gte=0"`
	Streak    int    `json:"streak" validate:"gte=0"`
}

// NewCounterRecord returns the default record created on first access.
func NewCounterRecord(date string) *CounterRecord {
	return &CounterRecord{Date: date}
}

// RewardTier is one entry of the streak reward catalog.
type RewardTier struct {
	Image string `json:"image" validate:"required,url"`
	Text  string `json:"text" validate:"required"`
}

// FormatDate renders t as a CounterRecord date in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// Clock abstracts the current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock implementation of Clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }
