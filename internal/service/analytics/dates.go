package analytics

import "time"

const dateLayout = "2006-01-02"

// ParseDateOnly interprets a stored date string as a pure calendar date.
// Only the first 10 characters are considered, so timestamps such as
// "2026-02-20T08:30:00Z" collapse to their date part without any time-zone
// conversion that could shift the day near midnight.
func ParseDateOnly(value string) (time.Time, bool) {
	if len(value) > 10 {
		value = value[:10]
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// DateOnly strips the time-of-day and zone from t, keeping its calendar
// date. All date arithmetic in this package runs on such normalized values,
// so whole-day differences are exact.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b. Both arguments
// must already be date-only values.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
