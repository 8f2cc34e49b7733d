package utils

import "time"

// Day returns the ISO 8601 calendar date of t in UTC.
func Day(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// NormalizeDay trims a stored last-used value to the ISO date part.
// Old records may carry a full timestamp string.
func NormalizeDay(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
