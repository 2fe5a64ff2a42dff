package util

import "time"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// DateString formats t as the calendar date stored in corpus metadata.
func DateString(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
