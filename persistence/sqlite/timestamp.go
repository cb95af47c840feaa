package sqlite

import "time"

// formatTimestamp normalizes a timestamp for storage: naive (no-zone)
// values are treated as UTC, then the value is written as RFC3339 in UTC.
// This is the single write-side timestamp policy for every table.
func formatTimestamp(t time.Time) string {
	if t.Location() == time.Local {
		// A naive time (constructed without an explicit zone) reads as
		// Local from the time package's perspective; treat it as UTC
		// rather than silently shifting it.
		t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTimestamp is the read-side counterpart: a malformed or empty stored
// value never surfaces as an error, it normalizes to the Unix epoch in UTC
// (§3's timestamp policy).
func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Unix(0, 0).UTC()
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC()
	}
	return time.Unix(0, 0).UTC()
}
