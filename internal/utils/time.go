package utils

import "time"

// Now returns the current time in UTC. All timestamps in the system are
// stored and compared in UTC; conversion to a recipient timezone happens
// only at the presentation edge.
func Now() time.Time {
	return time.Now().UTC()
}

func IsInFuture(t time.Time) bool {
	return t.After(Now())
}

// StartOfDayUTC truncates t to midnight UTC.
func StartOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfNextDayUTC returns the next midnight UTC after t. Daily send
// counters reset on this boundary.
func StartOfNextDayUTC(t time.Time) time.Time {
	return StartOfDayUTC(t).Add(24 * time.Hour)
}

func ToPtr[T any](v T) *T {
	return &v
}
