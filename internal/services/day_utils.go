package services

import "time"

// DateAtLocation truncates a timestamp to 00:00:00 of its calendar day in
// the given location. Every day-boundary decision in this package routes
// through here so a day is bucketed exactly once and consistently.
func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

// DayRange returns the half-open [start, end) interval covering the
// calendar day that contains value.
func DayRange(value time.Time, location *time.Location) (time.Time, time.Time) {
	start := DateAtLocation(value, location)
	return start, start.AddDate(0, 0, 1)
}

// DaysBetween returns the number of calendar days from a to b (negative when
// b precedes a). Both values are truncated to their day boundary first, then
// the difference is rounded to whole days: a truncated-day gap differs from
// n*24h only by the DST offset between the two boundaries, which rounding
// absorbs. Dividing a raw millisecond delta by 86400000 would misclassify
// days across DST transitions.
func DaysBetween(a time.Time, b time.Time, location *time.Location) int {
	startA := DateAtLocation(a, location)
	startB := DateAtLocation(b, location)

	hours := startB.Sub(startA).Hours()
	if hours >= 0 {
		return int((hours + 12) / 24)
	}
	return -int((-hours + 12) / 24)
}

// IsConsecutiveDay reports whether current falls on the calendar day
// immediately after previous.
func IsConsecutiveDay(previous time.Time, current time.Time, location *time.Location) bool {
	return DaysBetween(previous, current, location) == 1
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a time.Time, b time.Time, location *time.Location) bool {
	return DaysBetween(a, b, location) == 0
}
