package utils

import (
	"time"
)

// DateLocation is the application's timezone. UTC until
// InitializeDateLocation runs.
var DateLocation = time.UTC

// InitializeDateLocation sets up the application's timezone
func InitializeDateLocation(timezone string) error {
	if timezone == "" {
		timezone = "Africa/Nairobi"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}
	DateLocation = loc
	return nil
}

// NormalizeDate converts a time.Time to a normalized date at midnight in the application timezone
func NormalizeDate(t time.Time) time.Time {
	year, month, day := t.In(DateLocation).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, DateLocation)
}

// Today returns today's date normalized at midnight in the application timezone
func Today() time.Time {
	return NormalizeDate(time.Now())
}

// StartOfMonth returns midnight on the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	year, month, _ := t.In(DateLocation).Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, DateLocation)
}
