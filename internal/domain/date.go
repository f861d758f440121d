package domain

import "time"

// Calendar dates are exchanged as YYYY-MM-DD strings in the caller's local
// time zone. The backend stores the same convention; drift between client
// and server zones is an accepted limitation.

// DateOf formats a time as a calendar-date string in its own location.
func DateOf(t time.Time) string {
	return t.Format(time.DateOnly)
}

// Today returns the current calendar date in local time.
func Today() string {
	return DateOf(time.Now())
}

// PreviousDay returns the calendar date one day before the given date.
// Invalid input yields an empty string, which never matches a stored date.
func PreviousDay(date string) string {
	t, err := time.ParseInLocation(time.DateOnly, date, time.Local)
	if err != nil {
		return ""
	}
	return DateOf(t.AddDate(0, 0, -1))
}

// ValidDate reports whether s is a well-formed YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}
