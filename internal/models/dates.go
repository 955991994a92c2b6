package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date wire format for expense dates.
const DateLayout = "2006-01-02"

// ParseExpenseDate accepts either a calendar date ("2024-03-01") or an
// RFC 3339 timestamp and returns the calendar date at midnight UTC.
// For timestamps the calendar day is taken in the timestamp's own offset.
func ParseExpenseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", s)
	}
	return NormalizeDate(t), nil
}

// NormalizeDate truncates t to its calendar day at midnight UTC.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthRange returns the half-open window [first day of month, first day of next month) in UTC.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
