package dateutil

import (
	"fmt"
	"strings"
	"time"
)

// ISODate is the canonical layout used for persisted and exported dates
const ISODate = "2006-01-02"

// Date returns the calendar date y-m-d as a naive date (midnight UTC)
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// StartOfDay strips the clock and zone from t, keeping its calendar date
func StartOfDay(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// StartOfMonth returns the first day of the month containing date
func StartOfMonth(date time.Time) time.Time {
	return Date(date.Year(), date.Month(), 1)
}

// NextMonth returns the first day of the month after the one containing date
func NextMonth(date time.Time) time.Time {
	return StartOfMonth(date).AddDate(0, 1, 0)
}

// DaysIn returns the number of days in the given month
func DaysIn(year int, month time.Month) int {
	return Date(year, month+1, 0).Day()
}

// DaysBetween returns the number of calendar days from a to b (negative if b is before a)
func DaysBetween(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24)
}

// FormatISO formats a date as YYYY-MM-DD
func FormatISO(date time.Time) string {
	return date.Format(ISODate)
}

// ParseDate parses date string in various formats.
// The result is always a naive date.
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)

	formats := []string{
		ISODate,
		"02/01/2006",
		"02.01.2006",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04:05",
		"20060102",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return StartOfDay(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %q", dateStr)
}
