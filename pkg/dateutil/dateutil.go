// Package dateutil implements the calendar-month arithmetic the permit terms
// are billed in. Months are anchored at the start day; when the target month
// is shorter than the anchor day, the date clamps to the last day of that
// month instead of rolling over.
package dateutil

import "time"

// AddMonths adds whole calendar months, clamping to month end.
// 2021-01-31 + 1 month = 2021-02-28, not 2021-03-03.
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	shifted := first.AddDate(0, months, 0)

	lastDay := daysIn(shifted.Month(), shifted.Year())
	if day > lastDay {
		day = lastDay
	}
	return time.Date(shifted.Year(), shifted.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// DiffMonths returns the number of whole months from a to b (a <= b).
func DiffMonths(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if months > 0 && b.Before(AddMonths(a, months)) {
		months--
	}
	return months
}

// EndOfDay returns 23:59 on the day of t.
func EndOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 0, 0, t.Location())
}

// StartOfDay returns midnight on the day of t.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
