// Package timeutil provides utility functions and types for working with
// time-related operations.
package timeutil

import (
	"fmt"
	"math"
	"time"
)

const (
	SecondsInAnHour = 3600
	HoursInADay     = 24
	DaysInAWeek     = 7
)

// Clock is a source of the current time. It exists so that elapsed-time
// arithmetic can be tested deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Round rounds a time value in seconds, minutes, or hours to the nearest integer.
func Round(t float64) int64 {
	return int64(math.Round(t))
}

// MondayIndex returns the weekday of t as a Monday-first index (Monday=0
// through Sunday=6).
func MondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % DaysInAWeek
}

// RoundToStart resets the given time to the start of the day.
func RoundToStart(t time.Time) time.Time {
	return time.Date(
		t.Year(),
		t.Month(),
		t.Day(),
		0,
		0,
		0,
		0,
		t.Location(),
	)
}

// RoundToEnd resets the given time to the end of the day.
func RoundToEnd(t time.Time) time.Time {
	return time.Date(
		t.Year(),
		t.Month(),
		t.Day(),
		23,
		59,
		59,
		0,
		t.Location(),
	)
}

// WeekRange returns the Monday 00:00:00 and Sunday 23:59:59 of the week
// containing t.
func WeekRange(t time.Time) (start, end time.Time) {
	start = RoundToStart(t.AddDate(0, 0, -MondayIndex(t)))
	end = RoundToEnd(start.AddDate(0, 0, DaysInAWeek-1))

	return
}

// MonthRange returns the first and last instant of the month containing t.
func MonthRange(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end = RoundToEnd(start.AddDate(0, 1, -1))

	return
}

// YearRange returns the first and last instant of the year containing t.
func YearRange(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	end = time.Date(t.Year(), time.December, 31, 23, 59, 59, 0, t.Location())

	return
}

// StartOfYear returns January 1st 00:00:00 of the year containing t.
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}

// FormatHours renders a decimal hours value as "h:mm".
func FormatHours(hours float64) string {
	totalMins := int(math.Round(hours * 60))

	return fmt.Sprintf("%d:%02d", totalMins/60, totalMins%60)
}

// FormatSeconds renders a signed seconds value as "-h:mm", rounding to the
// nearest minute.
func FormatSeconds(secs int64) string {
	sign := ""
	if secs < 0 {
		sign = "-"
		secs = -secs
	}

	mins := (secs + 30) / 60

	return fmt.Sprintf("%s%d:%02d", sign, mins/60, mins%60)
}

// ToKey converts a time value to a database key for Bolt. Records are keyed
// by calendar day, so the time portion is zeroed first.
func ToKey(t time.Time) []byte {
	return []byte(RoundToStart(t).Format(time.RFC3339))
}
