package domain

import (
	"fmt"
	"time"
)

// DateFormat is the wire format for calendar dates.
const DateFormat = "2006-01-02"

// TimeOfDayFormat is the wire format for time-of-day window boundaries.
const TimeOfDayFormat = "15:04"

// FullyBookedHours is the per-day booked-hours threshold at which the
// availability forecast flags a worker as fully booked.
const FullyBookedHours = 8.0

// TimeWindow is a half-open [Start, End) interval on a single day.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether the window has positive length.
func (w TimeWindow) Valid() bool {
	return w.End.After(w.Start)
}

// Hours returns the window length in fractional hours.
func (w TimeWindow) Hours() float64 {
	return w.End.Sub(w.Start).Hours()
}

// Overlaps applies the half-open interval overlap test: two windows conflict
// iff one starts before the other ends and ends after the other starts.
// Windows that merely touch (end == start) do not overlap.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start.Before(other.End) && w.End.After(other.Start)
}

// CombineDateTime resolves a calendar date and an "HH:MM" time-of-day into a
// single timestamp in UTC.
func CombineDateTime(date time.Time, timeOfDay string) (time.Time, error) {
	tod, err := time.Parse(TimeOfDayFormat, timeOfDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q: %w", timeOfDay, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		tod.Hour(), tod.Minute(), 0, 0, time.UTC), nil
}

// ResolveWindow builds the assignment's time window for a work date from an
// explicit time-of-day pair, falling back to the request's default window
// when either boundary is empty.
func ResolveWindow(workDate time.Time, startTOD, endTOD, defaultStart, defaultEnd string) (TimeWindow, error) {
	if startTOD == "" {
		startTOD = defaultStart
	}
	if endTOD == "" {
		endTOD = defaultEnd
	}

	start, err := CombineDateTime(workDate, startTOD)
	if err != nil {
		return TimeWindow{}, err
	}
	end, err := CombineDateTime(workDate, endTOD)
	if err != nil {
		return TimeWindow{}, err
	}

	window := TimeWindow{Start: start, End: end}
	if !window.Valid() {
		return TimeWindow{}, fmt.Errorf("end time %s must be after start time %s", endTOD, startTOD)
	}
	return window, nil
}

// WithinDateRange reports whether a work date falls inside the request's
// inclusive [from, to] date range, comparing calendar days only.
func WithinDateRange(workDate, from, to time.Time) bool {
	day := truncateToDay(workDate)
	return !day.Before(truncateToDay(from)) && !day.After(truncateToDay(to))
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return truncateToDay(a).Equal(truncateToDay(b))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween enumerates every calendar day in the inclusive [from, to] range.
func DaysBetween(from, to time.Time) []time.Time {
	start := truncateToDay(from)
	end := truncateToDay(to)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// DeriveWorkUnits converts hours worked into the ledger's unit of account:
// a full unit for six or more hours, half a unit otherwise.
func DeriveWorkUnits(hoursWorked float64) float64 {
	if hoursWorked >= 6 {
		return 1.0
	}
	return 0.5
}
