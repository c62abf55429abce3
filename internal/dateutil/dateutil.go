package dateutil

import (
	"fmt"
	"math"
	"time"
)

// DefaultLayout is the layout used when none is given
const DefaultLayout = "2006-01-02"

// Unit is a time unit for date arithmetic
type Unit string

const (
	UnitDays    Unit = "days"
	UnitHours   Unit = "hours"
	UnitMinutes Unit = "minutes"
	UnitSeconds Unit = "seconds"
)

// ParseDate parses a date string using the given layout. An empty layout
// falls back to DefaultLayout.
func ParseDate(value, layout string) (time.Time, error) {
	if layout == "" {
		layout = DefaultLayout
	}
	parsed, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", value, err)
	}
	return parsed, nil
}

// FormatDate formats a date using the given layout. An empty layout falls
// back to DefaultLayout.
func FormatDate(date time.Time, layout string) string {
	if layout == "" {
		layout = DefaultLayout
	}
	return date.Format(layout)
}

// Diff returns the difference between two dates (second minus first) in the
// given unit. Days floor towards negative infinity, the finer units truncate
// towards zero.
func Diff(from, to time.Time, unit Unit) (int64, error) {
	diff := to.Sub(from)

	switch unit {
	case UnitDays:
		return int64(math.Floor(diff.Hours() / 24)), nil
	case UnitHours:
		return int64(diff.Hours()), nil
	case UnitMinutes:
		return int64(diff.Minutes()), nil
	case UnitSeconds:
		return int64(diff.Seconds()), nil
	}

	return 0, fmt.Errorf("invalid unit %q: valid units are days, hours, minutes, seconds", unit)
}

// Add returns the date shifted by the given amount of the given unit
func Add(date time.Time, value int, unit Unit) (time.Time, error) {
	switch unit {
	case UnitDays:
		return date.AddDate(0, 0, value), nil
	case UnitHours:
		return date.Add(time.Duration(value) * time.Hour), nil
	case UnitMinutes:
		return date.Add(time.Duration(value) * time.Minute), nil
	case UnitSeconds:
		return date.Add(time.Duration(value) * time.Second), nil
	}

	return time.Time{}, fmt.Errorf("invalid unit %q: valid units are days, hours, minutes, seconds", unit)
}
