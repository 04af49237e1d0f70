// Package nutrition holds the pure rules of the tracker: the 05:00-to-05:00
// nutritional day, the goal calculator and portion math.
package nutrition

import (
	"fmt"
	"time"
)

const (
	// DayStartHour is the local hour a nutritional day begins.
	DayStartHour = 5
	DateLayout   = "2006-01-02"
)

// Day returns the nutritional day t belongs to, evaluated in loc.
// Timestamps before 05:00 local count toward the previous calendar date.
func Day(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	if lt.Hour() < DayStartHour {
		lt = lt.AddDate(0, 0, -1)
	}
	return lt.Format(DateLayout)
}

// Today is the nutritional day containing now.
func Today(now time.Time, loc *time.Location) string {
	return Day(now, loc)
}

// DayRange returns the [start, end) instants of a nutritional day:
// day 05:00 UTC up to day+1 05:00 UTC.
func DayRange(day string) (time.Time, time.Time, error) {
	d, err := ParseDay(day)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(d.Year(), d.Month(), d.Day(), DayStartHour, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1), nil
}

// ParseDay validates a YYYY-MM-DD date.
func ParseDay(day string) (time.Time, error) {
	d, err := time.Parse(DateLayout, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", day)
	}
	return d, nil
}

// AddDays shifts a YYYY-MM-DD date by n calendar days.
func AddDays(day string, n int) (string, error) {
	d, err := ParseDay(day)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, n).Format(DateLayout), nil
}

// DaysBetween lists every date from..to inclusive. from after to yields nil.
func DaysBetween(from, to string) ([]string, error) {
	f, err := ParseDay(from)
	if err != nil {
		return nil, err
	}
	t, err := ParseDay(to)
	if err != nil {
		return nil, err
	}
	var out []string
	for d := f; !d.After(t); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(DateLayout))
	}
	return out, nil
}

// MonthDays returns the first and last date of a YYYY-MM month.
func MonthDays(month string) (string, string, error) {
	m, err := time.Parse("2006-01", month)
	if err != nil {
		return "", "", fmt.Errorf("invalid month %q, expected YYYY-MM", month)
	}
	return m.Format(DateLayout), m.AddDate(0, 1, -1).Format(DateLayout), nil
}
