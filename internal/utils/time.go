package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/tally/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == constants.DefaultTimezone {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// GetTodayInTimezone returns today's date string (YYYY-MM-DD) in the specified timezone.
func GetTodayInTimezone(timezone string) (string, error) {
	now, err := NowInTimezone(timezone)
	if err != nil {
		return "", err
	}
	return now.Format(constants.DateFormat), nil
}

// ParseDateInLocation parses a date string (YYYY-MM-DD) in the specified timezone.
func ParseDateInLocation(dateStr string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// AfterDay reports whether the calendar day of a is later than the calendar day of b.
// Both are compared in b's location.
func AfterDay(a, b time.Time) bool {
	return StartOfDay(a.In(b.Location())).After(StartOfDay(b))
}

// ParseDayArg resolves a user supplied day: "", "today", "yesterday",
// "tomorrow" or YYYY-MM-DD. Relative names are resolved against now.
func ParseDayArg(arg string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "", "today":
		return StartOfDay(now), nil
	case "yesterday":
		return StartOfDay(now).AddDate(0, 0, -1), nil
	case "tomorrow":
		return StartOfDay(now).AddDate(0, 0, 1), nil
	}
	t, err := ParseDateInLocation(strings.TrimSpace(arg), now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", arg, err)
	}
	return t, nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == constants.DefaultTimezone {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}
