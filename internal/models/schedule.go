package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Schedule is the set of weekdays on which a tracker recurs.
// Bit n is set when time.Weekday(n) is part of the schedule.
type Schedule uint8

const (
	scheduleWeekdays Schedule = 1<<time.Monday | 1<<time.Tuesday | 1<<time.Wednesday | 1<<time.Thursday | 1<<time.Friday
	scheduleWeekends Schedule = 1<<time.Saturday | 1<<time.Sunday
	scheduleAll               = scheduleWeekdays | scheduleWeekends
)

// weekOrder lists weekdays Monday first, the order used for display.
var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

func NewSchedule(days ...time.Weekday) Schedule {
	var s Schedule
	for _, d := range days {
		s |= 1 << uint(d)
	}
	return s & scheduleAll
}

// EveryDay returns the schedule used for irregular events.
func EveryDay() Schedule {
	return scheduleAll
}

func (s Schedule) Contains(day time.Weekday) bool {
	if day < time.Sunday || day > time.Saturday {
		return false
	}
	return s&(1<<uint(day)) != 0
}

func (s Schedule) IsEmpty() bool {
	return s&scheduleAll == 0
}

// Weekdays returns the scheduled days, Monday first.
func (s Schedule) Weekdays() []time.Weekday {
	var days []time.Weekday
	for _, d := range weekOrder {
		if s.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

func (s Schedule) String() string {
	switch s & scheduleAll {
	case 0:
		return "never"
	case scheduleAll:
		return "every day"
	case scheduleWeekdays:
		return "weekdays"
	case scheduleWeekends:
		return "weekends"
	}
	var names []string
	for _, d := range s.Weekdays() {
		names = append(names, d.String()[:3])
	}
	return strings.Join(names, ", ")
}

// MarshalJSON encodes the schedule as an array of weekday numbers (0=Sunday).
func (s Schedule) MarshalJSON() ([]byte, error) {
	days := make([]int, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Contains(d) {
			days = append(days, int(d))
		}
	}
	return json.Marshal(days)
}

func (s *Schedule) UnmarshalJSON(data []byte) error {
	var days []int
	if err := json.Unmarshal(data, &days); err != nil {
		return fmt.Errorf("schedule must be an array of weekday numbers: %w", err)
	}
	var out Schedule
	for _, d := range days {
		if d < 0 || d > 6 {
			return fmt.Errorf("invalid weekday number: %d", d)
		}
		out |= 1 << uint(d)
	}
	*s = out
	return nil
}

var weekdayNames = map[string]time.Weekday{
	"sun":       time.Sunday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tues":      time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thurs":     time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
	"sat":       time.Saturday,
	"saturday":  time.Saturday,
}

// ParseSchedule parses a comma-separated list of weekdays. Names, three
// letter abbreviations, numbers (0=Sunday, 6=Saturday) and the shorthands
// "daily", "weekdays" and "weekends" are accepted.
func ParseSchedule(s string) (Schedule, error) {
	var out Schedule
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		switch part {
		case "daily", "every day", "everyday", "all":
			out |= scheduleAll
			continue
		case "weekdays":
			out |= scheduleWeekdays
			continue
		case "weekends":
			out |= scheduleWeekends
			continue
		}
		if wd, ok := weekdayNames[part]; ok {
			out |= 1 << uint(wd)
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 || num > 6 {
			return 0, fmt.Errorf("invalid weekday: %s", part)
		}
		out |= 1 << uint(num)
	}
	if out.IsEmpty() {
		return 0, fmt.Errorf("schedule must contain at least one weekday")
	}
	return out, nil
}
