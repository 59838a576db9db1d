package models

import (
	"fmt"
	"strings"
)

// FilterMode selects which trackers the board shows for the selected date.
type FilterMode string

const (
	FilterAll         FilterMode = "all"
	FilterToday       FilterMode = "today"
	FilterCompleted   FilterMode = "completed"
	FilterUncompleted FilterMode = "uncompleted"
)

// FilterModes lists the modes in display order.
var FilterModes = []FilterMode{FilterAll, FilterToday, FilterCompleted, FilterUncompleted}

func ParseFilterMode(s string) (FilterMode, error) {
	mode := FilterMode(strings.ToLower(strings.TrimSpace(s)))
	for _, m := range FilterModes {
		if m == mode {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown filter %q (expected all, today, completed or uncompleted)", s)
}

func (m FilterMode) Label() string {
	switch m {
	case FilterAll:
		return "All trackers"
	case FilterToday:
		return "Trackers for today"
	case FilterCompleted:
		return "Completed"
	case FilterUncompleted:
		return "Not completed"
	default:
		return string(m)
	}
}

// Next cycles through FilterModes.
func (m FilterMode) Next() FilterMode {
	for i, mode := range FilterModes {
		if mode == m {
			return FilterModes[(i+1)%len(FilterModes)]
		}
	}
	return FilterAll
}
