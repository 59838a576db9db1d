package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/tally/internal/constants"
)

// Settings represents application-wide settings
type Settings struct {
	Timezone       string     `json:"timezone"`        // IANA timezone name (e.g. "Europe/Moscow", or "Local" for system timezone)
	SelectedFilter FilterMode `json:"selected_filter"` // last filter chosen on the board, restored on startup
	ShowCounts     bool       `json:"show_counts"`     // whether the board shows "N days" counters
}

// DefaultSettings returns the settings written by init.
func DefaultSettings() Settings {
	return Settings{
		Timezone:       constants.DefaultTimezone,
		SelectedFilter: FilterMode(constants.DefaultSelectedFilter),
		ShowCounts:     constants.DefaultShowCounts,
	}
}

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := DefaultSettings()

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingSelectedFilter:
			mode, err := ParseFilterMode(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			settings.SelectedFilter = mode
		case constants.SettingShowCounts:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			settings.ShowCounts = b
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	ApplyDefaultSettings(&settings)
	return map[string]string{
		constants.SettingTimezone:       settings.Timezone,
		constants.SettingSelectedFilter: string(settings.SelectedFilter),
		constants.SettingShowCounts:     strconv.FormatBool(settings.ShowCounts),
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.SelectedFilter == "" {
		settings.SelectedFilter = FilterMode(constants.DefaultSelectedFilter)
	}
}
