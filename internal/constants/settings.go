package constants

const (
	SettingTimezone       = "timezone"
	SettingSelectedFilter = "selected_filter"
	SettingShowCounts     = "show_counts"

	DefaultTimezone       = "Local" // Use system local timezone by default
	DefaultSelectedFilter = "all"
	DefaultShowCounts     = true
)
