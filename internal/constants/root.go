package constants

const (
	AppName            = "tally"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/tally/tally.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "tally-"
	BackupFileSuffix = ".db"

	// EnvPrefix is the prefix for all environment variables read by config
	EnvPrefix = "TALLY"

	// DefaultTrackerColor is used when a tracker is added without an explicit color
	DefaultTrackerColor = "#33CF69"
	// DefaultCategoryTitle is used when a tracker is added without an explicit category
	DefaultCategoryTitle = "General"
)
