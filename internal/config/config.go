package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/keyring"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/storage"
	"github.com/julianstephens/tally/internal/storage/postgres"
	"github.com/julianstephens/tally/internal/storage/sqlite"
	"github.com/julianstephens/tally/internal/utils"
)

// Source names where the store target was taken from.
type Source string

const (
	SourceFlag    Source = "flag"
	SourceEnv     Source = "environment"
	SourceKeyring Source = "keyring"
	SourceDefault Source = "default"
)

var ErrInvalidTimezone = errors.New("invalid timezone")

// Config holds the process configuration.
// Environment variables are parsed from the TALLY_ prefix, for example
// TALLY_CONFIG, TALLY_DEBUG, TALLY_TIMEZONE.
type Config struct {
	// Database file path or PostgreSQL connection string
	ConfigPath string `envconfig:"CONFIG" default:""`

	Debug bool `envconfig:"DEBUG" default:"false"`

	// Overrides the persisted timezone setting when set
	Timezone string `envconfig:"TIMEZONE" default:""`

	// Where logs (and the default database) live
	ConfigDir string `envconfig:"CONFIG_DIR" default:""`

	// Full PostgreSQL connection string. Unlike TALLY_CONFIG this may carry
	// credentials, it never ends up in shell history or process listings.
	DBConnection string `envconfig:"DB_CONNECTION" default:""`
}

// New creates a Config from the environment.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(constants.EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// NewForTesting returns a config rooted at dir with no environment applied.
func NewForTesting(dir string) *Config {
	return &Config{
		ConfigPath: filepath.Join(dir, "tally.db"),
		ConfigDir:  dir,
	}
}

// ResolveDefaults validates the timezone and derives ConfigDir.
func (c *Config) ResolveDefaults() error {
	if c.Timezone != "" && !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("%w: %s", ErrInvalidTimezone, c.Timezone)
	}

	if c.ConfigDir == "" {
		path, err := ExpandHome(constants.DefaultConfigPath)
		if err != nil {
			return err
		}
		c.ConfigDir = filepath.Dir(path)
	} else {
		dir, err := ExpandHome(c.ConfigDir)
		if err != nil {
			return err
		}
		c.ConfigDir = dir
	}
	return nil
}

// Target is a resolved store location.
type Target struct {
	Value    string
	Source   Source
	Postgres bool
}

// ResolveTarget picks the store location. Precedence: the --config flag,
// TALLY_CONFIG, TALLY_DB_CONNECTION, the OS keyring, then the default path
// under ConfigDir.
//
// Connection strings typed on the command line or in TALLY_CONFIG must not
// embed a password.
func (c *Config) ResolveTarget(flag string) (Target, error) {
	if t := strings.TrimSpace(flag); t != "" {
		return c.checkedTarget(t, SourceFlag)
	}
	if t := strings.TrimSpace(c.ConfigPath); t != "" {
		return c.checkedTarget(t, SourceEnv)
	}
	if t := strings.TrimSpace(c.DBConnection); t != "" {
		return Target{Value: t, Source: SourceEnv, Postgres: true}, nil
	}

	connStr, err := keyring.GetConnectionString()
	switch {
	case err == nil:
		return Target{Value: connStr, Source: SourceKeyring, Postgres: true}, nil
	case errors.Is(err, keyring.ErrNotFound):
	default:
		logger.Debug("Keyring lookup failed", "error", err)
	}

	return Target{Value: filepath.Join(c.ConfigDir, filepath.Base(constants.DefaultConfigPath)), Source: SourceDefault}, nil
}

func (c *Config) checkedTarget(value string, source Source) (Target, error) {
	if postgres.IsConnString(value) {
		if _, err := postgres.ValidateConnString(value); err != nil {
			return Target{}, err
		}
		return Target{Value: value, Source: source, Postgres: true}, nil
	}
	path, err := ExpandHome(value)
	if err != nil {
		return Target{}, err
	}
	return Target{Value: path, Source: source}, nil
}

// OpenStore builds the provider for t. The store is not loaded.
func OpenStore(t Target) storage.Provider {
	if t.Postgres {
		return postgres.New(t.Value)
	}
	return sqlite.NewStore(t.Value)
}

// Now returns the current time in the configured timezone, falling back to
// the persisted setting.
func (c *Config) Now(settingTZ string) time.Time {
	tz := settingTZ
	if c.Timezone != "" {
		tz = c.Timezone
	}
	now, err := utils.NowInTimezone(tz)
	if err != nil {
		logger.Warn("Falling back to local time", "timezone", tz, "error", err)
		return time.Now()
	}
	return now
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
