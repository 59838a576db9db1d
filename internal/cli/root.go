package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/julianstephens/tally/internal/backup"
	"github.com/julianstephens/tally/internal/board"
	"github.com/julianstephens/tally/internal/config"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
	"github.com/julianstephens/tally/internal/storage/sqlite"
)

type Context struct {
	Store  storage.Provider
	Config *config.Config
	// Clock overrides the configured timezone clock. Tests set it.
	Clock func() time.Time

	board *board.Board
	tz    string
}

// Now returns the current time in the user's timezone: TALLY_TIMEZONE if
// set, otherwise the persisted setting.
func (c *Context) Now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	cfg := c.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	if c.tz == "" && c.Store != nil {
		if s, err := c.Store.GetSettings(); err == nil {
			c.tz = s.Timezone
		}
	}
	return cfg.Now(c.tz)
}

// Board loads the store and returns the board, building it on first use.
func (c *Context) Board() (*board.Board, error) {
	if c.board != nil {
		return c.board, nil
	}
	if err := c.Store.Load(); err != nil {
		return nil, err
	}
	b, err := board.New(c.Store, board.Options{Now: c.Now})
	if err != nil {
		return nil, fmt.Errorf("failed to load board: %w", err)
	}
	c.board = b
	return b, nil
}

// BackupManager returns the backup manager for the current store. Only
// SQLite stores can be backed up.
func (c *Context) BackupManager() (*backup.Manager, error) {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return nil, backup.ErrNotSQLite
	}
	return backup.NewManager(c.Store.GetConfigPath()), nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr, err := c.BackupManager()
	if err != nil {
		logger.Debug("Skipping automatic backup", "reason", err)
		return
	}
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Pad right-pads s to width display columns. Emoji count as two.
func Pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// Truncate shortens s to width display columns.
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

// FormatSchedule renders a tracker's schedule for listings.
func FormatSchedule(t models.Tracker) string {
	if t.Kind == models.TrackerKindEvent {
		return "irregular event"
	}
	return t.Schedule.String()
}

// Checkbox renders a completion state.
func Checkbox(done, locked bool) string {
	switch {
	case locked:
		return "[-]"
	case done:
		return "[x]"
	default:
		return "[ ]"
	}
}

// NameWidth is the widest tracker name in the list, capped at limit.
func NameWidth(trackers []models.Tracker, limit int) int {
	w := 0
	for _, t := range trackers {
		if n := runewidth.StringWidth(t.Name); n > w {
			w = n
		}
	}
	if w > limit {
		return limit
	}
	return w
}

// Confirm reads a y/N answer from the given line.
func Confirm(response string) bool {
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
