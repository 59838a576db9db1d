package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/rivo/uniseg"
)

type TrackerKind string

const (
	// TrackerKindHabit recurs on the weekdays chosen by the user.
	TrackerKindHabit TrackerKind = "habit"
	// TrackerKindEvent is an irregular event; it is scheduled every day.
	TrackerKindEvent TrackerKind = "event"
)

// Tracker is a user-defined habit or irregular event. It is treated as an
// immutable value: edits produce a new Tracker with the same ID.
type Tracker struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Color     Color       `json:"color"`
	Emoji     string      `json:"emoji"`
	Schedule  Schedule    `json:"schedule"`
	Kind      TrackerKind `json:"kind"`
	CreatedAt time.Time   `json:"created_at"`
}

// Validate checks the fields every persisted tracker must carry.
// An empty schedule is valid here; such a tracker simply never appears
// in date-filtered views.
func (t Tracker) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("tracker id cannot be empty")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("tracker name cannot be empty")
	}
	if err := ValidateEmoji(t.Emoji); err != nil {
		return err
	}
	if !t.Color.Valid() {
		return fmt.Errorf("invalid tracker color %q", t.Color)
	}
	switch t.Kind {
	case TrackerKindHabit, TrackerKindEvent, "":
	default:
		return fmt.Errorf("unknown tracker kind %q", t.Kind)
	}
	return nil
}

// ValidateEmoji requires exactly one user-perceived character.
func ValidateEmoji(emoji string) error {
	if strings.TrimSpace(emoji) == "" {
		return fmt.Errorf("tracker emoji cannot be empty")
	}
	if n := uniseg.GraphemeClusterCount(emoji); n != 1 {
		return fmt.Errorf("tracker emoji must be a single character, got %d", n)
	}
	return nil
}

// TrackerRow is a tracker as read back from storage. Every column the
// aggregator requires may be missing, so each is optional.
type TrackerRow struct {
	ID            *string
	Name          *string
	Emoji         *string
	Color         *string
	Schedule      *string // JSON array of weekday numbers
	Kind          string
	CategoryTitle *string
	CreatedAt     time.Time
	DeletedAt     *time.Time
}
