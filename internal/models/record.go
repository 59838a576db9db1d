package models

import (
	"time"

	"github.com/julianstephens/tally/internal/constants"
)

// CompletionRecord marks a tracker as done on a calendar day.
type CompletionRecord struct {
	ID        string    `json:"id"`
	TrackerID string    `json:"tracker_id"`
	Day       string    `json:"day"` // YYYY-MM-DD format
	CreatedAt time.Time `json:"created_at"`
}

// DayOf returns the calendar day of t in t's own location.
func DayOf(t time.Time) string {
	return t.Format(constants.DateFormat)
}
