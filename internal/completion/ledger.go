package completion

import (
	"time"

	"github.com/julianstephens/tally/internal/models"
)

type key struct {
	trackerID string
	day       string
}

// Ledger answers completion questions over an immutable set of records.
// Duplicate (tracker, day) records collapse into one.
type Ledger struct {
	done   map[key]struct{}
	counts map[string]int
}

// NewLedger indexes records for day-precision lookups.
func NewLedger(records []models.CompletionRecord) *Ledger {
	l := &Ledger{
		done:   make(map[key]struct{}, len(records)),
		counts: make(map[string]int),
	}
	for _, r := range records {
		k := key{trackerID: r.TrackerID, day: r.Day}
		if _, ok := l.done[k]; ok {
			continue
		}
		l.done[k] = struct{}{}
		l.counts[r.TrackerID]++
	}
	return l
}

// IsCompleted reports whether the tracker has a record on the calendar day of
// date, evaluated in date's own location.
func (l *Ledger) IsCompleted(trackerID string, date time.Time) bool {
	return l.IsCompletedOn(trackerID, models.DayOf(date))
}

// IsCompletedOn is IsCompleted for a YYYY-MM-DD day string.
func (l *Ledger) IsCompletedOn(trackerID, day string) bool {
	if l == nil {
		return false
	}
	_, ok := l.done[key{trackerID: trackerID, day: day}]
	return ok
}

// Count returns the number of distinct days the tracker was completed.
func (l *Ledger) Count(trackerID string) int {
	if l == nil {
		return 0
	}
	return l.counts[trackerID]
}

// Len is the number of distinct records.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.done)
}
