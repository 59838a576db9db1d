// Package visibility decides which trackers the board shows for a date,
// filter mode and search string.
package visibility

import (
	"strings"
	"time"

	"github.com/julianstephens/tally/internal/completion"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/utils"
)

// EmptyReason explains an empty view.
type EmptyReason int

const (
	// NotEmpty means at least one tracker is visible.
	NotEmpty EmptyReason = iota
	// NothingScheduled means no tracker is scheduled on the selected weekday.
	NothingScheduled
	// NothingFound means trackers are scheduled but the filter or search hid them all.
	NothingFound
)

func (r EmptyReason) String() string {
	switch r {
	case NothingScheduled:
		return "What shall we track?"
	case NothingFound:
		return "Nothing found"
	default:
		return ""
	}
}

// Query is the board selection a view is computed for.
type Query struct {
	Date   time.Time
	Mode   models.FilterMode
	Search string
	// Now is "now" in the user's timezone. Today mode and the lock on
	// future dates use it.
	Now time.Time
}

type Item struct {
	Tracker         models.Tracker
	Completed       bool
	CompletionCount int
	// Locked is set when Date is after today; completion cannot change.
	Locked bool
}

type Section struct {
	Title string
	Items []Item
}

// View is the filtered board.
type View struct {
	// Date is the effective date, which differs from the query in Today mode.
	Date             time.Time
	Mode             models.FilterMode
	Search           string
	Sections         []Section
	Empty            bool
	ShowFilterButton bool
	EmptyReason      EmptyReason
}

// ItemCount is the number of visible trackers.
func (v View) ItemCount() int {
	n := 0
	for _, s := range v.Sections {
		n += len(s.Items)
	}
	return n
}

// Apply filters categories for q. Filters compose in a fixed order: weekday,
// then mode, then search. Sections left with no trackers are dropped.
func Apply(categories []models.Category, ledger *completion.Ledger, q Query) View {
	mode := q.Mode
	if mode == "" {
		mode = models.FilterAll
	}
	date := q.Date
	if mode == models.FilterToday || date.IsZero() {
		date = q.Now
	}
	weekday := date.Weekday()
	search := strings.ToLower(strings.TrimSpace(q.Search))
	locked := !q.Now.IsZero() && utils.AfterDay(date, q.Now)

	view := View{Date: date, Mode: mode, Search: q.Search}
	scheduled := 0

	for _, c := range categories {
		var items []Item
		for _, t := range c.Trackers {
			if !t.Schedule.Contains(weekday) {
				continue
			}
			scheduled++

			done := ledger.IsCompleted(t.ID, date)
			switch mode {
			case models.FilterCompleted:
				if !done {
					continue
				}
			case models.FilterUncompleted:
				if done {
					continue
				}
			}
			if search != "" && !strings.Contains(strings.ToLower(t.Name), search) {
				continue
			}
			items = append(items, Item{
				Tracker:         t,
				Completed:       done,
				CompletionCount: ledger.Count(t.ID),
				Locked:          locked,
			})
		}
		if len(items) > 0 {
			view.Sections = append(view.Sections, Section{Title: c.Title, Items: items})
		}
	}

	view.ShowFilterButton = scheduled > 0
	view.Empty = len(view.Sections) == 0
	switch {
	case !view.Empty:
		view.EmptyReason = NotEmpty
	case scheduled == 0:
		view.EmptyReason = NothingScheduled
	default:
		view.EmptyReason = NothingFound
	}
	return view
}
