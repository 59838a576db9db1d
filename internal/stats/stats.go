package stats

import (
	"sort"
	"time"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
)

// Summary is derived entirely from trackers and completion records.
type Summary struct {
	// Completed is the number of distinct (tracker, day) completions.
	Completed int
	// BestStreak is the longest run of consecutive days with at least one completion.
	BestStreak int
	// PerfectDays counts days on which every tracker scheduled that day was
	// completed. Trackers created later are only counted where backfilled.
	PerfectDays int
	// Average is completions per active day.
	Average float64
	// PerTracker is the number of completed days per tracker id.
	PerTracker map[string]int
}

// Compute builds a Summary. Records for trackers that no longer exist are
// ignored, as are unparseable days.
func Compute(trackers []models.Tracker, records []models.CompletionRecord) Summary {
	known := make(map[string]models.Tracker, len(trackers))
	for _, t := range trackers {
		known[t.ID] = t
	}

	byDay := make(map[string]map[string]bool)
	perTracker := make(map[string]int)
	for _, r := range records {
		if _, ok := known[r.TrackerID]; !ok {
			continue
		}
		if _, err := time.Parse(constants.DateFormat, r.Day); err != nil {
			continue
		}
		if byDay[r.Day] == nil {
			byDay[r.Day] = make(map[string]bool)
		}
		if byDay[r.Day][r.TrackerID] {
			continue
		}
		byDay[r.Day][r.TrackerID] = true
		perTracker[r.TrackerID]++
	}

	s := Summary{PerTracker: perTracker}
	if len(byDay) == 0 {
		return s
	}

	days := make([]string, 0, len(byDay))
	for d, done := range byDay {
		days = append(days, d)
		s.Completed += len(done)
	}
	sort.Strings(days)

	s.Average = float64(s.Completed) / float64(len(days))
	s.BestStreak = bestStreak(days)

	for _, d := range days {
		date, _ := time.Parse(constants.DateFormat, d)
		scheduled := 0
		perfect := true
		for _, t := range trackers {
			if !t.Schedule.Contains(date.Weekday()) {
				continue
			}
			// Not owed before it existed, unless it was backfilled that day.
			if !t.CreatedAt.IsZero() && models.DayOf(t.CreatedAt) > d && !byDay[d][t.ID] {
				continue
			}
			scheduled++
			if !byDay[d][t.ID] {
				perfect = false
				break
			}
		}
		if scheduled > 0 && perfect {
			s.PerfectDays++
		}
	}
	return s
}

// bestStreak expects sorted, distinct YYYY-MM-DD days.
func bestStreak(days []string) int {
	best, run := 0, 0
	var prev time.Time
	for i, d := range days {
		cur, _ := time.Parse(constants.DateFormat, d)
		if i > 0 && cur.Sub(prev) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
		prev = cur
	}
	return best
}
