package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/julianstephens/tally/internal/aggregate"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
)

// ConflictType represents the type of integrity problem
type ConflictType string

const (
	ConflictMalformedTracker     ConflictType = "malformed_tracker"
	ConflictDuplicateTrackerName ConflictType = "duplicate_tracker_name"
	ConflictEmptySchedule        ConflictType = "empty_schedule"
	ConflictOrphanRecord         ConflictType = "orphan_record"
	ConflictInvalidRecordDay     ConflictType = "invalid_record_day"
	ConflictFutureRecord         ConflictType = "future_record"
)

// Conflict is a single problem found in the stored data
type Conflict struct {
	Type        ConflictType
	Description string
	Day         string   // YYYY-MM-DD format (if applicable)
	TrackerIDs  []string // IDs of trackers involved
}

func (c Conflict) Error() string {
	return c.Description
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Err combines the conflicts into one error, or nil.
func (vr *ValidationResult) Err() error {
	var result *multierror.Error
	for _, c := range vr.Conflicts {
		result = multierror.Append(result, c)
	}
	return result.ErrorOrNil()
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var sb strings.Builder
	sb.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&sb, "- %s\n", conflict.Description)
	}
	return sb.String()
}

// Count returns the number of conflicts of type t.
func (vr *ValidationResult) Count(t ConflictType) int {
	n := 0
	for _, c := range vr.Conflicts {
		if c.Type == t {
			n++
		}
	}
	return n
}

// Validator checks stored trackers and completion records
type Validator struct {
	now func() time.Time
}

// New creates a new Validator. now decides which record days are in the future.
func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

// ValidateTrackers checks live tracker rows.
func (v *Validator) ValidateTrackers(rows []models.TrackerRow) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	live := make([]models.TrackerRow, 0, len(rows))
	for _, row := range rows {
		if row.DeletedAt == nil {
			live = append(live, row)
		}
	}

	report := aggregate.Build(live)
	for _, res := range report.Rejected() {
		var ids []string
		if res.Row.ID != nil {
			ids = []string{*res.Row.ID}
		}
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictMalformedTracker,
			Description: fmt.Sprintf("Malformed tracker hidden from the board: %v", res.Err),
			TrackerIDs:  ids,
		})
	}

	nameIDs := make(map[string][]string)
	var names []string
	for _, c := range report.Categories {
		for _, t := range c.Trackers {
			key := strings.ToLower(t.Name)
			if _, seen := nameIDs[key]; !seen {
				names = append(names, key)
			}
			nameIDs[key] = append(nameIDs[key], t.ID)

			if t.Schedule.IsEmpty() {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictEmptySchedule,
					Description: fmt.Sprintf("Tracker \"%s\" has no weekdays and never appears", t.Name),
					TrackerIDs:  []string{t.ID},
				})
			}
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if ids := nameIDs[name]; len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateTrackerName,
				Description: fmt.Sprintf("Duplicate tracker name: \"%s\" (IDs: %v)", name, ids),
				TrackerIDs:  ids,
			})
		}
	}

	return result
}

// ValidateRecords checks completion records against every known tracker
// row, deleted ones included.
func (v *Validator) ValidateRecords(rows []models.TrackerRow, records []models.CompletionRecord) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	known := make(map[string]bool, len(rows))
	for _, row := range rows {
		if row.ID != nil {
			known[*row.ID] = true
		}
	}

	today := v.now().Format(constants.DateFormat)
	for _, r := range records {
		if !known[r.TrackerID] {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictOrphanRecord,
				Description: fmt.Sprintf("Completion record %s references unknown tracker %s", r.ID, r.TrackerID),
				Day:         r.Day,
				TrackerIDs:  []string{r.TrackerID},
			})
		}
		if _, err := time.Parse(constants.DateFormat, r.Day); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidRecordDay,
				Description: fmt.Sprintf("Completion record %s has invalid day: %s", r.ID, r.Day),
				Day:         r.Day,
				TrackerIDs:  []string{r.TrackerID},
			})
			continue
		}
		// YYYY-MM-DD compares chronologically as a string.
		if r.Day > today {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictFutureRecord,
				Description: fmt.Sprintf("Completion record %s is dated in the future: %s", r.ID, r.Day),
				Day:         r.Day,
				TrackerIDs:  []string{r.TrackerID},
			})
		}
	}

	return result
}

// Validate runs every check and merges the results.
func (v *Validator) Validate(rows []models.TrackerRow, records []models.CompletionRecord) ValidationResult {
	trackers := v.ValidateTrackers(rows)
	recs := v.ValidateRecords(rows, records)
	return ValidationResult{Conflicts: append(trackers.Conflicts, recs.Conflicts...)}
}
