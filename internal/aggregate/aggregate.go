// Package aggregate turns persisted tracker rows into the ordered category
// list shown on the board. Rows that cannot produce a complete tracker are
// rejected individually and never reach a category.
package aggregate

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/julianstephens/tally/internal/models"
)

var (
	ErrMissingField = errors.New("missing required field")
	ErrInvalidField = errors.New("invalid field")
	ErrDuplicateID  = errors.New("duplicate tracker id")
)

// FieldError describes why a single row was rejected.
type FieldError struct {
	RowID  string
	Field  string
	Reason error
	Detail string
}

func (e *FieldError) Error() string {
	id := e.RowID
	if id == "" {
		id = "<no id>"
	}
	if e.Detail != "" {
		return fmt.Sprintf("tracker %s: %s: %v: %s", id, e.Field, e.Reason, e.Detail)
	}
	return fmt.Sprintf("tracker %s: %s: %v", id, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return e.Reason }

// Result is the outcome of ingesting one row. Exactly one of Tracker or Err
// is meaningful.
type Result struct {
	Row      models.TrackerRow
	Tracker  models.Tracker
	Category string
	Err      error
}

func (r Result) Accepted() bool { return r.Err == nil }

// Report is the aggregate built from one full read of the store.
type Report struct {
	Categories []models.Category
	Results    []Result
}

// Rejected returns the results that were dropped.
func (r Report) Rejected() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Err combines every rejection into a single error, or nil.
func (r Report) Err() error {
	var result *multierror.Error
	for _, res := range r.Results {
		if res.Err != nil {
			result = multierror.Append(result, res.Err)
		}
	}
	return result.ErrorOrNil()
}

// TrackerCount is the number of trackers across all categories.
func (r Report) TrackerCount() int {
	n := 0
	for _, c := range r.Categories {
		n += len(c.Trackers)
	}
	return n
}

// Ingest converts a single row. It never panics on partial data.
func Ingest(row models.TrackerRow) Result {
	res := Result{Row: row}
	id := deref(row.ID)

	fail := func(field string, reason error, detail string) Result {
		res.Err = &FieldError{RowID: id, Field: field, Reason: reason, Detail: detail}
		return res
	}

	if strings.TrimSpace(id) == "" {
		return fail("id", ErrMissingField, "")
	}
	name := strings.TrimSpace(deref(row.Name))
	if name == "" {
		return fail("name", ErrMissingField, "")
	}
	if row.Emoji == nil || strings.TrimSpace(*row.Emoji) == "" {
		return fail("emoji", ErrMissingField, "")
	}
	if err := models.ValidateEmoji(*row.Emoji); err != nil {
		return fail("emoji", ErrInvalidField, err.Error())
	}
	if row.Color == nil || strings.TrimSpace(*row.Color) == "" {
		return fail("color", ErrMissingField, "")
	}
	color, err := models.ParseColor(*row.Color)
	if err != nil {
		return fail("color", ErrInvalidField, err.Error())
	}
	if row.Schedule == nil || strings.TrimSpace(*row.Schedule) == "" {
		return fail("schedule", ErrMissingField, "")
	}
	var schedule models.Schedule
	if err := json.Unmarshal([]byte(*row.Schedule), &schedule); err != nil {
		return fail("schedule", ErrInvalidField, err.Error())
	}
	title := strings.TrimSpace(deref(row.CategoryTitle))
	if title == "" {
		return fail("category", ErrMissingField, "")
	}

	kind := models.TrackerKind(row.Kind)
	if kind == "" {
		kind = models.TrackerKindHabit
	}
	tracker := models.Tracker{
		ID:        id,
		Name:      name,
		Color:     color,
		Emoji:     *row.Emoji,
		Schedule:  schedule,
		Kind:      kind,
		CreatedAt: row.CreatedAt,
	}
	if err := tracker.Validate(); err != nil {
		return fail("tracker", ErrInvalidField, err.Error())
	}

	res.Tracker = tracker
	res.Category = title
	return res
}

// Build ingests every row and groups accepted trackers by category title.
// Categories are ordered by title; trackers keep the order of the input rows.
// A second row with an id already accepted is rejected with ErrDuplicateID.
func Build(rows []models.TrackerRow) Report {
	report := Report{Results: make([]Result, 0, len(rows))}
	seen := make(map[string]bool, len(rows))
	index := make(map[string]int)

	for _, row := range rows {
		res := Ingest(row)
		if res.Err == nil && seen[res.Tracker.ID] {
			res.Err = &FieldError{RowID: res.Tracker.ID, Field: "id", Reason: ErrDuplicateID}
		}
		report.Results = append(report.Results, res)
		if res.Err != nil {
			continue
		}
		seen[res.Tracker.ID] = true

		i, ok := index[res.Category]
		if !ok {
			i = len(report.Categories)
			index[res.Category] = i
			report.Categories = append(report.Categories, models.Category{Title: res.Category})
		}
		report.Categories[i].Trackers = append(report.Categories[i].Trackers, res.Tracker)
	}

	sort.SliceStable(report.Categories, func(i, j int) bool {
		return report.Categories[i].Title < report.Categories[j].Title
	})
	return report
}

// FindTracker looks up a tracker by id across categories and returns it with
// its category title.
func FindTracker(categories []models.Category, id string) (models.Tracker, string, bool) {
	for _, c := range categories {
		for _, t := range c.Trackers {
			if t.ID == id {
				return t, c.Title, true
			}
		}
	}
	return models.Tracker{}, "", false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
