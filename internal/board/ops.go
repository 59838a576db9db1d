package board

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/models"
)

// Draft is the user input for a new or edited tracker.
type Draft struct {
	Name     string
	Emoji    string
	Color    string
	Schedule models.Schedule
	Kind     models.TrackerKind
	Category string
}

// build validates the draft into a tracker with the given id.
func (d Draft) build(id string, createdAt time.Time) (models.Tracker, string, error) {
	kind := d.Kind
	if kind == "" {
		kind = models.TrackerKindHabit
	}
	schedule := d.Schedule
	if kind == models.TrackerKindEvent {
		schedule = models.EveryDay()
	}
	if schedule.IsEmpty() {
		return models.Tracker{}, "", fmt.Errorf("choose at least one weekday")
	}

	colorStr := strings.TrimSpace(d.Color)
	if colorStr == "" {
		colorStr = constants.DefaultTrackerColor
	}
	color, err := models.ParseColor(colorStr)
	if err != nil {
		return models.Tracker{}, "", err
	}

	category := strings.TrimSpace(d.Category)
	if category == "" {
		category = constants.DefaultCategoryTitle
	}

	t := models.Tracker{
		ID:        id,
		Name:      strings.TrimSpace(d.Name),
		Color:     color,
		Emoji:     strings.TrimSpace(d.Emoji),
		Schedule:  schedule,
		Kind:      kind,
		CreatedAt: createdAt,
	}
	if err := t.Validate(); err != nil {
		return models.Tracker{}, "", err
	}
	return t, category, nil
}

// DraftFrom prefills a draft for editing.
func DraftFrom(t models.Tracker, category string) Draft {
	return Draft{
		Name:     t.Name,
		Emoji:    t.Emoji,
		Color:    t.Color.String(),
		Schedule: t.Schedule,
		Kind:     t.Kind,
		Category: category,
	}
}

// AddTracker creates a tracker, creating its category when needed.
func (b *Board) AddTracker(d Draft) (models.Tracker, error) {
	t, category, err := d.build(b.newID(), b.now())
	if err != nil {
		return models.Tracker{}, err
	}
	defer b.refresh()

	if err := b.store.AddTracker(t, category); err != nil {
		logger.Error("Failed to add tracker", "tracker", t.ID, "name", t.Name, "error", err)
		return models.Tracker{}, fmt.Errorf("failed to add tracker: %w", err)
	}
	logger.Info("Tracker added", "tracker", t.ID, "category", category)
	return t, nil
}

// UpdateTracker replaces the tracker's fields, keeping its id and history.
func (b *Board) UpdateTracker(id string, d Draft) (models.Tracker, error) {
	current, _, err := b.FindTracker(id)
	if err != nil {
		return models.Tracker{}, err
	}
	t, category, err := d.build(current.ID, current.CreatedAt)
	if err != nil {
		return models.Tracker{}, err
	}
	defer b.refresh()

	if err := b.store.UpdateTracker(t, category); err != nil {
		logger.Error("Failed to update tracker", "tracker", t.ID, "error", err)
		return models.Tracker{}, fmt.Errorf("failed to update tracker: %w", err)
	}
	return t, nil
}

func (b *Board) DeleteTracker(id string) error {
	defer b.refresh()
	if err := b.store.DeleteTracker(id); err != nil {
		logger.Error("Failed to delete tracker", "tracker", id, "error", err)
		return fmt.Errorf("failed to delete tracker: %w", err)
	}
	return nil
}

func (b *Board) RestoreTracker(id string) error {
	defer b.refresh()
	if err := b.store.RestoreTracker(id); err != nil {
		logger.Error("Failed to restore tracker", "tracker", id, "error", err)
		return fmt.Errorf("failed to restore tracker: %w", err)
	}
	return nil
}

// Toggle flips the tracker's completion on the selected date and returns the
// new state.
func (b *Board) Toggle(id string) (bool, error) {
	date := b.Selection().Date
	defer b.refresh()
	return b.completion.Toggle(b.Snapshot().Ledger, id, date)
}

func (b *Board) MarkCompleted(id string, date time.Time) error {
	defer b.refresh()
	return b.completion.MarkCompleted(id, date)
}

func (b *Board) MarkUncompleted(id string, date time.Time) error {
	defer b.refresh()
	return b.completion.MarkUncompleted(id, date)
}

// SaveSettings persists settings other than the selected filter.
func (b *Board) SaveSettings(s models.Settings) error {
	defer b.refresh()
	if err := b.store.SaveSettings(s); err != nil {
		logger.Error("Failed to save settings", "error", err)
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// RenameCategory renames or merges a category.
func (b *Board) RenameCategory(oldTitle, newTitle string) error {
	defer b.refresh()
	if err := b.store.RenameCategory(oldTitle, newTitle); err != nil {
		logger.Error("Failed to rename category", "from", oldTitle, "to", newTitle, "error", err)
		return fmt.Errorf("failed to rename category: %w", err)
	}
	return nil
}

func (b *Board) DeleteCategory(title string) error {
	defer b.refresh()
	if err := b.store.DeleteCategory(title); err != nil {
		logger.Error("Failed to delete category", "category", title, "error", err)
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
