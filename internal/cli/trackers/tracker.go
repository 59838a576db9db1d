package trackers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/tally/internal/board"
	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
)

type TrackerCmd struct {
	Add     TrackerAddCmd     `cmd:"" help:"Add a new tracker."`
	Edit    TrackerEditCmd    `cmd:"" help:"Edit a tracker."`
	List    TrackerListCmd    `cmd:"" help:"List trackers by category."`
	Delete  TrackerDeleteCmd  `cmd:"" help:"Delete a tracker (soft delete)."`
	Restore TrackerRestoreCmd `cmd:"" help:"Restore a deleted tracker."`
}

type TrackerAddCmd struct {
	Name     string `arg:"" help:"Tracker name."`
	Emoji    string `short:"e" help:"A single emoji shown next to the name." required:""`
	Color    string `short:"c" help:"Color as #RRGGBB." default:"#33CF69"`
	Category string `short:"g" help:"Category title." default:"General"`
	Days     string `short:"d" help:"Comma-separated weekdays, or daily|weekdays|weekends." default:"daily"`
	Event    bool   `help:"Track an irregular event instead of a weekly habit."`
}

func (c *TrackerAddCmd) Run(ctx *cli.Context) error {
	b, err := ctx.Board()
	if err != nil {
		return err
	}

	if _, _, err := b.FindTracker(c.Name); err == nil || errors.Is(err, board.ErrAmbiguous) {
		return fmt.Errorf("tracker with name %q already exists", c.Name)
	}

	draft := board.Draft{
		Name:     c.Name,
		Emoji:    c.Emoji,
		Color:    c.Color,
		Category: c.Category,
		Kind:     models.TrackerKindHabit,
	}
	if c.Event {
		draft.Kind = models.TrackerKindEvent
	} else {
		schedule, err := models.ParseSchedule(c.Days)
		if err != nil {
			return err
		}
		draft.Schedule = schedule
	}

	t, err := b.AddTracker(draft)
	if err != nil {
		return err
	}

	fmt.Printf("Added tracker: %s %s (ID: %s)\n", t.Emoji, t.Name, t.ID)
	return nil
}

type TrackerEditCmd struct {
	Tracker string `arg:"" help:"Tracker name or ID."`

	Name     *string `help:"New name."`
	Emoji    *string `short:"e" help:"New emoji."`
	Color    *string `short:"c" help:"New color as #RRGGBB."`
	Category *string `short:"g" help:"Move to another category."`
	Days     *string `short:"d" help:"New weekdays. Turns an event into a habit."`
	Event    bool    `help:"Turn the tracker into an irregular event."`
}

func (c *TrackerEditCmd) Run(ctx *cli.Context) error {
	b, err := ctx.Board()
	if err != nil {
		return err
	}

	t, category, err := b.FindTracker(c.Tracker)
	if err != nil {
		return err
	}
	if c.Event && c.Days != nil {
		return fmt.Errorf("--event and --days cannot be combined")
	}

	draft := board.DraftFrom(t, category)
	updated := false
	if c.Name != nil {
		if other, _, err := b.FindTracker(*c.Name); err == nil && other.ID != t.ID {
			return fmt.Errorf("tracker with name %q already exists", *c.Name)
		}
		draft.Name = *c.Name
		updated = true
	}
	if c.Emoji != nil {
		draft.Emoji = *c.Emoji
		updated = true
	}
	if c.Color != nil {
		draft.Color = *c.Color
		updated = true
	}
	if c.Category != nil {
		draft.Category = *c.Category
		updated = true
	}
	if c.Days != nil {
		schedule, err := models.ParseSchedule(*c.Days)
		if err != nil {
			return err
		}
		draft.Schedule = schedule
		draft.Kind = models.TrackerKindHabit
		updated = true
	}
	if c.Event {
		draft.Kind = models.TrackerKindEvent
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified.")
		return nil
	}

	if _, err := b.UpdateTracker(t.ID, draft); err != nil {
		return err
	}
	fmt.Printf("Updated tracker: %s (ID: %s)\n", draft.Name, t.ID)
	return nil
}

type TrackerDeleteCmd struct {
	Name string `arg:"" help:"Tracker name or ID."`
}

func (c *TrackerDeleteCmd) Run(ctx *cli.Context) error {
	b, err := ctx.Board()
	if err != nil {
		return err
	}

	t, _, err := b.FindTracker(c.Name)
	if err != nil {
		return fmt.Errorf("failed to find tracker: %w", err)
	}
	if err := b.DeleteTracker(t.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted tracker: %s (ID: %s)\n", t.Name, t.ID)
	fmt.Printf("Completion history is kept. Restore with: tally tracker restore %s\n", t.ID)
	return nil
}

type TrackerRestoreCmd struct {
	Name string `arg:"" help:"Deleted tracker name or ID."`
}

func (c *TrackerRestoreCmd) Run(ctx *cli.Context) error {
	b, err := ctx.Board()
	if err != nil {
		return err
	}

	id, name, err := findDeleted(ctx.Store, c.Name)
	if err != nil {
		return err
	}
	if err := b.RestoreTracker(id); err != nil {
		return err
	}

	fmt.Printf("Restored tracker: %s (ID: %s)\n", name, id)
	return nil
}

// findDeleted resolves a soft deleted tracker by id or case-insensitive name.
func findDeleted(store storage.Provider, nameOrID string) (id, name string, err error) {
	rows, err := store.GetAllTrackerRows(true)
	if err != nil {
		return "", "", fmt.Errorf("failed to get trackers: %w", err)
	}

	needle := strings.TrimSpace(nameOrID)
	var matches []models.TrackerRow
	for _, row := range rows {
		if row.DeletedAt == nil || row.ID == nil {
			continue
		}
		if *row.ID == needle {
			return *row.ID, deref(row.Name), nil
		}
		if row.Name != nil && strings.EqualFold(*row.Name, needle) {
			matches = append(matches, row)
		}
	}

	switch len(matches) {
	case 0:
		return "", "", fmt.Errorf("deleted tracker %q: %w", nameOrID, storage.ErrNotFound)
	case 1:
		return *matches[0].ID, deref(matches[0].Name), nil
	default:
		return "", "", fmt.Errorf("%w: %q (use the id instead)", board.ErrAmbiguous, nameOrID)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
