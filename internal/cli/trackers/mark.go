package trackers

import (
	"fmt"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/utils"
)

type MarkCmd struct {
	Name string `arg:"" help:"Tracker name or ID."`
	Date string `help:"Day to mark: today, yesterday or YYYY-MM-DD (default: today)." default:""`
}

func (c *MarkCmd) Run(ctx *cli.Context) error {
	b, err := ctx.Board()
	if err != nil {
		return err
	}

	t, _, err := b.FindTracker(c.Name)
	if err != nil {
		return err
	}
	date, err := utils.ParseDayArg(c.Date, ctx.Now())
	if err != nil {
		return err
	}

	if err := b.MarkCompleted(t.ID, date); err != nil {
		return fmt.Errorf("failed to mark %q: %w", t.Name, err)
	}
	fmt.Printf("Marked %s %s for %s\n", t.Emoji, t.Name, models.DayOf(date))
	return nil
}

type UnmarkCmd struct {
	Name string `arg:"" help:"Tracker name or ID."`
	Date string `help:"Day to unmark: today, yesterday or YYYY-MM-DD (default: today)." default:""`
}

func (c *UnmarkCmd) Run(ctx *cli.Context) error {
	b, err := ctx.Board()
	if err != nil {
		return err
	}

	t, _, err := b.FindTracker(c.Name)
	if err != nil {
		return err
	}
	date, err := utils.ParseDayArg(c.Date, ctx.Now())
	if err != nil {
		return err
	}

	if err := b.MarkUncompleted(t.ID, date); err != nil {
		return fmt.Errorf("failed to unmark %q: %w", t.Name, err)
	}
	fmt.Printf("Unmarked %s %s for %s\n", t.Emoji, t.Name, models.DayOf(date))
	return nil
}
