package trackers

import (
	"fmt"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/completion"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/utils"
	"github.com/julianstephens/tally/internal/visibility"
)

type BoardCmd struct {
	Date   string `help:"Day to show: today, yesterday, tomorrow or YYYY-MM-DD." default:""`
	Filter string `short:"f" help:"Filter: all, today, completed or uncompleted. The choice is remembered."`
	Search string `short:"s" help:"Only show trackers whose name contains this text."`
}

func (c *BoardCmd) Run(ctx *cli.Context) error {
	b, err := ctx.Board()
	if err != nil {
		return err
	}

	// Filter first: Today mode resets the date, an explicit --date then
	// leaves it.
	if c.Filter != "" {
		mode, err := models.ParseFilterMode(c.Filter)
		if err != nil {
			return err
		}
		if _, err := b.SelectFilter(mode); err != nil {
			return err
		}
	}
	if c.Date != "" {
		date, err := utils.ParseDayArg(c.Date, ctx.Now())
		if err != nil {
			return err
		}
		b.SelectDate(date)
	}
	view := b.Search(c.Search)

	printView(view, b.Snapshot().Settings.ShowCounts)
	return nil
}

func printView(view visibility.View, showCounts bool) {
	fmt.Printf("%s · %s\n", view.Date.Format("Monday, Jan 2 2006"), view.Mode.Label())
	if view.Search != "" {
		fmt.Printf("Search: %q\n", view.Search)
	}
	fmt.Println()

	if view.Empty {
		fmt.Println(view.EmptyReason.String())
		return
	}

	var all []models.Tracker
	for _, s := range view.Sections {
		for _, item := range s.Items {
			all = append(all, item.Tracker)
		}
	}
	width := cli.NameWidth(all, maxNameWidth)

	done := 0
	for i, s := range view.Sections {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(s.Title)
		for _, item := range s.Items {
			if item.Completed {
				done++
			}
			line := fmt.Sprintf("  %s %s %s",
				cli.Checkbox(item.Completed, item.Locked),
				item.Tracker.Emoji,
				cli.Pad(cli.Truncate(item.Tracker.Name, width), width),
			)
			if showCounts {
				line += "  " + completion.DaysLabel(item.CompletionCount)
			}
			fmt.Println(line)
		}
	}
	fmt.Printf("\nCompleted: %d/%d\n", done, view.ItemCount())
}
