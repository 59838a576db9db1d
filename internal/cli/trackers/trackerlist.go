package trackers

import (
	"fmt"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/completion"
	"github.com/julianstephens/tally/internal/constants"
)

const maxNameWidth = 24

type TrackerListCmd struct {
	Deleted bool `help:"Show deleted trackers instead."`
	IDs     bool `name:"ids" help:"Show tracker IDs."`
}

func (c *TrackerListCmd) Run(ctx *cli.Context) error {
	b, err := ctx.Board()
	if err != nil {
		return err
	}

	if c.Deleted {
		return c.listDeleted(ctx)
	}

	snap := b.Snapshot()
	trackers := snap.Trackers()
	if len(trackers) == 0 {
		fmt.Println("No trackers found.")
		return nil
	}

	width := cli.NameWidth(trackers, maxNameWidth)
	for i, cat := range snap.Categories {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(cat.Title)
		for _, t := range cat.Trackers {
			line := fmt.Sprintf("  %s %s  %-16s %s",
				t.Emoji,
				cli.Pad(cli.Truncate(t.Name, width), width),
				cli.FormatSchedule(t),
				completion.DaysLabel(snap.Ledger.Count(t.ID)),
			)
			if c.IDs {
				line += "  " + t.ID
			}
			fmt.Println(line)
		}
	}

	if rejected := snap.Report.Rejected(); len(rejected) > 0 {
		fmt.Printf("\n%d tracker(s) could not be loaded. Run 'tally doctor' for details.\n", len(rejected))
	}
	return nil
}

func (c *TrackerListCmd) listDeleted(ctx *cli.Context) error {
	rows, err := ctx.Store.GetAllTrackerRows(true)
	if err != nil {
		return fmt.Errorf("failed to get trackers: %w", err)
	}

	found := 0
	for _, row := range rows {
		if row.DeletedAt == nil {
			continue
		}
		found++
		fmt.Printf("%s %s [DELETED %s]  %s\n",
			deref(row.Emoji),
			deref(row.Name),
			row.DeletedAt.Format(constants.DateFormat),
			deref(row.ID),
		)
	}
	if found == 0 {
		fmt.Println("No deleted trackers.")
	}
	return nil
}
