package trackers

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/completion"
)

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	b, err := ctx.Board()
	if err != nil {
		return err
	}

	summary := b.Stats()
	fmt.Println("Statistics:")
	fmt.Printf("  Completed:     %s\n", humanize.Comma(int64(summary.Completed)))
	fmt.Printf("  Best streak:   %s\n", completion.DaysLabel(summary.BestStreak))
	fmt.Printf("  Perfect days:  %s\n", humanize.Comma(int64(summary.PerfectDays)))
	fmt.Printf("  Daily average: %s\n", humanize.FtoaWithDigits(summary.Average, 1))

	trackers := b.Snapshot().Trackers()
	if len(trackers) == 0 {
		return nil
	}
	sort.SliceStable(trackers, func(i, j int) bool {
		return summary.PerTracker[trackers[i].ID] > summary.PerTracker[trackers[j].ID]
	})

	width := cli.NameWidth(trackers, maxNameWidth)
	fmt.Println("\nBy tracker:")
	for _, t := range trackers {
		fmt.Printf("  %s %s  %s\n",
			t.Emoji,
			cli.Pad(cli.Truncate(t.Name, width), width),
			completion.DaysLabel(summary.PerTracker[t.ID]),
		)
	}
	return nil
}
