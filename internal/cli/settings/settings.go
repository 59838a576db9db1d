package settings

import (
	"fmt"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone   *string `help:"IANA timezone used to decide what today is (or Local)."`
	Filter     *string `help:"Board filter restored on startup: all, today, completed or uncompleted."`
	ShowCounts *bool   `help:"Show completion counters on the board."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	b, err := ctx.Board()
	if err != nil {
		return err
	}
	settings := b.Snapshot().Settings

	if c.List {
		fmt.Println("Current Settings:")
		fmt.Printf("  Timezone:    %s\n", settings.Timezone)
		fmt.Printf("  Filter:      %s (%s)\n", settings.SelectedFilter, settings.SelectedFilter.Label())
		fmt.Printf("  Show Counts: %v\n", settings.ShowCounts)
		if ctx.Config != nil && ctx.Config.Timezone != "" {
			fmt.Printf("\n  TALLY_TIMEZONE=%s overrides the timezone setting.\n", ctx.Config.Timezone)
		}
		return nil
	}

	updated := false
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return fmt.Errorf("invalid timezone: %s", *c.Timezone)
		}
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.Filter != nil {
		mode, err := models.ParseFilterMode(*c.Filter)
		if err != nil {
			return err
		}
		settings.SelectedFilter = mode
		updated = true
	}
	if c.ShowCounts != nil {
		settings.ShowCounts = *c.ShowCounts
		updated = true
	}

	if updated {
		if err := b.SaveSettings(settings); err != nil {
			return err
		}
		fmt.Println("Settings updated successfully.")
	} else {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
	}

	return nil
}
