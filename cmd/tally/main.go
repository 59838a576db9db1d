package main

import (
	"github.com/alecthomas/kong"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/cli/backups"
	"github.com/julianstephens/tally/internal/cli/categories"
	"github.com/julianstephens/tally/internal/cli/settings"
	"github.com/julianstephens/tally/internal/cli/system"
	"github.com/julianstephens/tally/internal/cli/trackers"
	"github.com/julianstephens/tally/internal/config"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Database file path or PostgreSQL connection string. PostgreSQL credentials must NOT be embedded; use TALLY_DB_CONNECTION, .pgpass or the OS keyring." type:"string"`
	Debug   bool   `help:"Log debug output to stderr."`

	Init     system.InitCmd         `cmd:"" help:"Initialize tally storage."`
	Migrate  system.MigrateCmd      `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd       `cmd:"" help:"Run health checks and diagnostics."`
	Keyring  system.KeyringCmd      `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Tui      system.TuiCmd          `cmd:"" help:"Launch the interactive board." default:"1"`
	Board    trackers.BoardCmd      `cmd:"" help:"Print the board for a day."`
	Mark     trackers.MarkCmd       `cmd:"" help:"Mark a tracker done."`
	Unmark   trackers.UnmarkCmd     `cmd:"" help:"Clear a tracker's completion."`
	Stats    trackers.StatsCmd      `cmd:"" help:"Show completion statistics."`
	Tracker  trackers.TrackerCmd    `cmd:"" help:"Manage trackers."`
	Category categories.CategoryCmd `cmd:"" help:"Manage categories."`
	Settings settings.SettingsCmd   `cmd:"" help:"Manage application settings."`
	Backup   backups.BackupCmd      `cmd:"" help:"Manage database backups."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit and event tracker"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.New()
	if err != nil {
		errors.Fatal(err)
	}
	if err := logger.Init(logger.Config{Debug: CLI.Debug || cfg.Debug, ConfigDir: cfg.ConfigDir}); err != nil {
		errors.Fatal(err)
	}

	target, err := cfg.ResolveTarget(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}
	logger.Debug("Resolved store", "source", target.Source, "postgres", target.Postgres)

	appCtx := &cli.Context{
		Store:  config.OpenStore(target),
		Config: cfg,
	}
	defer appCtx.Store.Close()

	if err := ctx.Run(appCtx); err != nil {
		appCtx.Store.Close()
		errors.Fatal(err)
	}
}
