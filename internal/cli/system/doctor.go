package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/completion"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/migration"
	"github.com/julianstephens/tally/internal/utils"
	"github.com/julianstephens/tally/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name string
	// needsDB checks are skipped when the database cannot be loaded
	needsDB bool
	// warnOnly checks never fail the run
	warnOnly bool
	run      func(ctx *cli.Context) error
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := true
	checks := []check{
		{name: "Schema version", needsDB: true, run: checkSchemaVersion},
		{name: "Settings", needsDB: true, run: checkSettings},
		{name: "Tracker integrity", needsDB: true, run: checkTrackers},
		{name: "Completion records", needsDB: true, run: checkRecords},
		{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
		{name: "Clock/timezone", run: func(c *cli.Context) error { return checkClockTimezone(c, dbReachable) }},
	}

	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	if dbReachable {
		if summary, err := recordSummary(ctx); err == nil {
			fmt.Printf("\n%s\n", summary)
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

// checkDBReachable opens the database without requiring the latest schema,
// so that the schema check below can report on it separately.
func checkDBReachable(ctx *cli.Context) error {
	err := ctx.Store.Load()
	if err == nil || errors.Is(err, migration.ErrSchemaOutdated) || errors.Is(err, migration.ErrSchemaTooNew) {
		return nil
	}
	return fmt.Errorf("failed to load database: %w", err)
}

func checkSchemaVersion(ctx *cli.Context) error {
	store, ok := ctx.Store.(schemaStore)
	if !ok {
		return nil
	}
	current, latest, err := store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run '%s migrate')", current, latest, constants.AppName)
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("invalid timezone setting: %s", settings.Timezone)
	}
	return nil
}

func checkTrackers(ctx *cli.Context) error {
	rows, err := ctx.Store.GetAllTrackerRows(false)
	if err != nil {
		return fmt.Errorf("failed to get trackers: %w", err)
	}
	result := validation.New(ctx.Now).ValidateTrackers(rows)
	return result.Err()
}

func checkRecords(ctx *cli.Context) error {
	rows, err := ctx.Store.GetAllTrackerRows(true)
	if err != nil {
		return fmt.Errorf("failed to get trackers: %w", err)
	}
	records, err := ctx.Store.GetCompletionRecords()
	if err != nil {
		return fmt.Errorf("failed to get completion records: %w", err)
	}
	result := validation.New(ctx.Now).ValidateRecords(rows, records)
	return result.Err()
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with '%s backup create'", constants.AppName)
	}
	return nil
}

// recordSummary counts active trackers and distinct completion records.
func recordSummary(ctx *cli.Context) (string, error) {
	rows, err := ctx.Store.GetAllTrackerRows(false)
	if err != nil {
		return "", fmt.Errorf("failed to get trackers: %w", err)
	}
	records, err := ctx.Store.GetCompletionRecords()
	if err != nil {
		return "", fmt.Errorf("failed to get completion records: %w", err)
	}
	ledger := completion.NewLedger(records)
	return fmt.Sprintf("%d trackers, %d completion records", len(rows), ledger.Len()), nil
}

// effectiveTimezone mirrors cli.Context.Now: TALLY_TIMEZONE wins over the
// persisted setting, which is only read from a loaded store.
func effectiveTimezone(ctx *cli.Context, storeLoaded bool) string {
	if ctx.Config != nil && ctx.Config.Timezone != "" {
		return ctx.Config.Timezone
	}
	if storeLoaded {
		if settings, err := ctx.Store.GetSettings(); err == nil && settings.Timezone != "" {
			return settings.Timezone
		}
	}
	return constants.DefaultTimezone
}

func checkClockTimezone(ctx *cli.Context, storeLoaded bool) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	tz := effectiveTimezone(ctx, storeLoaded)
	if _, err := utils.GetTodayInTimezone(tz); err != nil {
		return fmt.Errorf("cannot resolve today in timezone %q: %w", tz, err)
	}
	return nil
}
