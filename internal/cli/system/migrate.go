package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/migration"
)

// schemaStore is implemented by the SQL backed stores.
type schemaStore interface {
	Migrate(logFn func(string)) (int, error)
	SchemaVersion() (current, latest int, err error)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	// An outdated schema is exactly what this command fixes.
	if err := ctx.Store.Load(); err != nil && !errors.Is(err, migration.ErrSchemaOutdated) {
		return fmt.Errorf("failed to load database: %w", err)
	}
	defer ctx.Store.Close()

	store, ok := ctx.Store.(schemaStore)
	if !ok {
		return fmt.Errorf("migrate is not supported by this storage backend")
	}

	count, err := store.Migrate(func(msg string) {
		fmt.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
