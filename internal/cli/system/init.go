package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/storage/sqlite"
)

type InitCmd struct {
	Force bool `help:"Force reset by deleting existing database before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if _, ok := ctx.Store.(*sqlite.Store); !ok {
			return fmt.Errorf("--force is only supported for SQLite databases")
		}
		dbPath := ctx.Store.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			// Close first so the file is not held open while deleting
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized %s storage at: %s\n", constants.AppName, ctx.Store.GetConfigPath())
	return nil
}
