package system

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	b, err := ctx.Board()
	if err != nil {
		return err
	}

	// Perform automatic backup on TUI startup (after successful load)
	ctx.PerformAutomaticBackup()

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	return tui.Run(runCtx, b)
}
