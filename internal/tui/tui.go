package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/tally/internal/board"
	"github.com/julianstephens/tally/internal/logger"
)

// Run shows the board until the user quits or ctx is cancelled. Store
// changes are picked up by the board's event loop for the whole session.
func Run(ctx context.Context, b *board.Board) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Board event loop stopped", "error", err)
		}
	}()

	p := tea.NewProgram(NewModel(b), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
