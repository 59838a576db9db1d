package board

import (
	"time"

	"github.com/julianstephens/tally/internal/aggregate"
	"github.com/julianstephens/tally/internal/completion"
	"github.com/julianstephens/tally/internal/models"
)

// Snapshot is one immutable, fully loaded state of the store. A new value is
// built for every reload; existing snapshots are never modified.
type Snapshot struct {
	// Version increases by one per snapshot built by this board.
	Version uint64
	// StoreSeq is the store's change sequence observed before loading.
	// Every change with Seq <= StoreSeq is reflected in the snapshot.
	StoreSeq   uint64
	Report     aggregate.Report
	Categories []models.Category
	Records    []models.CompletionRecord
	Ledger     *completion.Ledger
	Settings   models.Settings
	LoadedAt   time.Time
}

// Trackers flattens the categories.
func (s *Snapshot) Trackers() []models.Tracker {
	var out []models.Tracker
	for _, c := range s.Categories {
		out = append(out, c.Trackers...)
	}
	return out
}
