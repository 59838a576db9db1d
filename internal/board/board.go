// Package board holds the live state of the tracker board: the latest store
// snapshot, the user's selection and the operations that change either.
package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/julianstephens/tally/internal/aggregate"
	"github.com/julianstephens/tally/internal/completion"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/stats"
	"github.com/julianstephens/tally/internal/storage"
	"github.com/julianstephens/tally/internal/utils"
	"github.com/julianstephens/tally/internal/visibility"
)

// ErrAmbiguous is returned by FindTracker when a name matches several trackers.
var ErrAmbiguous = errors.New("name matches more than one tracker")

type Options struct {
	// Now returns the current time in the user's timezone.
	Now   func() time.Time
	NewID func() string
	// UpdateBuffer is the capacity of the Updates channel.
	UpdateBuffer int
}

// Selection is what the user is looking at.
type Selection struct {
	Date   time.Time
	Mode   models.FilterMode
	Search string
}

// Update is emitted whenever the visible board changes.
type Update struct {
	Version uint64
	View    visibility.View
	Diff    Diff
}

type Board struct {
	store      storage.Provider
	completion *completion.Service
	now        func() time.Time
	newID      func() string

	snap    atomic.Pointer[Snapshot]
	version atomic.Uint64

	// reduceMu makes reload the single writer of snap.
	reduceMu sync.Mutex

	mu       sync.Mutex
	sel      Selection
	lastView visibility.View
	updates  chan Update
}

// New loads the store and restores the persisted filter selection.
func New(store storage.Provider, opts Options) (*Board, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.UpdateBuffer < 1 {
		opts.UpdateBuffer = 16
	}

	b := &Board{
		store:      store,
		completion: completion.NewService(store, opts.Now, opts.NewID),
		now:        opts.Now,
		newID:      opts.NewID,
		updates:    make(chan Update, opts.UpdateBuffer),
	}

	if err := b.reload(); err != nil {
		return nil, err
	}

	mode := b.Snapshot().Settings.SelectedFilter
	if mode == "" {
		mode = models.FilterAll
	}
	b.mu.Lock()
	b.sel = Selection{Date: utils.StartOfDay(b.now()), Mode: mode}
	b.lastView = b.viewLocked()
	b.mu.Unlock()
	return b, nil
}

// Snapshot returns the current snapshot. It is never nil after New.
func (b *Board) Snapshot() *Snapshot {
	return b.snap.Load()
}

// Updates delivers view changes. Sends never block; a slow reader misses
// intermediate updates but the latest View is always available.
func (b *Board) Updates() <-chan Update {
	return b.updates
}

// Now is the board's clock, in the user's timezone.
func (b *Board) Now() time.Time {
	return b.now()
}

func (b *Board) Selection() Selection {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sel
}

// View computes the visible board for the current selection and snapshot.
func (b *Board) View() visibility.View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.viewLocked()
}

func (b *Board) viewLocked() visibility.View {
	snap := b.Snapshot()
	return visibility.Apply(snap.Categories, snap.Ledger, visibility.Query{
		Date:   b.sel.Date,
		Mode:   b.sel.Mode,
		Search: b.sel.Search,
		Now:    b.now(),
	})
}

// emitLocked recomputes the view and publishes the diff against the last one.
func (b *Board) emitLocked() Update {
	next := b.viewLocked()
	if b.sel.Mode == models.FilterToday {
		b.sel.Date = utils.StartOfDay(next.Date)
	}
	u := Update{
		Version: b.Snapshot().Version,
		View:    next,
		Diff:    ComputeDiff(b.lastView, next),
	}
	b.lastView = next
	select {
	case b.updates <- u:
	default:
	}
	return u
}

// reload is the reducer: it reads the whole store into a new snapshot and
// swaps it in. Callers never mutate a snapshot in place.
func (b *Board) reload() error {
	b.reduceMu.Lock()
	defer b.reduceMu.Unlock()

	seq := b.store.Seq()

	rows, err := b.store.GetAllTrackerRows(false)
	if err != nil {
		return fmt.Errorf("failed to load trackers: %w", err)
	}
	records, err := b.store.GetCompletionRecords()
	if err != nil {
		return fmt.Errorf("failed to load completion records: %w", err)
	}
	settings, err := b.store.GetSettings()
	if err != nil {
		logger.Warn("Failed to load settings, using defaults", "error", err)
		settings = models.DefaultSettings()
	}

	report := aggregate.Build(rows)
	for _, res := range report.Rejected() {
		logger.Warn("Skipping malformed tracker", "error", res.Err)
	}

	snap := &Snapshot{
		Version:    b.version.Inc(),
		StoreSeq:   seq,
		Report:     report,
		Categories: report.Categories,
		Records:    records,
		Ledger:     completion.NewLedger(records),
		Settings:   settings,
		LoadedAt:   time.Now(),
	}
	b.snap.Store(snap)
	logger.Debug("Board snapshot rebuilt", "version", snap.Version, "seq", seq, "trackers", report.TrackerCount(), "records", len(records))
	return nil
}

// refresh reloads and emits. Used after every write attempt so the board
// always reflects what was persisted.
func (b *Board) refresh() {
	if err := b.reload(); err != nil {
		logger.Error("Failed to rebuild board", "error", err)
		return
	}
	b.mu.Lock()
	b.emitLocked()
	b.mu.Unlock()
}

// Refresh forces a reload from the store.
func (b *Board) Refresh() error {
	if err := b.reload(); err != nil {
		return err
	}
	b.mu.Lock()
	b.emitLocked()
	b.mu.Unlock()
	return nil
}

// Run consumes store changes until ctx is done. Bursts of changes collapse
// into one reload, and changes already reflected in the snapshot are skipped.
func (b *Board) Run(ctx context.Context) error {
	changes, cancel := b.store.Subscribe(64)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			latest := c.Seq
		drain:
			for {
				select {
				case more, ok := <-changes:
					if !ok {
						break drain
					}
					if more.Seq > latest {
						latest = more.Seq
					}
				default:
					break drain
				}
			}
			if latest <= b.Snapshot().StoreSeq {
				continue
			}
			logger.Debug("Store changed", "seq", latest, "entity", c.Entity, "op", c.Op)
			b.refresh()
		}
	}
}

// SelectDate changes the date and clears the search. Picking a day other
// than today leaves Today mode.
func (b *Board) SelectDate(date time.Time) visibility.View {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sel.Date = utils.StartOfDay(date.In(b.now().Location()))
	b.sel.Search = ""
	if b.sel.Mode == models.FilterToday && !utils.SameDay(b.sel.Date, b.now()) {
		b.sel.Mode = models.FilterAll
	}
	return b.emitLocked().View
}

// SelectFilter changes the filter mode and persists it. Today mode also
// resets the date to now.
func (b *Board) SelectFilter(mode models.FilterMode) (visibility.View, error) {
	mode, err := models.ParseFilterMode(string(mode))
	if err != nil {
		return visibility.View{}, err
	}

	settings := b.Snapshot().Settings
	settings.SelectedFilter = mode
	saveErr := b.store.SaveSettings(settings)
	if saveErr != nil {
		logger.Error("Failed to persist filter", "filter", mode, "error", saveErr)
	}
	if err := b.reload(); err != nil {
		logger.Error("Failed to rebuild board", "error", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.sel.Mode = mode
	if mode == models.FilterToday {
		b.sel.Date = utils.StartOfDay(b.now())
	}
	view := b.emitLocked().View
	if saveErr != nil {
		return view, fmt.Errorf("failed to save filter: %w", saveErr)
	}
	return view, nil
}

// Search sets the name filter.
func (b *Board) Search(text string) visibility.View {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sel.Search = text
	return b.emitLocked().View
}

// FindTracker resolves an id or a case-insensitive name to a tracker and its
// category title.
func (b *Board) FindTracker(nameOrID string) (models.Tracker, string, error) {
	snap := b.Snapshot()
	if t, title, ok := aggregate.FindTracker(snap.Categories, nameOrID); ok {
		return t, title, nil
	}

	needle := strings.TrimSpace(nameOrID)
	var (
		found []models.Tracker
		title string
	)
	for _, c := range snap.Categories {
		for _, t := range c.Trackers {
			if strings.EqualFold(t.Name, needle) {
				found = append(found, t)
				title = c.Title
			}
		}
	}
	switch len(found) {
	case 0:
		return models.Tracker{}, "", fmt.Errorf("tracker %q: %w", nameOrID, storage.ErrNotFound)
	case 1:
		return found[0], title, nil
	default:
		return models.Tracker{}, "", fmt.Errorf("%w: %q (use the id instead)", ErrAmbiguous, nameOrID)
	}
}

// Stats summarizes the snapshot.
func (b *Board) Stats() stats.Summary {
	snap := b.Snapshot()
	return stats.Compute(snap.Trackers(), snap.Records)
}
