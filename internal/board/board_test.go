package board

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/tally/internal/completion"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
	"github.com/julianstephens/tally/internal/storage/sqlite"
	"github.com/julianstephens/tally/internal/visibility"
)

// 2024-03-13 is a Wednesday.
var testNow = time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func setupBoard(t *testing.T) (*Board, *sqlite.Store, *clock) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, store.Init())
	t.Cleanup(func() { store.Close() })

	c := &clock{now: testNow}
	n := 0
	b, err := New(store, Options{
		Now: c.Now,
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})
	require.NoError(t, err)
	return b, store, c
}

func everyWeekday() models.Schedule {
	return models.NewSchedule(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)
}

func itemIDs(v visibility.View) []string {
	var out []string
	for _, s := range v.Sections {
		for _, it := range s.Items {
			out = append(out, it.Tracker.ID)
		}
	}
	return out
}

func TestNewBoardIsEmpty(t *testing.T) {
	b, _, _ := setupBoard(t)

	v := b.View()
	assert.True(t, v.Empty)
	assert.False(t, v.ShowFilterButton)
	assert.Equal(t, visibility.NothingScheduled, v.EmptyReason)
	assert.Equal(t, models.FilterAll, b.Selection().Mode)
	assert.NotZero(t, b.Snapshot().Version)
}

func TestAddTrackerCreatesCategoryAndShowsIt(t *testing.T) {
	b, store, _ := setupBoard(t)

	tr, err := b.AddTracker(Draft{Name: "Run", Emoji: "🏃", Schedule: everyWeekday(), Category: "Health"})
	require.NoError(t, err)
	assert.Equal(t, models.Color("#33CF69"), tr.Color, "default color applied")

	cat, err := store.GetCategoryByTitle("Health")
	require.NoError(t, err)
	assert.Equal(t, "Health", cat.Title)

	v := b.View()
	require.Len(t, v.Sections, 1)
	assert.Equal(t, "Health", v.Sections[0].Title)
	assert.Equal(t, []string{tr.ID}, itemIDs(v))
}

func TestAddTrackerValidation(t *testing.T) {
	b, _, _ := setupBoard(t)

	_, err := b.AddTracker(Draft{Name: "", Emoji: "🏃", Schedule: everyWeekday()})
	assert.Error(t, err)

	_, err = b.AddTracker(Draft{Name: "Run", Emoji: "🏃"})
	assert.Error(t, err, "habit without weekdays is rejected")

	ev, err := b.AddTracker(Draft{Name: "Dentist", Emoji: "🦷", Kind: models.TrackerKindEvent})
	require.NoError(t, err, "events need no schedule")
	assert.Equal(t, models.EveryDay(), ev.Schedule)

	tr, err := b.AddTracker(Draft{Name: "Walk", Emoji: "🚶", Schedule: everyWeekday()})
	require.NoError(t, err)
	_, title, err := b.FindTracker(tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "General", title)
}

func TestToggleMarksSelectedDate(t *testing.T) {
	b, _, _ := setupBoard(t)
	tr, err := b.AddTracker(Draft{Name: "Run", Emoji: "🏃", Schedule: everyWeekday(), Category: "Health"})
	require.NoError(t, err)

	done, err := b.Toggle(tr.ID)
	require.NoError(t, err)
	assert.True(t, done)

	v := b.View()
	require.Len(t, v.Sections, 1)
	assert.True(t, v.Sections[0].Items[0].Completed)
	assert.Equal(t, 1, v.Sections[0].Items[0].CompletionCount)

	done, err = b.Toggle(tr.ID)
	require.NoError(t, err)
	assert.False(t, done)
	assert.False(t, b.View().Sections[0].Items[0].Completed)
}

func TestFutureDateIsLockedAndRejected(t *testing.T) {
	b, _, _ := setupBoard(t)
	tr, err := b.AddTracker(Draft{Name: "Run", Emoji: "🏃", Schedule: everyWeekday()})
	require.NoError(t, err)

	v := b.SelectDate(testNow.AddDate(0, 0, 1))
	require.False(t, v.Empty)
	assert.True(t, v.Sections[0].Items[0].Locked)

	_, err = b.Toggle(tr.ID)
	assert.ErrorIs(t, err, completion.ErrFutureDate)
	assert.ErrorIs(t, b.MarkCompleted(tr.ID, testNow.AddDate(0, 0, 2)), completion.ErrFutureDate)
	assert.Zero(t, b.Snapshot().Ledger.Len())
}

func TestFilterModes(t *testing.T) {
	b, _, _ := setupBoard(t)
	run, err := b.AddTracker(Draft{Name: "Run", Emoji: "🏃", Schedule: everyWeekday(), Category: "Health"})
	require.NoError(t, err)
	read, err := b.AddTracker(Draft{Name: "Read", Emoji: "📚", Schedule: everyWeekday(), Category: "Mind"})
	require.NoError(t, err)
	require.NoError(t, b.MarkCompleted(run.ID, testNow))

	v, err := b.SelectFilter(models.FilterCompleted)
	require.NoError(t, err)
	assert.Equal(t, []string{run.ID}, itemIDs(v))

	v, err = b.SelectFilter(models.FilterUncompleted)
	require.NoError(t, err)
	assert.Equal(t, []string{read.ID}, itemIDs(v))

	_, err = b.SelectFilter(models.FilterMode("pinned"))
	assert.Error(t, err)
}

func TestSelectFilterPersists(t *testing.T) {
	b, store, c := setupBoard(t)

	_, err := b.SelectFilter(models.FilterCompleted)
	require.NoError(t, err)

	settings, err := store.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, models.FilterCompleted, settings.SelectedFilter)

	restored, err := New(store, Options{Now: c.Now})
	require.NoError(t, err)
	assert.Equal(t, models.FilterCompleted, restored.Selection().Mode)
}

func TestSelectFilterNormalizesMode(t *testing.T) {
	b, store, _ := setupBoard(t)
	_, err := b.AddTracker(Draft{Name: "Run", Emoji: "🏃", Schedule: everyWeekday()})
	require.NoError(t, err)

	v, err := b.SelectFilter(models.FilterMode(" Completed "))
	require.NoError(t, err)
	assert.Equal(t, models.FilterCompleted, v.Mode)
	assert.Equal(t, models.FilterCompleted, b.Selection().Mode)
	assert.True(t, v.Empty, "nothing is completed yet")

	settings, err := store.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, models.FilterCompleted, settings.SelectedFilter)
}

func TestTodayModeResetsDate(t *testing.T) {
	b, _, c := setupBoard(t)
	_, err := b.AddTracker(Draft{Name: "Run", Emoji: "🏃", Schedule: models.NewSchedule(time.Wednesday)})
	require.NoError(t, err)

	b.SelectDate(testNow.AddDate(0, 0, -1))
	assert.True(t, b.View().Empty, "Tuesday has nothing scheduled")

	v, err := b.SelectFilter(models.FilterToday)
	require.NoError(t, err)
	assert.False(t, v.Empty)
	assert.Equal(t, 13, b.Selection().Date.Day())

	// Picking another day leaves Today mode.
	c.Set(testNow)
	b.SelectDate(testNow.AddDate(0, 0, -7))
	assert.Equal(t, models.FilterAll, b.Selection().Mode)
}

func TestSelectDateClearsSearch(t *testing.T) {
	b, _, _ := setupBoard(t)
	_, err := b.AddTracker(Draft{Name: "Run", Emoji: "🏃", Schedule: everyWeekday()})
	require.NoError(t, err)

	v := b.Search("zzz")
	assert.True(t, v.Empty)
	assert.Equal(t, visibility.NothingFound, v.EmptyReason)

	v = b.SelectDate(testNow)
	assert.Empty(t, b.Selection().Search)
	assert.False(t, v.Empty)
}

func TestUpdateTrackerKeepsHistory(t *testing.T) {
	b, _, _ := setupBoard(t)
	tr, err := b.AddTracker(Draft{Name: "Run", Emoji: "🏃", Schedule: everyWeekday(), Category: "Health"})
	require.NoError(t, err)
	require.NoError(t, b.MarkCompleted(tr.ID, testNow))

	d := DraftFrom(tr, "Health")
	d.Name = "Long run"
	d.Category = "Sport"
	updated, err := b.UpdateTracker(tr.ID, d)
	require.NoError(t, err)
	assert.Equal(t, tr.ID, updated.ID)

	got, title, err := b.FindTracker("long RUN")
	require.NoError(t, err)
	assert.Equal(t, "Sport", title)
	assert.Equal(t, 1, b.Snapshot().Ledger.Count(got.ID))
}

func TestDeleteTracker(t *testing.T) {
	b, _, _ := setupBoard(t)
	tr, err := b.AddTracker(Draft{Name: "Run", Emoji: "🏃", Schedule: everyWeekday()})
	require.NoError(t, err)

	require.NoError(t, b.DeleteTracker(tr.ID))
	assert.True(t, b.View().Empty)

	err = b.DeleteTracker(tr.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, b.RestoreTracker(tr.ID))
	assert.False(t, b.View().Empty)
}

func TestFindTrackerAmbiguous(t *testing.T) {
	b, _, _ := setupBoard(t)
	_, err := b.AddTracker(Draft{Name: "Run", Emoji: "🏃", Schedule: everyWeekday(), Category: "A"})
	require.NoError(t, err)
	_, err = b.AddTracker(Draft{Name: "run", Emoji: "🏃", Schedule: everyWeekday(), Category: "B"})
	require.NoError(t, err)

	_, _, err = b.FindTracker("Run")
	assert.ErrorIs(t, err, ErrAmbiguous)

	_, _, err = b.FindTracker("Swim")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMalformedRowsAreDroppedFromBoard(t *testing.T) {
	b, store, _ := setupBoard(t)
	_, err := b.AddTracker(Draft{Name: "Run", Emoji: "🏃", Schedule: everyWeekday(), Category: "Health"})
	require.NoError(t, err)

	_, err = store.DB().Exec(`INSERT INTO trackers (id, name, emoji, color, schedule, category_id, created_at)
		VALUES ('broken', 'Broken', '🔥', NULL, '[3]', NULL, '2024-01-01T00:00:00Z')`)
	require.NoError(t, err)
	require.NoError(t, b.Refresh())

	snap := b.Snapshot()
	assert.Len(t, snap.Report.Rejected(), 1)
	assert.Len(t, itemIDs(b.View()), 1)
}

func TestWriteFailureIsReturnedAndBoardReloads(t *testing.T) {
	b, _, _ := setupBoard(t)
	before := b.Snapshot().Version

	err := b.MarkCompleted("no-such-tracker", testNow)
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	assert.Greater(t, b.Snapshot().Version, before, "snapshot rebuilt after failed write")
}

func TestSnapshotsAreImmutable(t *testing.T) {
	b, _, _ := setupBoard(t)
	old := b.Snapshot()

	_, err := b.AddTracker(Draft{Name: "Run", Emoji: "🏃", Schedule: everyWeekday()})
	require.NoError(t, err)

	assert.Empty(t, old.Categories, "earlier snapshot must not change")
	assert.Len(t, b.Snapshot().Categories, 1)
	assert.Greater(t, b.Snapshot().Version, old.Version)
}

func TestUpdatesCarryDiffs(t *testing.T) {
	b, _, _ := setupBoard(t)

	_, err := b.AddTracker(Draft{Name: "Run", Emoji: "🏃", Schedule: everyWeekday(), Category: "Health"})
	require.NoError(t, err)

	u := lastUpdate(t, b)
	assert.Equal(t, []int{0}, u.Diff.InsertedSections)
	assert.Equal(t, b.Snapshot().Version, u.Version)
}

func lastUpdate(t *testing.T, b *Board) Update {
	t.Helper()
	var last Update
	got := false
	for {
		select {
		case u := <-b.Updates():
			last = u
			got = true
		default:
			require.True(t, got, "no update emitted")
			return last
		}
	}
}

func TestRunPicksUpExternalWrites(t *testing.T) {
	b, store, _ := setupBoard(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	// Run subscribes asynchronously, so keep writing around the board until
	// one of the writes is observed.
	attempt := 0
	require.Eventually(t, func() bool {
		attempt++
		tr := models.Tracker{
			ID:       fmt.Sprintf("ext-%d", attempt),
			Name:     "External",
			Color:    "#FFFFFF",
			Emoji:    "🌍",
			Schedule: models.EveryDay(),
			Kind:     models.TrackerKindHabit,
		}
		_ = store.AddTracker(tr, "Outside")
		return len(itemIDs(b.View())) > 0
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestStats(t *testing.T) {
	b, _, _ := setupBoard(t)
	tr, err := b.AddTracker(Draft{Name: "Run", Emoji: "🏃", Kind: models.TrackerKindEvent})
	require.NoError(t, err)
	require.NoError(t, b.MarkCompleted(tr.ID, testNow))
	require.NoError(t, b.MarkCompleted(tr.ID, testNow.AddDate(0, 0, -1)))

	s := b.Stats()
	assert.Equal(t, 2, s.Completed)
	assert.Equal(t, 2, s.BestStreak)
	assert.Equal(t, 2, s.PerfectDays)
}
