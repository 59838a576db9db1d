package storage

import (
	"errors"

	"github.com/julianstephens/tally/internal/models"
)

var (
	// ErrNotFound is returned when a tracker, category or setting does not exist.
	ErrNotFound = errors.New("not found")
	// ErrCategoryNotEmpty is returned when deleting a category that still holds trackers.
	ErrCategoryNotEmpty = errors.New("category still has trackers")
	// ErrNotInitialized is returned by Load when the database does not exist yet.
	ErrNotInitialized = errors.New("storage not initialized, run 'tally init' first")
)

// Provider is the record store. Every successful write publishes a Change
// to subscribers.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Categories
	// GetOrCreateCategory returns the category with the given title, creating
	// it if it does not exist yet.
	GetOrCreateCategory(title string) (models.CategoryRecord, error)
	GetCategoryByTitle(title string) (models.CategoryRecord, error)
	GetAllCategories() ([]models.CategoryRecord, error)
	// RenameCategory renames a category. Renaming onto an existing title
	// merges the two categories.
	RenameCategory(oldTitle, newTitle string) error
	DeleteCategory(title string) error

	// Trackers
	AddTracker(t models.Tracker, categoryTitle string) error
	UpdateTracker(t models.Tracker, categoryTitle string) error
	DeleteTracker(id string) error
	RestoreTracker(id string) error
	// GetAllTrackerRows returns raw rows joined with their category title,
	// ordered by name. Rows are not validated.
	GetAllTrackerRows(includeDeleted bool) ([]models.TrackerRow, error)

	// Completion records
	// AddCompletionRecord is a no-op if the tracker already has a record for that day.
	AddCompletionRecord(models.CompletionRecord) error
	RemoveCompletionRecord(trackerID, day string) error
	GetCompletionRecords() ([]models.CompletionRecord, error)

	// Change notification
	Subscribe(buffer int) (<-chan Change, func())
	Seq() uint64

	// Utils
	GetConfigPath() string
}
