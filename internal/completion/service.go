// Package completion tracks which trackers were done on which calendar days.
package completion

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/utils"
)

// ErrFutureDate is returned when marking or unmarking a day after today.
var ErrFutureDate = errors.New("cannot change completion for a future date")

// RecordWriter is the part of the record store the service writes through.
type RecordWriter interface {
	AddCompletionRecord(models.CompletionRecord) error
	RemoveCompletionRecord(trackerID, day string) error
}

// Service applies completion changes. It owns the future-date guard so every
// caller gets the same rule.
type Service struct {
	writer RecordWriter
	now    func() time.Time
	newID  func() string
}

// NewService creates a Service. now supplies "today" in the user's timezone.
func NewService(writer RecordWriter, now func() time.Time, newID func() string) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{writer: writer, now: now, newID: newID}
}

// CheckDate returns ErrFutureDate if date falls on a later calendar day than now.
func (s *Service) CheckDate(date time.Time) error {
	now := s.now()
	if utils.AfterDay(date, now) {
		return fmt.Errorf("%w: %s is after %s", ErrFutureDate, models.DayOf(date.In(now.Location())), models.DayOf(now))
	}
	return nil
}

// MarkCompleted records the tracker as done on date. Marking an already
// completed day is a no-op at the store level.
func (s *Service) MarkCompleted(trackerID string, date time.Time) error {
	if err := s.CheckDate(date); err != nil {
		return err
	}
	day := models.DayOf(date.In(s.now().Location()))
	rec := models.CompletionRecord{
		TrackerID: trackerID,
		Day:       day,
		CreatedAt: s.now(),
	}
	if s.newID != nil {
		rec.ID = s.newID()
	}
	if err := s.writer.AddCompletionRecord(rec); err != nil {
		logger.Error("Failed to add completion record", "tracker", trackerID, "day", day, "error", err)
		return fmt.Errorf("failed to mark %s on %s: %w", trackerID, day, err)
	}
	logger.Debug("Marked tracker completed", "tracker", trackerID, "day", day)
	return nil
}

// MarkUncompleted removes the record for date, if any.
func (s *Service) MarkUncompleted(trackerID string, date time.Time) error {
	if err := s.CheckDate(date); err != nil {
		return err
	}
	day := models.DayOf(date.In(s.now().Location()))
	if err := s.writer.RemoveCompletionRecord(trackerID, day); err != nil {
		logger.Error("Failed to remove completion record", "tracker", trackerID, "day", day, "error", err)
		return fmt.Errorf("failed to unmark %s on %s: %w", trackerID, day, err)
	}
	logger.Debug("Marked tracker uncompleted", "tracker", trackerID, "day", day)
	return nil
}

// Toggle flips the completion state of the tracker on date using the ledger
// as the source of current state. It returns the new state.
func (s *Service) Toggle(ledger *Ledger, trackerID string, date time.Time) (bool, error) {
	if err := s.CheckDate(date); err != nil {
		return false, err
	}
	if ledger.IsCompleted(trackerID, date.In(s.now().Location())) {
		return false, s.MarkUncompleted(trackerID, date)
	}
	return true, s.MarkCompleted(trackerID, date)
}

// DaysLabel renders a completion count the way the board shows it.
func DaysLabel(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
