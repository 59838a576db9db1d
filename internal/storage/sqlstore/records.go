package sqlstore

import (
	"fmt"
	"time"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
)

func (s *Store) AddCompletionRecord(r models.CompletionRecord) error {
	if s.db == nil {
		return storage.ErrNotInitialized
	}
	if _, err := time.Parse(constants.DateFormat, r.Day); err != nil {
		return fmt.Errorf("invalid completion day %q: %w", r.Day, err)
	}

	var live int
	if err := s.db.QueryRow(s.q("SELECT count(*) FROM trackers WHERE id = ? AND deleted_at IS NULL"), r.TrackerID).Scan(&live); err != nil {
		return err
	}
	if live == 0 {
		return fmt.Errorf("tracker %s: %w", r.TrackerID, storage.ErrNotFound)
	}

	if r.ID == "" {
		r.ID = s.newID()
	}
	createdAt := s.timestamp()
	if !r.CreatedAt.IsZero() {
		createdAt = r.CreatedAt.UTC().Format(time.RFC3339)
	}

	res, err := s.db.Exec(s.q(`
		INSERT INTO completion_records (id, tracker_id, day, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (tracker_id, day) DO NOTHING`),
		r.ID, r.TrackerID, r.Day, createdAt)
	if err != nil {
		return fmt.Errorf("failed to add completion record: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.publish(storage.EntityRecord, storage.OpCreate, r.ID)
	}
	return nil
}

func (s *Store) RemoveCompletionRecord(trackerID, day string) error {
	if s.db == nil {
		return storage.ErrNotInitialized
	}
	res, err := s.db.Exec(s.q("DELETE FROM completion_records WHERE tracker_id = ? AND day = ?"), trackerID, day)
	if err != nil {
		return fmt.Errorf("failed to remove completion record: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.publish(storage.EntityRecord, storage.OpDelete, trackerID+"@"+day)
	}
	return nil
}

func (s *Store) GetCompletionRecords() ([]models.CompletionRecord, error) {
	if s.db == nil {
		return nil, storage.ErrNotInitialized
	}
	rows, err := s.db.Query("SELECT id, tracker_id, day, created_at FROM completion_records ORDER BY day, tracker_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.CompletionRecord
	for rows.Next() {
		var r models.CompletionRecord
		var createdAt string
		if err := rows.Scan(&r.ID, &r.TrackerID, &r.Day, &createdAt); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at for record %s: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
