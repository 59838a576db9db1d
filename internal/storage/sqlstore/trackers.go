package sqlstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
)

func trackerColumns(t models.Tracker) (schedule string, kind string, err error) {
	if err := t.Validate(); err != nil {
		return "", "", err
	}
	data, err := json.Marshal(t.Schedule)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode schedule: %w", err)
	}
	kind = string(t.Kind)
	if kind == "" {
		kind = string(models.TrackerKindHabit)
	}
	return string(data), kind, nil
}

// AddTracker inserts the tracker, creating its category if needed.
func (s *Store) AddTracker(t models.Tracker, categoryTitle string) error {
	schedule, kind, err := trackerColumns(t)
	if err != nil {
		return err
	}
	createdAt := s.timestamp()
	if !t.CreatedAt.IsZero() {
		createdAt = t.CreatedAt.UTC().Format(time.RFC3339)
	}

	var (
		category models.CategoryRecord
		created  bool
	)
	err = s.withTx(func(tx *sql.Tx) error {
		category, created, err = s.getOrCreateCategory(tx, categoryTitle)
		if err != nil {
			return err
		}
		_, err = tx.Exec(s.q(`
			INSERT INTO trackers (id, name, emoji, color, schedule, kind, category_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			t.ID, t.Name, t.Emoji, string(t.Color), schedule, kind, category.ID, createdAt)
		if err != nil {
			return fmt.Errorf("failed to insert tracker: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if created {
		s.publish(storage.EntityCategory, storage.OpCreate, category.ID)
	}
	s.publish(storage.EntityTracker, storage.OpCreate, t.ID)
	return nil
}

// UpdateTracker replaces every editable field. Completion records are keyed
// by tracker id and survive the update.
func (s *Store) UpdateTracker(t models.Tracker, categoryTitle string) error {
	schedule, kind, err := trackerColumns(t)
	if err != nil {
		return err
	}

	var (
		category models.CategoryRecord
		created  bool
	)
	err = s.withTx(func(tx *sql.Tx) error {
		category, created, err = s.getOrCreateCategory(tx, categoryTitle)
		if err != nil {
			return err
		}
		res, err := tx.Exec(s.q(`
			UPDATE trackers
			SET name = ?, emoji = ?, color = ?, schedule = ?, kind = ?, category_id = ?
			WHERE id = ? AND deleted_at IS NULL`),
			t.Name, t.Emoji, string(t.Color), schedule, kind, category.ID, t.ID)
		if err != nil {
			return fmt.Errorf("failed to update tracker: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("tracker %s: %w", t.ID, storage.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if created {
		s.publish(storage.EntityCategory, storage.OpCreate, category.ID)
	}
	s.publish(storage.EntityTracker, storage.OpUpdate, t.ID)
	return nil
}

// DeleteTracker soft-deletes the tracker. Its completion records are kept
// so RestoreTracker brings the history back.
func (s *Store) DeleteTracker(id string) error {
	if s.db == nil {
		return storage.ErrNotInitialized
	}
	res, err := s.db.Exec(s.q("UPDATE trackers SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL"), s.timestamp(), id)
	if err != nil {
		return fmt.Errorf("failed to delete tracker: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("tracker %s: %w", id, storage.ErrNotFound)
	}
	s.publish(storage.EntityTracker, storage.OpDelete, id)
	return nil
}

func (s *Store) RestoreTracker(id string) error {
	var created bool
	var category models.CategoryRecord
	err := s.withTx(func(tx *sql.Tx) error {
		var categoryID, deletedAt sql.NullString
		err := tx.QueryRow(s.q("SELECT category_id, deleted_at FROM trackers WHERE id = ?"), id).Scan(&categoryID, &deletedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("tracker %s: %w", id, storage.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if !deletedAt.Valid {
			return fmt.Errorf("tracker %s is not deleted", id)
		}

		if !categoryID.Valid {
			category, created, err = s.getOrCreateCategory(tx, constants.DefaultCategoryTitle)
			if err != nil {
				return err
			}
			categoryID = sql.NullString{String: category.ID, Valid: true}
		}
		_, err = tx.Exec(s.q("UPDATE trackers SET deleted_at = NULL, category_id = ? WHERE id = ?"), categoryID.String, id)
		return err
	})
	if err != nil {
		return err
	}
	if created {
		s.publish(storage.EntityCategory, storage.OpCreate, category.ID)
	}
	s.publish(storage.EntityTracker, storage.OpCreate, id)
	return nil
}

func (s *Store) GetAllTrackerRows(includeDeleted bool) ([]models.TrackerRow, error) {
	if s.db == nil {
		return nil, storage.ErrNotInitialized
	}
	query := `
		SELECT t.id, t.name, t.emoji, t.color, t.schedule, t.kind, c.title, t.created_at, t.deleted_at
		FROM trackers t
		LEFT JOIN categories c ON c.id = t.category_id`
	if !includeDeleted {
		query += " WHERE t.deleted_at IS NULL"
	}
	query += " ORDER BY t.name, t.id"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TrackerRow
	for rows.Next() {
		var (
			id, name, emoji, color, schedule, title sql.NullString
			kind                                    sql.NullString
			createdAt                               string
			deletedAt                               sql.NullString
		)
		if err := rows.Scan(&id, &name, &emoji, &color, &schedule, &kind, &title, &createdAt, &deletedAt); err != nil {
			return nil, err
		}

		row := models.TrackerRow{
			ID:            nullable(id),
			Name:          nullable(name),
			Emoji:         nullable(emoji),
			Color:         nullable(color),
			Schedule:      nullable(schedule),
			Kind:          kind.String,
			CategoryTitle: nullable(title),
		}
		// A bad timestamp is not a reason to drop the tracker.
		if t, err := parseTimestamp(createdAt); err == nil {
			row.CreatedAt = t
		}
		if deletedAt.Valid {
			if t, err := parseTimestamp(deletedAt.String); err == nil {
				row.DeletedAt = &t
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
