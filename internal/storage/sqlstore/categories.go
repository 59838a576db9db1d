package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
)

type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func (s *Store) categoryByTitle(q querier, title string) (models.CategoryRecord, error) {
	var c models.CategoryRecord
	var createdAt string
	err := q.QueryRow(s.q("SELECT id, title, created_at FROM categories WHERE title = ?"), title).
		Scan(&c.ID, &c.Title, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CategoryRecord{}, fmt.Errorf("category %q: %w", title, storage.ErrNotFound)
	}
	if err != nil {
		return models.CategoryRecord{}, err
	}
	if c.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return models.CategoryRecord{}, fmt.Errorf("failed to parse created_at for category %s: %w", c.ID, err)
	}
	return c, nil
}

// getOrCreateCategory looks the title up and inserts it when missing.
// created reports whether a row was inserted.
func (s *Store) getOrCreateCategory(tx *sql.Tx, title string) (c models.CategoryRecord, created bool, err error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.CategoryRecord{}, false, fmt.Errorf("category title cannot be empty")
	}

	c, err = s.categoryByTitle(tx, title)
	if err == nil {
		return c, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return models.CategoryRecord{}, false, err
	}

	res, err := tx.Exec(s.q(`
		INSERT INTO categories (id, title, created_at) VALUES (?, ?, ?)
		ON CONFLICT (title) DO NOTHING`), s.newID(), title, s.timestamp())
	if err != nil {
		return models.CategoryRecord{}, false, fmt.Errorf("failed to create category %q: %w", title, err)
	}
	n, _ := res.RowsAffected()

	c, err = s.categoryByTitle(tx, title)
	return c, n > 0, err
}

func (s *Store) GetOrCreateCategory(title string) (models.CategoryRecord, error) {
	var (
		c       models.CategoryRecord
		created bool
	)
	err := s.withTx(func(tx *sql.Tx) error {
		var err error
		c, created, err = s.getOrCreateCategory(tx, title)
		return err
	})
	if err != nil {
		return models.CategoryRecord{}, err
	}
	if created {
		s.publish(storage.EntityCategory, storage.OpCreate, c.ID)
	}
	return c, nil
}

func (s *Store) GetCategoryByTitle(title string) (models.CategoryRecord, error) {
	if s.db == nil {
		return models.CategoryRecord{}, storage.ErrNotInitialized
	}
	return s.categoryByTitle(s.db, strings.TrimSpace(title))
}

func (s *Store) GetAllCategories() ([]models.CategoryRecord, error) {
	if s.db == nil {
		return nil, storage.ErrNotInitialized
	}
	rows, err := s.db.Query("SELECT id, title, created_at FROM categories ORDER BY title")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.CategoryRecord
	for rows.Next() {
		var c models.CategoryRecord
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Title, &createdAt); err != nil {
			return nil, err
		}
		if c.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at for category %s: %w", c.ID, err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) RenameCategory(oldTitle, newTitle string) error {
	oldTitle = strings.TrimSpace(oldTitle)
	newTitle = strings.TrimSpace(newTitle)
	if newTitle == "" {
		return fmt.Errorf("category title cannot be empty")
	}

	var id string
	err := s.withTx(func(tx *sql.Tx) error {
		old, err := s.categoryByTitle(tx, oldTitle)
		if err != nil {
			return err
		}
		id = old.ID
		if oldTitle == newTitle {
			return nil
		}

		target, err := s.categoryByTitle(tx, newTitle)
		switch {
		case err == nil:
			// Titles are unique: renaming onto an existing title merges.
			if _, err := tx.Exec(s.q("UPDATE trackers SET category_id = ? WHERE category_id = ?"), target.ID, old.ID); err != nil {
				return fmt.Errorf("failed to move trackers: %w", err)
			}
			if _, err := tx.Exec(s.q("DELETE FROM categories WHERE id = ?"), old.ID); err != nil {
				return fmt.Errorf("failed to delete merged category: %w", err)
			}
			id = target.ID
			return nil
		case errors.Is(err, storage.ErrNotFound):
			_, err := tx.Exec(s.q("UPDATE categories SET title = ? WHERE id = ?"), newTitle, old.ID)
			return err
		default:
			return err
		}
	})
	if err != nil {
		return err
	}
	s.publish(storage.EntityCategory, storage.OpUpdate, id)
	return nil
}

func (s *Store) DeleteCategory(title string) error {
	var id string
	err := s.withTx(func(tx *sql.Tx) error {
		c, err := s.categoryByTitle(tx, strings.TrimSpace(title))
		if err != nil {
			return err
		}
		id = c.ID

		var live int
		if err := tx.QueryRow(s.q("SELECT count(*) FROM trackers WHERE category_id = ? AND deleted_at IS NULL"), c.ID).Scan(&live); err != nil {
			return err
		}
		if live > 0 {
			return fmt.Errorf("%w: %q has %d tracker(s)", storage.ErrCategoryNotEmpty, c.Title, live)
		}

		// Deleted trackers lose their category; restoring them assigns the default.
		if _, err := tx.Exec(s.q("UPDATE trackers SET category_id = NULL WHERE category_id = ?"), c.ID); err != nil {
			return err
		}
		_, err = tx.Exec(s.q("DELETE FROM categories WHERE id = ?"), c.ID)
		return err
	})
	if err != nil {
		return err
	}
	s.publish(storage.EntityCategory, storage.OpDelete, id)
	return nil
}
