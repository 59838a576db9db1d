package sqlstore

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
)

func (s *Store) GetSettings() (models.Settings, error) {
	if s.db == nil {
		return models.Settings{}, storage.ErrNotInitialized
	}
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return models.Settings{}, err
	}
	defer rows.Close()

	data := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Settings{}, err
		}
		data[key] = value
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, err
	}

	if len(data) == 0 {
		return models.Settings{}, fmt.Errorf("settings %w", storage.ErrNotFound)
	}
	return models.MapToSettings(data)
}

func (s *Store) SaveSettings(settings models.Settings) error {
	data := models.SettingsToMap(settings)
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	err := s.withTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(s.q(`
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value`))
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, k := range keys {
			if _, err := stmt.Exec(k, data[k]); err != nil {
				return fmt.Errorf("saving setting %s: %w", k, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(storage.EntitySettings, storage.OpUpdate, "")
	return nil
}
