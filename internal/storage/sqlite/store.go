package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
	"github.com/julianstephens/tally/internal/storage/sqlstore"
)

// Store is the default, file based record store.
type Store struct {
	*sqlstore.Store
	path string
}

var _ storage.Provider = (*Store)(nil)

func NewStore(path string) *Store {
	return &Store{
		Store: sqlstore.New(sqlstore.SQLite),
		path:  path,
	}
}

func (s *Store) open() error {
	if s.DB() != nil {
		return nil
	}
	db, err := sql.Open("sqlite", dsn(s.path))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; sqlite serializes writes anyway.
	db.SetMaxOpenConns(1)
	s.Attach(db)
	return nil
}

func dsn(path string) string {
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Init creates the database file, applies pending migrations and writes
// default settings when none exist. It is safe to run on an existing database.
func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.open(); err != nil {
		return err
	}

	if _, err := s.Migrate(func(msg string) { logger.Info(msg) }); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if _, err := s.GetSettings(); err != nil {
		if err := s.SaveSettings(models.DefaultSettings()); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}
	return nil
}

func (s *Store) Load() error {
	if s.DB() != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return storage.ErrNotInitialized
	}

	if err := s.open(); err != nil {
		return err
	}
	return s.ValidateSchema()
}

func (s *Store) GetConfigPath() string {
	return s.path
}
