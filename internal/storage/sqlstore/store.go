// Package sqlstore implements storage.Provider on top of database/sql. The
// sqlite and postgres packages wrap it with driver specific lifecycle code.
package sqlstore

import (
	"database/sql"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/tally/internal/migration"
	"github.com/julianstephens/tally/internal/storage"
	"github.com/julianstephens/tally/migrations"
)

// Dialect captures the differences between the supported databases.
type Dialect struct {
	Driver migration.Driver
	// MigrationsDir is the directory inside migrations.FS.
	MigrationsDir string
}

var (
	SQLite   = Dialect{Driver: migration.DriverSQLite, MigrationsDir: "sqlite"}
	Postgres = Dialect{Driver: migration.DriverPostgres, MigrationsDir: "postgres"}
)

// Rebind rewrites "?" placeholders into the dialect's form.
func (d Dialect) Rebind(query string) string {
	if d.Driver != migration.DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type Store struct {
	db       *sql.DB
	dialect  Dialect
	notifier *storage.Notifier
	now      func() time.Time
	newID    func() string
}

func New(dialect Dialect) *Store {
	return &Store{
		dialect:  dialect,
		notifier: storage.NewNotifier(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Attach sets the open database handle.
func (s *Store) Attach(db *sql.DB) {
	s.db = db
}

// DB returns the underlying database connection, or nil before Init/Load.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, s.dialect.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s migrations: %w", s.dialect.MigrationsDir, err)
	}
	return migration.NewRunner(s.db, subFS, s.dialect.Driver)
}

// Migrate applies pending embedded migrations.
func (s *Store) Migrate(logFn func(string)) (int, error) {
	r, err := s.runner()
	if err != nil {
		return 0, err
	}
	return r.ApplyMigrations(logFn)
}

// ValidateSchema fails unless the database is at the latest schema version.
func (s *Store) ValidateSchema() error {
	r, err := s.runner()
	if err != nil {
		return err
	}
	return r.ValidateVersion()
}

// SchemaVersion returns the current and latest schema versions.
func (s *Store) SchemaVersion() (current, latest int, err error) {
	r, err := s.runner()
	if err != nil {
		return 0, 0, err
	}
	if current, err = r.GetCurrentVersion(); err != nil {
		return 0, 0, err
	}
	if latest, err = r.GetLatestVersion(); err != nil {
		return 0, 0, err
	}
	return current, latest, nil
}

func (s *Store) Subscribe(buffer int) (<-chan storage.Change, func()) {
	return s.notifier.Subscribe(buffer)
}

func (s *Store) Seq() uint64 {
	return s.notifier.Seq()
}

func (s *Store) publish(entity storage.Entity, op storage.Op, id string) {
	s.notifier.Publish(entity, op, id)
}

func (s *Store) q(query string) string {
	return s.dialect.Rebind(query)
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	if s.db == nil {
		return storage.ErrNotInitialized
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func parseTimestamp(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}
