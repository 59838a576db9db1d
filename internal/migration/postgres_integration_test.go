package migration

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq"
)

// setupPostgresTestDB opens TALLY_TEST_POSTGRES_URL or skips the test.
// Example: TALLY_TEST_POSTGRES_URL="postgres://user@localhost:5432/testdb?sslmode=disable"
func setupPostgresTestDB(t *testing.T) *sql.DB {
	connStr := os.Getenv("TALLY_TEST_POSTGRES_URL")
	if connStr == "" {
		t.Skip("TALLY_TEST_POSTGRES_URL not set, skipping PostgreSQL integration test")
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("failed to open postgres database: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("failed to ping postgres database: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DROP TABLE IF EXISTS schema_version")
		db.Exec("DROP TABLE IF EXISTS test_trackers")
		db.Close()
	})
	return db
}

// TestPostgresSetVersion verifies SetVersion works with PostgreSQL $1 placeholders
func TestPostgresSetVersion(t *testing.T) {
	db := setupPostgresTestDB(t)

	runner, err := NewRunner(db, migrationFS(map[string]string{
		"001_init.sql": "CREATE TABLE test_trackers (id TEXT PRIMARY KEY);",
	}), DriverPostgres)
	if err != nil {
		t.Fatalf("failed to create migration runner: %v", err)
	}

	for _, want := range []int{1, 2} {
		if err := runner.SetVersion(want); err != nil {
			t.Fatalf("SetVersion(%d) failed: %v", want, err)
		}
		got, err := runner.GetCurrentVersion()
		if err != nil {
			t.Fatalf("GetCurrentVersion failed: %v", err)
		}
		if got != want {
			t.Errorf("expected version %d, got %d", want, got)
		}
	}
}

func TestPostgresApplyMigrations(t *testing.T) {
	db := setupPostgresTestDB(t)

	runner, err := NewRunner(db, migrationFS(map[string]string{
		"001_init.sql": "CREATE TABLE test_trackers (id TEXT PRIMARY KEY);",
	}), DriverPostgres)
	if err != nil {
		t.Fatalf("failed to create migration runner: %v", err)
	}

	count, err := runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 migration applied, got %d", count)
	}
}
