package backup

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/tally/internal/constants"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "tally.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE completion_records (id TEXT PRIMARY KEY, tracker_id TEXT, day TEXT)`); err != nil {
		t.Fatalf("failed to create test table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO completion_records VALUES ('r1', 't1', '2024-03-11'), ('r2', 't1', '2024-03-13')`); err != nil {
		t.Fatalf("failed to insert test data: %v", err)
	}
	return dbPath
}

func countRecords(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM completion_records").Scan(&count); err != nil {
		t.Fatalf("failed to query database: %v", err)
	}
	return count
}

// steppingClock advances one minute per call so every backup gets its own name.
func steppingClock() func() time.Time {
	ts := time.Date(2024, 3, 13, 9, 0, 0, 0, time.Local)
	return func() time.Time {
		ts = ts.Add(time.Minute)
		return ts
	}
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	if filepath.Dir(backupPath) != filepath.Join(filepath.Dir(dbPath), constants.BackupDirName) {
		t.Errorf("backup written outside the backup dir: %s", backupPath)
	}
	if got := countRecords(t, backupPath); got != 2 {
		t.Errorf("expected 2 rows in backup, got %d", got)
	}
}

func TestCreateBackupMissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))

	if _, err := mgr.CreateBackup(); !errors.Is(err, ErrDatabaseMissing) {
		t.Fatalf("expected ErrDatabaseMissing, got %v", err)
	}
}

func TestBackupRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = steppingClock()

	for i := 0; i < constants.MaxBackups+5; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Errorf("expected %d backups after rotation, got %d", constants.MaxBackups, len(backups))
	}

	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups are not sorted newest first at index %d", i)
		}
	}
	// The oldest five were pruned.
	want := time.Date(2024, 3, 13, 9, 6, 0, 0, time.Local)
	if oldest := backups[len(backups)-1].Timestamp; !oldest.Equal(want) {
		t.Errorf("expected oldest remaining backup at %v, got %v", want, oldest)
	}
}

func TestListBackups(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected 0 backups initially, got %d", len(backups))
	}

	for i := 0; i < 3; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
	}
	// Foreign files in the directory are ignored.
	if err := os.WriteFile(filepath.Join(mgr.GetBackupDir(), "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatalf("failed to write stray file: %v", err)
	}

	backups, err = mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 3 {
		t.Errorf("expected 3 backups, got %d", len(backups))
	}
	for _, b := range backups {
		if b.Path == "" || b.Size == 0 || b.Timestamp.IsZero() {
			t.Errorf("incomplete backup info: %+v", b)
		}
	}
}

func TestParseBackupName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"tally-20240313-0901.db", true},
		{"tally-20240313-090105.db", true},
		{"tally-20240313-090105-3.db", true},
		{"tally-20240313-090105-x.db", false},
		{"other-20240313-0901.db", false},
		{"tally-yesterday.db", false},
	}
	for _, tt := range tests {
		if _, ok := parseBackupName(tt.name); ok != tt.ok {
			t.Errorf("parseBackupName(%q) ok = %v, want %v", tt.name, ok, tt.ok)
		}
	}
}

func TestUniqueBackupFilenames(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	fixed := time.Date(2024, 3, 13, 9, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	paths := make(map[string]bool)
	for i := 0; i < 5; i++ {
		backupPath, err := mgr.CreateBackup()
		if err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
		name := filepath.Base(backupPath)
		if paths[name] {
			t.Errorf("duplicate backup filename: %s", name)
		}
		paths[name] = true
	}
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = steppingClock()

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if _, err := db.Exec("INSERT INTO completion_records VALUES ('r3', 't2', '2024-03-13')"); err != nil {
		t.Fatalf("failed to insert data: %v", err)
	}
	db.Close()

	if got := countRecords(t, dbPath); got != 3 {
		t.Fatalf("expected 3 rows before restore, got %d", got)
	}

	safetyCopy, err := mgr.RestoreBackup(backupPath)
	if err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	if got := countRecords(t, dbPath); got != 2 {
		t.Errorf("expected 2 rows after restore, got %d", got)
	}
	if safetyCopy == "" {
		t.Fatal("expected a backup of the replaced database")
	}
	if got := countRecords(t, safetyCopy); got != 3 {
		t.Errorf("safety copy should hold the pre-restore state, got %d rows", got)
	}
}

func TestRestoreRejectsInvalidBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	invalid := filepath.Join(t.TempDir(), "invalid.db")
	if err := os.WriteFile(invalid, []byte("not a database"), 0600); err != nil {
		t.Fatalf("failed to create invalid file: %v", err)
	}

	if _, err := mgr.RestoreBackup(invalid); err == nil {
		t.Fatal("RestoreBackup should fail for an invalid backup")
	}
	if got := countRecords(t, dbPath); got != 2 {
		t.Errorf("database should be untouched, got %d rows", got)
	}
}

func TestResolvePath(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	got, err := mgr.ResolvePath(filepath.Base(backupPath))
	if err != nil {
		t.Fatalf("ResolvePath by name failed: %v", err)
	}
	if got != backupPath {
		t.Errorf("ResolvePath = %s, want %s", got, backupPath)
	}

	if _, err := mgr.ResolvePath(backupPath); err != nil {
		t.Errorf("ResolvePath by absolute path failed: %v", err)
	}
	if _, err := mgr.ResolvePath("tally-19990101-0000.db"); err == nil {
		t.Error("expected error for unknown backup")
	}
}
