package backup

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/logger"
)

var (
	// ErrDatabaseMissing is returned when there is no database file to back up
	ErrDatabaseMissing = errors.New("database does not exist")
	// ErrNotSQLite is returned for store targets that are not a local file
	ErrNotSQLite = errors.New("backups are only supported for SQLite databases")
)

const (
	minuteFormat = "20060102-1504"
	secondFormat = "20060102-150405"
)

// Info describes a backup file on disk
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager creates, lists, rotates and restores backups of one database file
type Manager struct {
	dbPath    string
	backupDir string
	now       func() time.Time
}

// NewManager creates a manager whose backups live next to dbPath.
func NewManager(dbPath string) *Manager {
	return &Manager{
		dbPath:    dbPath,
		backupDir: filepath.Join(filepath.Dir(dbPath), constants.BackupDirName),
		now:       time.Now,
	}
}

// GetBackupDir returns the backup directory path
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// CreateBackup snapshots the database and prunes old backups beyond
// constants.MaxBackups.
func (m *Manager) CreateBackup() (string, error) {
	return m.createBackup(false)
}

// skipRotation keeps the pre-restore safety copy from pruning anything.
func (m *Manager) createBackup(skipRotation bool) (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrDatabaseMissing, m.dbPath)
	}

	backupPath, err := m.nextBackupPath()
	if err != nil {
		return "", err
	}

	if err := m.backupDatabase(backupPath); err != nil {
		return "", fmt.Errorf("failed to backup database: %w", err)
	}

	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			logger.Warn("Failed to rotate old backups", "dir", m.backupDir, "error", err)
		}
	}

	logger.Info("Backup created", "path", backupPath)
	return backupPath, nil
}

// nextBackupPath uses minute precision, then seconds, then a counter.
func (m *Manager) nextBackupPath() (string, error) {
	now := m.now()
	candidate := func(stamp string, counter int) string {
		name := constants.BackupFilePrefix + stamp
		if counter > 0 {
			name += "-" + strconv.Itoa(counter)
		}
		return filepath.Join(m.backupDir, name+constants.BackupFileSuffix)
	}

	path := candidate(now.Format(minuteFormat), 0)
	if !exists(path) {
		return path, nil
	}
	stamp := now.Format(secondFormat)
	for counter := 0; counter <= 100; counter++ {
		path = candidate(stamp, counter)
		if !exists(path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique backup filename")
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// backupDatabase copies the database with VACUUM INTO, falling back to a
// plain file copy on SQLite builds without it.
func (m *Manager) backupDatabase(destPath string) error {
	srcDB, err := sql.Open("sqlite", m.dbPath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer srcDB.Close()

	var count int
	if err := srcDB.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}

	if _, err := srcDB.Exec("VACUUM INTO ?", destPath); err != nil {
		logger.Debug("VACUUM INTO failed, copying file", "error", err)
		srcDB.Close()
		return copyFile(m.dbPath, destPath)
	}
	return nil
}

// ListBackups returns the backups newest first. Files that do not follow the
// naming scheme are ignored.
func (m *Manager) ListBackups() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []Info{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, ok := parseBackupName(entry.Name())
		if !ok {
			continue
		}
		path := filepath.Join(m.backupDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{Path: path, Timestamp: ts, Size: info.Size()})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Path > backups[j].Path
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// parseBackupName extracts the timestamp from tally-YYYYMMDD-HHMM[SS][-N].db.
func parseBackupName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)

	parts := strings.Split(stamp, "-")
	if len(parts) == 3 {
		if _, err := strconv.Atoi(parts[2]); err != nil {
			return time.Time{}, false
		}
		stamp = parts[0] + "-" + parts[1]
	}

	for _, layout := range []string{minuteFormat, secondFormat} {
		if ts, err := time.ParseInLocation(layout, stamp, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// rotateBackups removes old backups beyond the retention limit
func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}

	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
		logger.Debug("Removed old backup", "path", backups[i].Path)
	}
	return nil
}

// ResolvePath finds a backup given an absolute path, a path relative to the
// working directory, or a bare file name inside the backup directory.
func (m *Manager) ResolvePath(name string) (string, error) {
	if filepath.IsAbs(name) {
		if !exists(name) {
			return "", fmt.Errorf("backup file not found: %s", name)
		}
		return name, nil
	}
	if exists(name) {
		abs, err := filepath.Abs(name)
		if err != nil {
			return "", fmt.Errorf("failed to resolve backup path: %w", err)
		}
		return abs, nil
	}
	if p := filepath.Join(m.backupDir, name); exists(p) {
		return p, nil
	}
	return "", fmt.Errorf("backup file not found: tried current directory and %s", m.backupDir)
}

// RestoreBackup replaces the database with backupPath. The current database,
// if any, is backed up first and that backup's path is returned.
func (m *Manager) RestoreBackup(backupPath string) (string, error) {
	if !exists(backupPath) {
		return "", fmt.Errorf("backup file does not exist: %s", backupPath)
	}

	if err := verifyBackup(backupPath); err != nil {
		return "", fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var safetyCopy string
	if exists(m.dbPath) {
		var err error
		safetyCopy, err = m.createBackup(true)
		if err != nil {
			return "", fmt.Errorf("failed to backup current database before restore: %w", err)
		}
	}

	// Copy then rename so a failed copy never leaves a half-written database.
	tempPath := m.dbPath + ".restore.tmp"
	if err := copyFile(backupPath, tempPath); err != nil {
		return safetyCopy, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tempPath, m.dbPath); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			logger.Warn("Failed to remove temporary file", "path", tempPath, "error", removeErr)
		}
		return safetyCopy, fmt.Errorf("failed to restore database: %w", err)
	}

	logger.Info("Database restored", "from", backupPath)
	return safetyCopy, nil
}

// verifyBackup checks that path is a readable SQLite database
func verifyBackup(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	var count int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count)
}

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}
