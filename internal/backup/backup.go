package backup

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	// BackupFilePrefix is the prefix for backup files
	BackupFilePrefix = "stint-"
	// BackupTimeFormat is the timestamp format in backup filenames
	BackupTimeFormat = "20060102-150405"
	// MaxBackups keeps roughly two weeks of daily backups
	MaxBackups = 14
)

// Manager handles database backup operations
type Manager struct {
	dbPath    string
	backupDir string
}

// NewManager creates a backup manager for the given database path.
// Backups are written to a "backups" directory next to the database file.
func NewManager(dbPath string) *Manager {
	return &Manager{
		dbPath:    dbPath,
		backupDir: filepath.Join(filepath.Dir(dbPath), "backups"),
	}
}

// GetBackupDir returns the directory backups are written to.
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// BackupInfo describes a single backup file
type BackupInfo struct {
	Path      string
	Size      int64
	Timestamp time.Time
}

// CreateBackup creates a timestamped backup of the database and rotates
// old backups beyond MaxBackups.
func (m *Manager) CreateBackup() (string, error) {
	return m.createBackup(false)
}

func (m *Manager) createBackup(skipRotation bool) (string, error) {
	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return "", fmt.Errorf("database does not exist: %s", m.dbPath)
	}

	if err := os.MkdirAll(m.backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	timestamp := time.Now().Format(BackupTimeFormat)
	backupName := fmt.Sprintf("%s%s.db", BackupFilePrefix, timestamp)
	backupPath := filepath.Join(m.backupDir, backupName)

	if err := m.backupDatabase(backupPath); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}

	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			// Rotation failure should not fail the backup itself
			fmt.Fprintf(os.Stderr, "warning: failed to rotate backups: %v\n", err)
		}
	}

	return backupPath, nil
}

// backupDatabase uses SQLite's VACUUM INTO to produce a consistent
// snapshot, falling back to a file copy if the statement is unavailable.
func (m *Manager) backupDatabase(backupPath string) error {
	db, err := sql.Open("sqlite", m.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(fmt.Sprintf("VACUUM INTO '%s'", backupPath)); err != nil {
		// Fall back to a plain copy
		return copyFile(m.dbPath, backupPath)
	}

	return nil
}

// ListBackups returns backup metadata, newest first.
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, BackupFilePrefix) || !strings.HasSuffix(name, ".db") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		backups = append(backups, BackupInfo{
			Path:      filepath.Join(m.backupDir, name),
			Size:      info.Size(),
			Timestamp: info.ModTime(),
		})
	}

	// Timestamped names sort chronologically
	sort.Slice(backups, func(i, j int) bool {
		return filepath.Base(backups[i].Path) > filepath.Base(backups[j].Path)
	})

	return backups, nil
}

// rotateBackups removes the oldest backups beyond MaxBackups.
func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}

	if len(backups) <= MaxBackups {
		return nil
	}

	for _, b := range backups[MaxBackups:] {
		if err := os.Remove(b.Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", b.Path, err)
		}
	}

	return nil
}

// RestoreBackup replaces the current database with the given backup.
// The current database is backed up first so a bad restore can be undone.
func (m *Manager) RestoreBackup(backupPath string) error {
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup does not exist: %s", backupPath)
	}

	if err := m.verifyBackup(backupPath); err != nil {
		return fmt.Errorf("backup verification failed: %w", err)
	}

	// Safety net before overwriting, rotation skipped so the
	// pre-restore snapshot is never the one rotated away
	if _, err := os.Stat(m.dbPath); err == nil {
		if _, err := m.createBackup(true); err != nil {
			return fmt.Errorf("failed to back up current database before restore: %w", err)
		}
	}

	return copyFile(backupPath, m.dbPath)
}

// verifyBackup opens the backup and checks it looks like a stint database.
func (m *Manager) verifyBackup(backupPath string) error {
	db, err := sql.Open("sqlite", backupPath)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer db.Close()

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'experiments'`).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to inspect backup: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("backup is missing the experiments table")
	}

	return nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy: %w", err)
	}

	return dstFile.Sync()
}
