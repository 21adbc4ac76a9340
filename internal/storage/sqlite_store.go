package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/emmanuelcabrera1/stint/internal/migration"
	"github.com/emmanuelcabrera1/stint/internal/models"
	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

func (s *SQLiteStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize default settings if not present
	if _, err := s.GetSettings(); err != nil {
		if err := s.SaveSettings(DefaultSettings()); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'stint init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	// Validate schema version only when a migrations directory is shipped
	// alongside the binary; an already-initialized database remains usable
	// without one.
	migrationsPath := s.getMigrationsPath()
	if _, statErr := os.Stat(migrationsPath); statErr == nil {
		runner := migration.NewRunner(s.db, migrationsPath)
		if err := runner.ValidateVersion(); err != nil {
			return err
		}
	} else if !os.IsNotExist(statErr) {
		return fmt.Errorf("failed to access migrations directory %q: %w", migrationsPath, statErr)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetDB exposes the underlying connection for health checks.
func (s *SQLiteStore) GetDB() *sql.DB {
	return s.db
}

// GetMigrationsPath returns the resolved migrations directory.
func (s *SQLiteStore) GetMigrationsPath() string {
	return s.getMigrationsPath()
}

func (s *SQLiteStore) runMigrations() error {
	runner := migration.NewRunner(s.db, s.getMigrationsPath())
	_, err := runner.ApplyMigrations(func(msg string) {
		fmt.Println(msg)
	})
	return err
}

func (s *SQLiteStore) getMigrationsPath() string {
	// Check if environment variable is set
	if envPath := os.Getenv("STINT_MIGRATIONS_PATH"); envPath != "" {
		if absPath, err := filepath.Abs(envPath); err == nil {
			if _, err := os.Stat(absPath); err == nil {
				return absPath
			}
		}
	}

	// Try to find migrations relative to the executable or in common paths
	paths := []string{
		"migrations",
		"./migrations",
		"../migrations",
		"../../migrations",
		filepath.Join(filepath.Dir(os.Args[0]), "migrations"),
		filepath.Join(filepath.Dir(os.Args[0]), "..", "migrations"),
	}

	for _, path := range paths {
		if absPath, err := filepath.Abs(path); err == nil {
			if _, err := os.Stat(absPath); err == nil {
				return absPath
			}
		}
	}

	// Default to "migrations" in current directory (will fail gracefully if not found)
	return "migrations"
}

func (s *SQLiteStore) GetSettings() (Settings, error) {
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return Settings{}, err
	}
	defer rows.Close()

	settings := Settings{}
	count := 0
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Settings{}, err
		}
		switch key {
		case "default_target_days":
			if _, err := fmt.Sscanf(value, "%d", &settings.DefaultTargetDays); err != nil {
				return Settings{}, fmt.Errorf("parsing default_target_days: %w", err)
			}
		case "default_frequency":
			settings.DefaultFrequency = value
		case "auto_backup":
			settings.AutoBackup = value == "true"
		}
		count++
	}

	if count == 0 {
		return Settings{}, fmt.Errorf("settings not found")
	}

	return settings, nil
}

func (s *SQLiteStore) SaveSettings(settings Settings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	if _, err := stmt.Exec("default_target_days", fmt.Sprintf("%d", settings.DefaultTargetDays)); err != nil {
		return err
	}
	if _, err := stmt.Exec("default_frequency", settings.DefaultFrequency); err != nil {
		return err
	}
	autoBackup := "false"
	if settings.AutoBackup {
		autoBackup = "true"
	}
	if _, err := stmt.Exec("auto_backup", autoBackup); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) AddExperiment(exp models.Experiment) error {
	return s.UpdateExperiment(exp)
}

const experimentColumns = `id, name, frequency, start_date, target_days, extension_days,
		difficulty, grace_active, grace_started, grace_expires, skip_days_used,
		restart_count, reflection_due, archived_notes, status, created_at, updated_at, deleted_at`

func (s *SQLiteStore) GetExperiment(id string) (models.Experiment, error) {
	row := s.db.QueryRow(`
		SELECT `+experimentColumns+`
		FROM experiments WHERE id = ? AND deleted_at IS NULL`, id)

	exp, err := scanExperiment(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Experiment{}, fmt.Errorf("experiment not found: %s", id)
		}
		return models.Experiment{}, err
	}

	entries, err := s.getEntries(id)
	if err != nil {
		return models.Experiment{}, err
	}
	exp.Entries = entries

	return exp.Normalize(), nil
}

func (s *SQLiteStore) GetAllExperiments() ([]models.Experiment, error) {
	return s.queryExperiments(`SELECT ` + experimentColumns + ` FROM experiments WHERE deleted_at IS NULL`)
}

func (s *SQLiteStore) GetAllExperimentsIncludingDeleted() ([]models.Experiment, error) {
	return s.queryExperiments(`SELECT ` + experimentColumns + ` FROM experiments`)
}

func (s *SQLiteStore) queryExperiments(query string) ([]models.Experiment, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var experiments []models.Experiment
	for rows.Next() {
		exp, err := scanExperiment(rows)
		if err != nil {
			return nil, err
		}

		entries, err := s.getEntries(exp.ID)
		if err != nil {
			return nil, err
		}
		exp.Entries = entries

		experiments = append(experiments, exp.Normalize())
	}

	return experiments, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExperiment(row rowScanner) (models.Experiment, error) {
	var exp models.Experiment
	var frequency, status, archivedNotes, createdAt, updatedAt string
	var graceActive, reflectionDue bool
	var graceStarted, graceExpires string
	var deletedAt sql.NullString

	err := row.Scan(
		&exp.ID, &exp.Name, &frequency, &exp.StartDate, &exp.TargetDays, &exp.ExtensionDays,
		&exp.Difficulty, &graceActive, &graceStarted, &graceExpires, &exp.SkipDaysUsed,
		&exp.RestartCount, &reflectionDue, &archivedNotes, &status, &createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return models.Experiment{}, err
	}

	exp.Frequency = models.Frequency(frequency)
	exp.Status = models.ExperimentStatus(status)
	exp.ReflectionDue = reflectionDue

	if graceActive || graceStarted != "" {
		exp.Grace = &models.GracePeriod{
			Active:    graceActive,
			StartedAt: graceStarted,
			ExpiresAt: graceExpires,
		}
	}

	if archivedNotes != "" && archivedNotes != "[]" {
		if err := json.Unmarshal([]byte(archivedNotes), &exp.ArchivedNotes); err != nil {
			return models.Experiment{}, fmt.Errorf("failed to parse archived notes for %s: %w", exp.ID, err)
		}
	}

	exp.CreatedAt = parseTimestamp(createdAt)
	exp.UpdatedAt = parseTimestamp(updatedAt)
	if deletedAt.Valid {
		t := parseTimestamp(deletedAt.String)
		exp.DeletedAt = &t
	}

	return exp, nil
}

func (s *SQLiteStore) getEntries(experimentID string) ([]models.Entry, error) {
	rows, err := s.db.Query(`
		SELECT day, kind, note, created_at, updated_at
		FROM entries WHERE experiment_id = ? AND deleted_at IS NULL
		ORDER BY day`, experimentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var entry models.Entry
		var kind, createdAt, updatedAt string
		if err := rows.Scan(&entry.Day, &kind, &entry.Note, &createdAt, &updatedAt); err != nil {
			return nil, err
		}

		// Unknown kinds are surfaced as corruption, never coerced
		parsed, err := models.ParseEntryKind(kind)
		if err != nil {
			return nil, fmt.Errorf("experiment %s, day %s: %w", experimentID, entry.Day, err)
		}
		entry.Kind = parsed
		entry.CreatedAt = parseTimestamp(createdAt)
		entry.UpdatedAt = parseTimestamp(updatedAt)

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (s *SQLiteStore) UpdateExperiment(exp models.Experiment) error {
	notesJSON, err := json.Marshal(exp.ArchivedNotes)
	if err != nil {
		return fmt.Errorf("failed to marshal archived notes: %w", err)
	}

	var graceActive bool
	var graceStarted, graceExpires string
	if exp.Grace != nil {
		graceActive = exp.Grace.Active
		graceStarted = exp.Grace.StartedAt
		graceExpires = exp.Grace.ExpiresAt
	}

	var deletedAt sql.NullString
	if exp.DeletedAt != nil {
		deletedAt = sql.NullString{String: exp.DeletedAt.UTC().Format(time.RFC3339), Valid: true}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO experiments (
			id, name, frequency, start_date, target_days, extension_days,
			difficulty, grace_active, grace_started, grace_expires, skip_days_used,
			restart_count, reflection_due, archived_notes, status, created_at, updated_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		exp.ID, exp.Name, exp.Frequency, exp.StartDate, exp.TargetDays, exp.ExtensionDays,
		exp.Difficulty, graceActive, graceStarted, graceExpires, exp.SkipDaysUsed,
		exp.RestartCount, exp.ReflectionDue, string(notesJSON), exp.Status,
		exp.CreatedAt.UTC().Format(time.RFC3339), exp.UpdatedAt.UTC().Format(time.RFC3339), deletedAt,
	)
	if err != nil {
		return err
	}

	// The entry log is authoritative on the experiment value; replace the
	// stored rows so restarts and skip-day upserts round-trip.
	if _, err := tx.Exec(`DELETE FROM entries WHERE experiment_id = ?`, exp.ID); err != nil {
		return err
	}
	for _, entry := range exp.Entries {
		if err := insertEntry(tx, exp.ID, entry); err != nil {
			return err
		}
	}

	return tx.Commit()
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertEntry(ex execer, experimentID string, entry models.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	var deletedAt sql.NullString
	if entry.DeletedAt != nil {
		deletedAt = sql.NullString{String: entry.DeletedAt.UTC().Format(time.RFC3339), Valid: true}
	}

	_, err := ex.Exec(`
		INSERT OR REPLACE INTO entries (experiment_id, day, kind, note, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		experimentID, entry.Day, entry.Kind, entry.Note,
		entry.CreatedAt.UTC().Format(time.RFC3339), entry.UpdatedAt.UTC().Format(time.RFC3339), deletedAt,
	)
	return err
}

func (s *SQLiteStore) SaveEntry(experimentID string, entry models.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	var exists int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM experiments WHERE id = ? AND deleted_at IS NULL`, experimentID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("experiment not found: %s", experimentID)
	}

	now := time.Now().UTC()
	entry.UpdatedAt = now
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}

	return insertEntry(s.db, experimentID, entry)
}

func (s *SQLiteStore) DeleteExperiment(id string) error {
	// Soft delete: set deleted_at timestamp instead of removing the record
	var deletedAt sql.NullString
	err := s.db.QueryRow("SELECT deleted_at FROM experiments WHERE id = ?", id).Scan(&deletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("experiment not found: %s", id)
		}
		return fmt.Errorf("failed to check experiment existence: %w", err)
	}

	if deletedAt.Valid {
		return fmt.Errorf("experiment %s is already deleted", id)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec("UPDATE experiments SET deleted_at = ? WHERE id = ?", now, id)
	return err
}

func (s *SQLiteStore) RestoreExperiment(id string) error {
	var deletedAt sql.NullString
	err := s.db.QueryRow("SELECT deleted_at FROM experiments WHERE id = ?", id).Scan(&deletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("experiment not found: %s", id)
		}
		return fmt.Errorf("failed to check experiment existence: %w", err)
	}

	if !deletedAt.Valid {
		return fmt.Errorf("experiment %s is not deleted", id)
	}

	_, err = s.db.Exec("UPDATE experiments SET deleted_at = NULL WHERE id = ?", id)
	return err
}

// GetConfigPath returns the path to the underlying database file.
//
// Concurrency note:
//   - SQLiteStore is not safe for concurrent use by multiple goroutines
//     without external synchronization.
//   - Running multiple stint processes against the same database at the same
//     time is not supported and may lead to data loss or corruption.
func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

func parseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
