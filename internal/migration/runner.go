package migration

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Migration is one versioned SQL file, named NNN_name.sql.
type Migration struct {
	Version int
	Name    string
	Path    string
	SQL     string
}

// Runner applies ordered SQL migrations against a database and tracks the
// applied version in a schema_version table.
type Runner struct {
	db   *sql.DB
	path string
}

func NewRunner(db *sql.DB, migrationsPath string) *Runner {
	return &Runner{
		db:   db,
		path: migrationsPath,
	}
}

// EnsureSchemaVersionTable creates the version-tracking table if needed.
func (r *Runner) EnsureSchemaVersionTable() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// GetCurrentVersion returns the applied schema version, or 0 for a fresh
// database.
func (r *Runner) GetCurrentVersion() (int, error) {
	if err := r.EnsureSchemaVersionTable(); err != nil {
		return 0, err
	}

	var version int
	err := r.db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// SetVersion records the schema version, replacing any prior value.
func (r *Runner) SetVersion(version int) error {
	if err := r.EnsureSchemaVersionTable(); err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM schema_version`); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, version); err != nil {
		return err
	}
	return tx.Commit()
}

// ReadMigrationFiles loads and validates every NNN_name.sql file in the
// migrations directory, sorted by version.
func (r *Runner) ReadMigrationFiles() ([]Migration, error) {
	entries, err := os.ReadDir(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory %q: %w", r.path, err)
	}

	seen := make(map[int]string)
	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		base := strings.TrimSuffix(entry.Name(), ".sql")
		versionStr, name, found := strings.Cut(base, "_")
		if !found {
			return nil, fmt.Errorf("invalid migration filename %q: expected NNN_name.sql", entry.Name())
		}

		version, err := strconv.Atoi(versionStr)
		if err != nil {
			return nil, fmt.Errorf("invalid migration filename %q: %w", entry.Name(), err)
		}
		if version < 1 {
			return nil, fmt.Errorf("invalid migration %q: version must be at least 1", entry.Name())
		}
		if prior, ok := seen[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %d: %q and %q", version, prior, entry.Name())
		}
		seen[version] = entry.Name()

		path := filepath.Join(r.path, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %q: %w", entry.Name(), err)
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    name,
			Path:    path,
			SQL:     string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// GetLatestVersion returns the highest version among the migration files.
func (r *Runner) GetLatestVersion() (int, error) {
	migrations, err := r.ReadMigrationFiles()
	if err != nil {
		return 0, err
	}
	if len(migrations) == 0 {
		return 0, nil
	}
	return migrations[len(migrations)-1].Version, nil
}

// ValidateVersion fails when the database was written by a newer binary than
// this one, which would otherwise risk silent data corruption.
func (r *Runner) ValidateVersion() error {
	current, err := r.GetCurrentVersion()
	if err != nil {
		return err
	}
	latest, err := r.GetLatestVersion()
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version %d is newer than this binary supports (%d); upgrade stint", current, latest)
	}
	return nil
}

// ApplyMigrations applies every pending migration in order, each inside its
// own transaction. The optional log callback receives progress messages.
// Returns the number of migrations applied.
func (r *Runner) ApplyMigrations(log func(string)) (int, error) {
	if err := r.ValidateVersion(); err != nil {
		return 0, err
	}

	current, err := r.GetCurrentVersion()
	if err != nil {
		return 0, err
	}
	migrations, err := r.ReadMigrationFiles()
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		if err := r.applyOne(m); err != nil {
			return applied, fmt.Errorf("migration %03d_%s failed: %w", m.Version, m.Name, err)
		}
		applied++

		if log != nil {
			log(fmt.Sprintf("Applied migration %03d_%s", m.Version, m.Name))
		}
	}

	return applied, nil
}

func (r *Runner) applyOne(m Migration) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.SQL); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM schema_version`); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, m.Version); err != nil {
		return err
	}
	return tx.Commit()
}
