package migration

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

func newTestRunner(t *testing.T, migrations map[string]string) (*Runner, *sql.DB, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "stint-test.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	migrationsDir := t.TempDir()
	for filename, content := range migrations {
		if err := os.WriteFile(filepath.Join(migrationsDir, filename), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write migration %s: %v", filename, err)
		}
	}

	return NewRunner(db, migrationsDir), db, migrationsDir
}

func TestVersionTracking(t *testing.T) {
	runner, _, _ := newTestRunner(t, map[string]string{
		"001_init.sql": "CREATE TABLE experiments (id TEXT PRIMARY KEY);",
	})

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("fresh database should be version 0, got %d", version)
	}

	if err := runner.SetVersion(5); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}

	version, err = runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 5 {
		t.Errorf("expected version 5, got %d", version)
	}
}

func TestReadMigrationFiles_SortedByVersion(t *testing.T) {
	runner, _, _ := newTestRunner(t, map[string]string{
		"003_entries.sql":     "CREATE TABLE entries (day TEXT);",
		"001_init.sql":        "CREATE TABLE experiments (id TEXT);",
		"002_experiments.sql": "ALTER TABLE experiments ADD COLUMN name TEXT;",
	})

	migrations, err := runner.ReadMigrationFiles()
	if err != nil {
		t.Fatalf("ReadMigrationFiles failed: %v", err)
	}

	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	wantNames := []string{"init", "experiments", "entries"}
	for i, m := range migrations {
		if m.Version != i+1 {
			t.Errorf("migration %d: expected version %d, got %d", i, i+1, m.Version)
		}
		if m.Name != wantNames[i] {
			t.Errorf("migration %d: expected name %q, got %q", i, wantNames[i], m.Name)
		}
	}
}

func TestReadMigrationFiles_RejectsBadFilenames(t *testing.T) {
	cases := map[string]map[string]string{
		"missing underscore": {"001init.sql": "CREATE TABLE t (id INTEGER);"},
		"version zero":       {"000_init.sql": "CREATE TABLE t (id INTEGER);"},
		"duplicate version": {
			"001_init.sql":  "CREATE TABLE t1 (id INTEGER);",
			"001_other.sql": "CREATE TABLE t2 (id INTEGER);",
		},
	}

	for name, files := range cases {
		runner, _, _ := newTestRunner(t, files)
		if _, err := runner.ReadMigrationFiles(); err == nil {
			t.Errorf("%s: expected ReadMigrationFiles to fail", name)
		}
	}
}

func TestApplyMigrations_FromScratch(t *testing.T) {
	runner, db, _ := newTestRunner(t, map[string]string{
		"001_init.sql":    "CREATE TABLE experiments (id TEXT PRIMARY KEY, name TEXT);",
		"002_entries.sql": "CREATE TABLE entries (experiment_id TEXT, day TEXT, kind TEXT);",
	})

	applied, err := runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if applied != 2 {
		t.Errorf("expected 2 migrations applied, got %d", applied)
	}

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}

	for _, table := range []string{"experiments", "entries"} {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		if err != nil || count != 1 {
			t.Errorf("table %s was not created", table)
		}
	}
}

func TestApplyMigrations_IncrementalAndNoOp(t *testing.T) {
	runner, _, migrationsDir := newTestRunner(t, map[string]string{
		"001_init.sql": "CREATE TABLE experiments (id TEXT PRIMARY KEY);",
	})

	applied, err := runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("ApplyMigrations (1st) failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("expected 1 migration applied, got %d", applied)
	}

	// Re-running with nothing new is a no-op.
	applied, err = runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("ApplyMigrations (2nd) failed: %v", err)
	}
	if applied != 0 {
		t.Errorf("expected no-op, got %d migrations applied", applied)
	}

	// A migration shipped later is picked up incrementally.
	next := "CREATE TABLE entries (experiment_id TEXT, day TEXT);"
	if err := os.WriteFile(filepath.Join(migrationsDir, "002_entries.sql"), []byte(next), 0644); err != nil {
		t.Fatalf("failed to write migration: %v", err)
	}

	applied, err = runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("ApplyMigrations (3rd) failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("expected 1 new migration applied, got %d", applied)
	}

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}
}

func TestApplyMigrations_RollsBackOnError(t *testing.T) {
	runner, db, _ := newTestRunner(t, map[string]string{
		"001_init.sql": `
			CREATE TABLE experiments (id TEXT PRIMARY KEY);
			THIS IS NOT SQL;
		`,
	})

	if _, err := runner.ApplyMigrations(nil); err == nil {
		t.Fatal("expected ApplyMigrations to fail on invalid SQL")
	}

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0 after rollback, got %d", version)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='experiments'").Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 0 {
		t.Error("experiments table should not exist after rollback")
	}
}

func TestValidateVersion_NewerDatabaseRefused(t *testing.T) {
	runner, _, _ := newTestRunner(t, map[string]string{
		"001_init.sql": "CREATE TABLE experiments (id TEXT PRIMARY KEY);",
	})

	if err := runner.SetVersion(10); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}

	if err := runner.ValidateVersion(); err == nil {
		t.Error("expected ValidateVersion to refuse a newer database")
	}
	if _, err := runner.ApplyMigrations(nil); err == nil {
		t.Error("expected ApplyMigrations to refuse a newer database")
	}
}

func TestGetLatestVersion(t *testing.T) {
	runner, _, _ := newTestRunner(t, map[string]string{
		"001_init.sql":    "CREATE TABLE experiments (id TEXT);",
		"003_grace.sql":   "ALTER TABLE experiments ADD COLUMN grace_active INTEGER;",
		"002_entries.sql": "CREATE TABLE entries (day TEXT);",
	})

	latest, err := runner.GetLatestVersion()
	if err != nil {
		t.Fatalf("GetLatestVersion failed: %v", err)
	}
	if latest != 3 {
		t.Errorf("expected latest version 3, got %d", latest)
	}
}

func TestMigrationErrorNamesFile(t *testing.T) {
	runner, _, _ := newTestRunner(t, map[string]string{
		"001_broken.sql": "NOT SQL AT ALL;",
	})

	_, err := runner.ApplyMigrations(nil)
	if err == nil {
		t.Fatal("expected ApplyMigrations to fail")
	}
	if !strings.Contains(err.Error(), "001_broken") {
		t.Errorf("expected error to name the failing migration, got: %v", err)
	}
}
