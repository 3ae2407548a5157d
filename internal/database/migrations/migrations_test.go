package migrations

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	tables := []string{
		"scan_sessions", "completed_directories", "files", "file_metadata",
		"folder_plan", "file_plan", "operations", "schema_migrations",
	}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s was not created: %v", table, err)
		}
	}
}

func TestCheckDBMigrationStatus(t *testing.T) {
	t.Run("fresh database needs migration", func(t *testing.T) {
		db := openTestDB(t)

		err := CheckDBMigrationStatus(db)
		if !errors.Is(err, ErrNoSchema) {
			t.Errorf("CheckDBMigrationStatus() error = %v, want ErrNoSchema", err)
		}
	})

	t.Run("migrated database is current", func(t *testing.T) {
		db := openTestDB(t)
		if err := MigrateUp(db); err != nil {
			t.Fatalf("MigrateUp() error = %v", err)
		}
		if err := CheckDBMigrationStatus(db); err != nil {
			t.Errorf("CheckDBMigrationStatus() error = %v", err)
		}
	})
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first MigrateUp() error = %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Errorf("second MigrateUp() error = %v", err)
	}

	version, dirty, err := Version(db)
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	latest, err := LatestVersion()
	if err != nil {
		t.Fatalf("LatestVersion() error = %v", err)
	}
	if version != latest || dirty {
		t.Errorf("Version() = %d (dirty=%v), want %d", version, dirty, latest)
	}
}

func TestSchema_ForeignKeys(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	_, err := db.Exec(`
		INSERT INTO files (scan_session_id, source_path, directory_path, filename, filename_base, size_bytes, scanned_at)
		VALUES (999, 'a.jpg', '', 'a.jpg', 'a', 1, datetime('now'))
	`)
	if err == nil {
		t.Error("expected foreign key violation for unknown scan session")
	}
}

func TestSchema_FolderPlanBucketXorDate(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	if _, err := db.Exec(`INSERT INTO scan_sessions (source_root, started_at) VALUES ('/photos', datetime('now'))`); err != nil {
		t.Fatalf("inserting session: %v", err)
	}

	_, err := db.Exec(`
		INSERT INTO folder_plan (
			scan_session_id, plan_run_id, source_folder, resolved_date, resolved_source, bucket, target_folder,
			total_files, image_files, images_with_date, date_coverage_pct, prevalent_date_count,
			prevalent_date_pct, date_span_months, unique_date_count,
			config_min_coverage, config_min_prevalence, config_max_span_months, planned_at
		) VALUES (1, 'run', 'a', 20231015, 'prevalent_date', 'mixed_dates', 'x', 1, 1, 1, 1, 1, 1, 0, 1, 0.3, 0.8, 3, datetime('now'))
	`)
	if err == nil {
		t.Error("expected check constraint violation when both date and bucket are set")
	}
}
