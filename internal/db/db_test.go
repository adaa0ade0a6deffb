package db

import (
	"path/filepath"
	"testing"
)

func TestNewDBAppliesMigrations(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	for _, table := range []string{
		"samples", "roi", "roi2gene", "coverage_stats", "vcf_stats",
		"snp_stats", "indel_stats", "polyphen_map", "simulation_correlations",
		"report_runs",
	} {
		ok, err := db.HasTable(table)
		if err != nil {
			t.Fatalf("HasTable(%s) failed: %v", table, err)
		}
		if !ok {
			t.Errorf("expected table %s after migration", table)
		}
	}
}

func TestMigrateDownRemovesSchema(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	migrationsFS, err := getMigrationsFS()
	if err != nil {
		t.Fatalf("getMigrationsFS failed: %v", err)
	}

	version, dirty, err := db.MigrateVersion(migrationsFS)
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if dirty {
		t.Fatal("fresh database should not be dirty")
	}
	if version == 0 {
		t.Fatal("expected non-zero version after NewDB")
	}

	if err := db.MigrateDown(migrationsFS); err != nil {
		t.Fatalf("MigrateDown failed: %v", err)
	}

	ok, err := db.HasTable("samples")
	if err != nil {
		t.Fatalf("HasTable failed: %v", err)
	}
	if ok {
		t.Error("samples table should be gone after down migration")
	}
}

func TestGetDatabaseStats(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	if _, err := db.Exec(
		`INSERT INTO samples (track, sample, condition, replicate, category) VALUES (?, ?, ?, ?, ?)`,
		"NA12878", "NA12878", "control", 1, "trio"); err != nil {
		t.Fatalf("failed to insert sample: %v", err)
	}

	stats, err := db.GetDatabaseStats()
	if err != nil {
		t.Fatalf("GetDatabaseStats failed: %v", err)
	}

	if stats.TotalSizeMB <= 0 {
		t.Error("expected non-zero total size for database")
	}
	if len(stats.Tables) == 0 {
		t.Fatal("expected at least one table in stats")
	}

	// samples has one row and should sort ahead of the empty tables
	if stats.Tables[0].Name != "samples" || stats.Tables[0].Rows != 1 {
		t.Errorf("expected samples with 1 row first, got %+v", stats.Tables[0])
	}
	for _, ts := range stats.Tables {
		if ts.Name == "schema_migrations" {
			t.Error("schema_migrations should be excluded from stats")
		}
	}
}

func TestBaselineAtVersion(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "csvdb"))
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	defer db.Close()

	if err := db.BaselineAtVersion(1); err != nil {
		t.Fatalf("BaselineAtVersion failed: %v", err)
	}

	migrationsFS, err := getMigrationsFS()
	if err != nil {
		t.Fatalf("getMigrationsFS failed: %v", err)
	}
	version, dirty, err := db.MigrateVersion(migrationsFS)
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 1 || dirty {
		t.Errorf("expected version 1 clean after baseline, got %d (dirty: %v)", version, dirty)
	}

	// baselining never builds the schema
	ok, err := db.HasTable("samples")
	if err != nil {
		t.Fatalf("HasTable failed: %v", err)
	}
	if ok {
		t.Error("baseline should not create schema tables")
	}
}

func TestBaselineRefusesMigratedDatabase(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	if err := db.BaselineAtVersion(1); err == nil {
		t.Error("expected baseline to fail on an already-migrated database")
	}
}

func TestOpenDBDoesNotMigrate(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "csvdb"))
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	defer db.Close()

	ok, err := db.HasTable("samples")
	if err != nil {
		t.Fatalf("HasTable failed: %v", err)
	}
	if ok {
		t.Error("OpenDB should not create schema")
	}
}
