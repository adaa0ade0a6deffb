package db

import (
	"path/filepath"
	"testing"
)

// setupTestDB creates a migrated database backed by a file in a per-test
// temporary directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "csvdb"))
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}
	return db
}

func cleanupTestDB(t *testing.T, db *DB) {
	t.Helper()
	if err := db.Close(); err != nil {
		t.Errorf("failed to close test DB: %v", err)
	}
}

// loadTestEffects creates a per-track effects table with a few coding
// variants so track discovery and the trackers have something to query.
func loadTestEffects(t *testing.T, db *DB, track string) {
	t.Helper()

	columns := []string{"snp_id", "gene_id", "transcript_id", "consequence", "aa_change"}
	records := [][]string{
		{"rs001", "ENSG01", "ENST01", "synonymous", ""},
		{"rs002", "ENSG01", "ENST01", "non-synonymous", "A54T"},
		{"rs003", "ENSG02", "ENST02", "stop-gained", "R120*"},
	}
	if err := db.LoadTable(EffectsCDSTable(track), columns, records, []string{"gene_id"}); err != nil {
		t.Fatalf("failed to load effects table for %s: %v", track, err)
	}
}
