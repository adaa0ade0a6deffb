package tracker

import (
	"path/filepath"
	"testing"

	"github.com/dormeight/exome.report/internal/db"
)

func setupFixtureDB(t *testing.T) *db.DB {
	t.Helper()

	d, err := db.NewDB(filepath.Join(t.TempDir(), "csvdb"))
	if err != nil {
		t.Fatalf("failed to create fixture DB: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

// loadOverlapFixture writes a per-track transcript overlap table. Each row
// is one variant with its annotation flags.
func loadOverlapFixture(t *testing.T, d *db.DB, track string, rows [][]string) {
	t.Helper()

	columns := []string{"gene_id", "is_tss", "is_upstream", "is_gene", "is_downstream"}
	if err := d.LoadTable(db.TranscriptOverlapTable(track), columns, rows, nil); err != nil {
		t.Fatalf("failed to load overlap fixture: %v", err)
	}
}

func loadEffectsFixture(t *testing.T, d *db.DB, track string, rows [][]string) {
	t.Helper()

	columns := []string{"snp_id", "gene_id", "transcript_id", "consequence", "aa_change"}
	if err := d.LoadTable(db.EffectsCDSTable(track), columns, rows, []string{"consequence"}); err != nil {
		t.Fatalf("failed to load effects fixture: %v", err)
	}
}

func loadGWASFixture(t *testing.T, d *db.DB, track string, rows [][]string) {
	t.Helper()

	columns := []string{"snp_id", "chr", "bp", "a1", "a2", "beta", "se", "p"}
	if err := d.LoadTable(db.GWASResultsTable(track), columns, rows, []string{"p"}); err != nil {
		t.Fatalf("failed to load gwas fixture: %v", err)
	}
}

func insertPolyphen(t *testing.T, d *db.DB, track, snpID, prediction string, score float64) {
	t.Helper()

	_, err := d.Exec(
		`INSERT INTO polyphen_map (track, snp_id, gene_id, protein_id, prediction, score)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		track, snpID, "ENSG01", "ENSP01", prediction, score)
	if err != nil {
		t.Fatalf("failed to insert polyphen row: %v", err)
	}
}

func insertCoverage(t *testing.T, d *db.DB, track, feature string, mean float64) {
	t.Helper()

	_, err := d.Exec(
		`INSERT INTO coverage_stats (
			track, feature, feature_length, cov_mean, cov_median, cov_sd,
			cov_q1, cov_q3, cov_2_5, cov_97_5, cov_min, cov_max
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		track, feature, 1000, mean, mean, 5.0,
		mean-3, mean+3, mean-6, mean+6, mean-10, mean+10)
	if err != nil {
		t.Fatalf("failed to insert coverage row: %v", err)
	}
}

func insertSimulation(t *testing.T, d *db.DB, transcript string, log2diff, fractionUnique float64) {
	t.Helper()

	_, err := d.Exec(
		`INSERT INTO simulation_correlations (
			transcript_id, read_count, est_counts, fraction_bin,
			fraction_unique, cor, log2diff
		 ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		transcript, 100.0, 90.0, 0.5, fractionUnique, 0.9, log2diff)
	if err != nil {
		t.Fatalf("failed to insert simulation row: %v", err)
	}
}
