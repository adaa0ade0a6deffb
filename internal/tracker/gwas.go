package tracker

import (
	"context"
	"fmt"

	"github.com/dormeight/exome.report/internal/db"
)

// GWASHit is the association tuple reported per SNP.
type GWASHit struct {
	Chr  string  `json:"chr"`
	BP   int64   `json:"bp"`
	Beta float64 `json:"beta"`
	P    float64 `json:"p"`
}

// GWASTopHits reports a track's strongest associations from the per-track
// <track>_gwas_results table, ordered by ascending p-value and cut at the
// configured significance threshold.
type GWASTopHits struct {
	DB *db.DB
	// PThreshold is the genome-wide significance cutoff ([gwas] p_threshold).
	PThreshold float64
	// Limit caps the number of hits returned ([gwas] top_hits).
	Limit int
}

func (t *GWASTopHits) Name() string { return "gwas_top_hits" }

func (t *GWASTopHits) Slices() []string { return nil }

func (t *GWASTopHits) Tracks(ctx context.Context) ([]string, error) {
	return tracksWithTable(ctx, t.DB, db.GWASResultsTable)
}

func (t *GWASTopHits) Call(ctx context.Context, track, slice string) (*Result, error) {
	table, err := perTrackTable(t.DB, track, db.GWASResultsTable)
	if err != nil {
		return nil, err
	}

	limit := t.Limit
	if limit <= 0 {
		limit = 20
	}

	rows, err := t.DB.QueryContext(ctx, fmt.Sprintf(
		`SELECT snp_id, chr, bp, beta, p FROM %q
		 WHERE p <= ? ORDER BY p ASC, snp_id ASC LIMIT ?`, table),
		t.PThreshold, limit)
	if err != nil {
		return nil, fmt.Errorf("gwas query for %s failed: %w", track, err)
	}
	defer rows.Close()

	result := NewResult()
	for rows.Next() {
		var snpID string
		var hit GWASHit
		if err := rows.Scan(&snpID, &hit.Chr, &hit.BP, &hit.Beta, &hit.P); err != nil {
			return nil, err
		}
		result.Append(snpID, hit)
	}
	return result, rows.Err()
}
