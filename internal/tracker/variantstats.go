package tracker

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dormeight/exome.report/internal/db"
)

// VariantStats reports a track's variant calling summary, joining the
// vcf_stats, snp_stats and indel_stats tables into one ordered table.
type VariantStats struct {
	DB *db.DB
}

func (t *VariantStats) Name() string { return "variant_stats" }

func (t *VariantStats) Slices() []string { return nil }

func (t *VariantStats) Tracks(ctx context.Context) ([]string, error) {
	return distinctTracks(ctx, t.DB, "vcf_stats")
}

func (t *VariantStats) Call(ctx context.Context, track, slice string) (*Result, error) {
	var variantsTotal, shared, private int64
	var tsTv float64
	err := t.DB.QueryRowContext(ctx,
		`SELECT variants_total, shared, private, ts_tv FROM vcf_stats WHERE track = ?`,
		track,
	).Scan(&variantsTotal, &shared, &private, &tsTv)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no vcf stats for track %s: %w", track, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("vcf stats query for %s failed: %w", track, err)
	}

	result := NewResult()
	result.Append("variants total", variantsTotal)
	result.Append("shared", shared)
	result.Append("private", private)
	result.Append("ts/tv", tsTv)

	// snp and indel breakdowns are optional; a track may have been called
	// before those loaders ran
	var snps, transitions, transversions int64
	err = t.DB.QueryRowContext(ctx,
		`SELECT count, transitions, transversions FROM snp_stats WHERE track = ?`,
		track,
	).Scan(&snps, &transitions, &transversions)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("snp stats query for %s failed: %w", track, err)
	}
	if err == nil {
		result.Append("snps", snps)
		result.Append("transitions", transitions)
		result.Append("transversions", transversions)
	}

	var indels, insertions, deletions int64
	err = t.DB.QueryRowContext(ctx,
		`SELECT count, insertions, deletions FROM indel_stats WHERE track = ?`,
		track,
	).Scan(&indels, &insertions, &deletions)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("indel stats query for %s failed: %w", track, err)
	}
	if err == nil {
		result.Append("indels", indels)
		result.Append("insertions", insertions)
		result.Append("deletions", deletions)
	}

	return result, nil
}
