package tracker

import (
	"context"
	"fmt"

	"github.com/dormeight/exome.report/internal/db"
)

// Coding consequence classes in their fixed report order. Classes found in
// the data but not listed here are appended under "other".
var consequenceClasses = []string{
	"synonymous",
	"non-synonymous",
	"stop-gained",
	"stop-lost",
	"frameshift",
	"splice",
}

// EffectDetail is the per-variant tuple returned when a consequence slice is
// requested.
type EffectDetail struct {
	GeneID       string `json:"gene_id"`
	TranscriptID string `json:"transcript_id"`
	AAChange     string `json:"aa_change"`
}

// VariantEffectsCDS summarises the coding consequences of a track's variants
// from the per-track <track>_effects_cds table. Without a slice it returns
// counts per consequence class; with a slice it lists the variants of that
// class.
type VariantEffectsCDS struct {
	DB *db.DB
}

func (t *VariantEffectsCDS) Name() string { return "variant_effects_cds" }

func (t *VariantEffectsCDS) Slices() []string {
	return append([]string(nil), consequenceClasses...)
}

func (t *VariantEffectsCDS) Tracks(ctx context.Context) ([]string, error) {
	return tracksWithTable(ctx, t.DB, db.EffectsCDSTable)
}

func (t *VariantEffectsCDS) Call(ctx context.Context, track, slice string) (*Result, error) {
	table, err := perTrackTable(t.DB, track, db.EffectsCDSTable)
	if err != nil {
		return nil, err
	}
	if slice != "" {
		return t.callSlice(ctx, table, track, slice)
	}

	rows, err := t.DB.QueryContext(ctx, fmt.Sprintf(
		`SELECT consequence, COUNT(*) FROM %q GROUP BY consequence`, table))
	if err != nil {
		return nil, fmt.Errorf("effects query for %s failed: %w", track, err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	var other int64
	known := make(map[string]bool, len(consequenceClasses))
	for _, class := range consequenceClasses {
		known[class] = true
	}
	for rows.Next() {
		var class string
		var count int64
		if err := rows.Scan(&class, &count); err != nil {
			return nil, err
		}
		if known[class] {
			counts[class] = count
		} else {
			other += count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := NewResult()
	for _, class := range consequenceClasses {
		result.Append(class, counts[class])
	}
	result.Append("other", other)
	return result, nil
}

func (t *VariantEffectsCDS) callSlice(ctx context.Context, table, track, slice string) (*Result, error) {
	rows, err := t.DB.QueryContext(ctx, fmt.Sprintf(
		`SELECT snp_id, gene_id, transcript_id, aa_change
		 FROM %q WHERE consequence = ? ORDER BY snp_id`, table), slice)
	if err != nil {
		return nil, fmt.Errorf("effects slice query for %s/%s failed: %w", track, slice, err)
	}
	defer rows.Close()

	result := NewResult()
	for rows.Next() {
		var snpID string
		var detail EffectDetail
		if err := rows.Scan(&snpID, &detail.GeneID, &detail.TranscriptID, &detail.AAChange); err != nil {
			return nil, err
		}
		result.Append(snpID, detail)
	}
	return result, rows.Err()
}
