package tracker

import (
	"context"
	"fmt"

	"github.com/dormeight/exome.report/internal/db"
)

// Genomic context labels in their fixed report order. A variant overlapping
// several contexts is counted once, by this precedence.
var overlapLabels = []string{"TSS", "Upstream", "Gene", "Downstream", "Intergenic"}

// TranscriptOverlap reports how a track's variants distribute over the
// Ensembl transcript annotation, from the per-track
// <track>_merged_ensembl_transcript_overlap table.
type TranscriptOverlap struct {
	DB *db.DB
}

func (t *TranscriptOverlap) Name() string { return "transcript_overlap" }

func (t *TranscriptOverlap) Slices() []string { return nil }

func (t *TranscriptOverlap) Tracks(ctx context.Context) ([]string, error) {
	return tracksWithTable(ctx, t.DB, db.TranscriptOverlapTable)
}

func (t *TranscriptOverlap) Call(ctx context.Context, track, slice string) (*Result, error) {
	table, err := perTrackTable(t.DB, track, db.TranscriptOverlapTable)
	if err != nil {
		return nil, err
	}

	// CASE precedence fixes both the classification and the output order.
	statement := fmt.Sprintf(`
		SELECT
			total(CASE WHEN is_tss THEN 1 ELSE 0 END) AS tss,
			total(CASE WHEN NOT is_tss AND is_upstream THEN 1 ELSE 0 END) AS upstream,
			total(CASE WHEN NOT is_tss AND NOT is_upstream AND is_gene THEN 1 ELSE 0 END) AS gene,
			total(CASE WHEN NOT is_tss AND NOT is_upstream AND NOT is_gene AND is_downstream THEN 1 ELSE 0 END) AS downstream,
			total(CASE WHEN NOT is_tss AND NOT is_upstream AND NOT is_gene AND NOT is_downstream THEN 1 ELSE 0 END) AS intergenic
		FROM %q`, table)

	counts := make([]float64, len(overlapLabels))
	dest := make([]interface{}, len(counts))
	for i := range counts {
		dest[i] = &counts[i]
	}
	if err := t.DB.QueryRowContext(ctx, statement).Scan(dest...); err != nil {
		return nil, fmt.Errorf("transcript overlap query for %s failed: %w", track, err)
	}

	result := NewResult()
	for i, label := range overlapLabels {
		result.Append(label, int64(counts[i]))
	}
	return result, nil
}
