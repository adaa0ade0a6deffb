package tracker

import (
	"context"
	"fmt"

	"github.com/dormeight/exome.report/internal/db"
)

// KmerFractionThreshold flags simulated transcripts with too few unique
// kmers to quantify reliably.
const KmerFractionThreshold = 0.03

// SimulationFoldFlags summarises the expression simulation QC: how many
// simulated transcripts were flagged versus passed. The "fold" slice flags
// on absolute log2 fold difference between simulated and estimated counts;
// the "kmers" slice flags on unique kmer fraction. The underlying
// simulation_correlations table is not split by track.
type SimulationFoldFlags struct {
	DB *db.DB
	// FoldThreshold is the abs(log2diff) cutoff ([report] fold_threshold).
	FoldThreshold float64
}

func (t *SimulationFoldFlags) Name() string { return "simulation_flags" }

func (t *SimulationFoldFlags) Slices() []string { return []string{"fold", "kmers"} }

func (t *SimulationFoldFlags) Tracks(ctx context.Context) ([]string, error) {
	return []string{"all"}, nil
}

func (t *SimulationFoldFlags) Call(ctx context.Context, track, slice string) (*Result, error) {
	// The shared table has no per-track split; only the pseudo-track
	// Tracks advertises is valid.
	if track != "all" {
		return nil, fmt.Errorf("unknown simulation track %q: %w", track, ErrNotFound)
	}

	var statement string
	var threshold float64
	switch slice {
	case "", "fold":
		statement = `
			SELECT
				total(CASE WHEN abs(log2diff) > ? THEN 1 ELSE 0 END) AS flagged,
				total(CASE WHEN abs(log2diff) <= ? THEN 1 ELSE 0 END) AS passed
			FROM simulation_correlations`
		threshold = t.FoldThreshold
	case "kmers":
		statement = `
			SELECT
				total(CASE WHEN fraction_unique < ? THEN 1 ELSE 0 END) AS flagged,
				total(CASE WHEN fraction_unique >= ? THEN 1 ELSE 0 END) AS passed
			FROM simulation_correlations`
		threshold = KmerFractionThreshold
	default:
		return nil, fmt.Errorf("unknown simulation slice %q", slice)
	}

	var flagged, passed float64
	if err := t.DB.QueryRowContext(ctx, statement, threshold, threshold).Scan(&flagged, &passed); err != nil {
		return nil, fmt.Errorf("simulation flags query failed: %w", err)
	}

	result := NewResult()
	result.Append("flagged", int64(flagged))
	result.Append("passed", int64(passed))
	return result, nil
}
