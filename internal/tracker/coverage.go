package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/dormeight/exome.report/internal/db"
)

// CoverageStats reports read-depth coverage over the regions of interest for
// a track, from the shared coverage_stats table. Without a slice it returns
// a whole-track summary of the per-feature mean coverages; with a feature
// slice it returns that feature's full coverage row.
type CoverageStats struct {
	DB *db.DB
}

func (t *CoverageStats) Name() string { return "coverage_stats" }

// Slices are free-form feature names; the set depends on the loaded roi bed.
func (t *CoverageStats) Slices() []string { return nil }

func (t *CoverageStats) Tracks(ctx context.Context) ([]string, error) {
	return distinctTracks(ctx, t.DB, "coverage_stats")
}

func (t *CoverageStats) Call(ctx context.Context, track, slice string) (*Result, error) {
	if slice != "" {
		return t.callFeature(ctx, track, slice)
	}

	rows, err := t.DB.QueryContext(ctx,
		`SELECT cov_mean FROM coverage_stats WHERE track = ? ORDER BY feature`, track)
	if err != nil {
		return nil, fmt.Errorf("coverage query for %s failed: %w", track, err)
	}
	defer rows.Close()

	var means []float64
	for rows.Next() {
		var mean float64
		if err := rows.Scan(&mean); err != nil {
			return nil, err
		}
		means = append(means, mean)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(means) == 0 {
		return nil, fmt.Errorf("no coverage stats for track %s: %w", track, ErrNotFound)
	}

	sort.Float64s(means)
	result := NewResult()
	result.Append("features", int64(len(means)))
	result.Append("mean", stat.Mean(means, nil))
	result.Append("median", stat.Quantile(0.5, stat.Empirical, means, nil))
	result.Append("sd", stat.StdDev(means, nil))
	result.Append("q1", stat.Quantile(0.25, stat.Empirical, means, nil))
	result.Append("q3", stat.Quantile(0.75, stat.Empirical, means, nil))
	result.Append("min", means[0])
	result.Append("max", means[len(means)-1])
	return result, nil
}

func (t *CoverageStats) callFeature(ctx context.Context, track, feature string) (*Result, error) {
	var (
		featureLength                    int64
		mean, median, sd, q1, q3, lo, hi float64
		covMin, covMax                   float64
	)
	err := t.DB.QueryRowContext(ctx, `
		SELECT feature_length, cov_mean, cov_median, cov_sd,
		       cov_q1, cov_q3, cov_2_5, cov_97_5, cov_min, cov_max
		FROM coverage_stats WHERE track = ? AND feature = ?`,
		track, feature,
	).Scan(&featureLength, &mean, &median, &sd, &q1, &q3, &lo, &hi, &covMin, &covMax)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no coverage stats for track %s feature %s: %w", track, feature, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("coverage feature query for %s/%s failed: %w", track, feature, err)
	}

	result := NewResult()
	result.Append("feature_length", featureLength)
	result.Append("mean", mean)
	result.Append("median", median)
	result.Append("sd", sd)
	result.Append("q1", q1)
	result.Append("q3", q3)
	result.Append("q2_5", lo)
	result.Append("q97_5", hi)
	result.Append("min", covMin)
	result.Append("max", covMax)
	return result, nil
}
