package tracker

import (
	"context"

	"github.com/dormeight/exome.report/internal/db"
)

// Polyphen predictions in their fixed report order, mildest first.
var polyphenPredictions = []string{
	"benign",
	"possibly damaging",
	"probably damaging",
	"unknown",
}

// PolyphenSummary counts a track's non-synonymous variants per Polyphen
// damage prediction from the shared polyphen_map table.
type PolyphenSummary struct {
	DB *db.DB
}

func (t *PolyphenSummary) Name() string { return "polyphen_summary" }

func (t *PolyphenSummary) Slices() []string { return nil }

func (t *PolyphenSummary) Tracks(ctx context.Context) ([]string, error) {
	return distinctTracks(ctx, t.DB, "polyphen_map")
}

func (t *PolyphenSummary) Call(ctx context.Context, track, slice string) (*Result, error) {
	rows, err := t.DB.QueryContext(ctx, `
		SELECT prediction, COUNT(*)
		FROM polyphen_map
		WHERE track = ?
		GROUP BY prediction
		ORDER BY CASE prediction
			WHEN 'benign' THEN 0
			WHEN 'possibly damaging' THEN 1
			WHEN 'probably damaging' THEN 2
			ELSE 3
		END`, track)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var prediction string
		var count int64
		if err := rows.Scan(&prediction, &count); err != nil {
			return nil, err
		}
		if prediction != "benign" && prediction != "possibly damaging" && prediction != "probably damaging" {
			prediction = "unknown"
		}
		counts[prediction] += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// every prediction appears, zero or not
	result := NewResult()
	for _, prediction := range polyphenPredictions {
		result.Append(prediction, counts[prediction])
	}
	return result, nil
}
