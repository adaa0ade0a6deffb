package tracker

import (
	"context"
	"fmt"

	"github.com/dormeight/exome.report/internal/db"
)

// perTrackTable validates a track name and resolves its per-track table,
// failing with the table name when the upstream pipeline has not produced it.
func perTrackTable(d *db.DB, track string, tableFor func(string) string) (string, error) {
	if !db.ValidTrack(track) {
		return "", fmt.Errorf("%w %q", ErrBadTrack, track)
	}
	table := tableFor(track)
	ok, err := d.HasTable(table)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("missing table %s for track %s: %w", table, track, ErrNotFound)
	}
	return table, nil
}

// tracksWithTable lists the discovered tracks that have the per-track table
// produced by tableFor.
func tracksWithTable(ctx context.Context, d *db.DB, tableFor func(string) string) ([]string, error) {
	all, err := d.Tracks()
	if err != nil {
		return nil, err
	}
	var tracks []string
	for _, track := range all {
		ok, err := d.HasTable(tableFor(track))
		if err != nil {
			return nil, err
		}
		if ok {
			tracks = append(tracks, track)
		}
	}
	return tracks, nil
}

// distinctTracks lists the distinct track values of a shared table column.
func distinctTracks(ctx context.Context, d *db.DB, table string) ([]string, error) {
	rows, err := d.QueryContext(ctx,
		fmt.Sprintf(`SELECT DISTINCT track FROM %q ORDER BY track`, table))
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks in %s: %w", table, err)
	}
	defer rows.Close()

	var tracks []string
	for rows.Next() {
		var track string
		if err := rows.Scan(&track); err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}
