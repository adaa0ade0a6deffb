package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReportRun records one generated report: where it was written and how much
// it covered.
type ReportRun struct {
	ID           int       `json:"id"`
	RunID        string    `json:"run_id"`
	Dir          string    `json:"dir"`
	TrackerCount int       `json:"tracker_count"`
	TrackCount   int       `json:"track_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewRunID returns a fresh identifier for a report run.
func NewRunID() string {
	return uuid.NewString()
}

// CreateReportRun inserts a report run record and fills in its ID. A missing
// RunID gets generated.
func (db *DB) CreateReportRun(run *ReportRun) error {
	if run.RunID == "" {
		run.RunID = NewRunID()
	}

	result, err := db.Exec(
		`INSERT INTO report_runs (run_id, dir, tracker_count, track_count) VALUES (?, ?, ?, ?)`,
		run.RunID, run.Dir, run.TrackerCount, run.TrackCount,
	)
	if err != nil {
		return fmt.Errorf("failed to create report run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	run.ID = int(id)
	return nil
}

// GetReportRun retrieves a report run by its numeric ID.
func (db *DB) GetReportRun(id int) (*ReportRun, error) {
	var run ReportRun
	err := db.QueryRow(
		`SELECT id, run_id, dir, tracker_count, track_count, created_at
		 FROM report_runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.RunID, &run.Dir, &run.TrackerCount, &run.TrackCount, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report run %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report run: %w", err)
	}
	return &run, nil
}

// ListReportRuns returns report runs newest first.
func (db *DB) ListReportRuns(limit int) ([]ReportRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(
		`SELECT id, run_id, dir, tracker_count, track_count, created_at
		 FROM report_runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list report runs: %w", err)
	}
	defer rows.Close()

	var runs []ReportRun
	for rows.Next() {
		var run ReportRun
		if err := rows.Scan(&run.ID, &run.RunID, &run.Dir, &run.TrackerCount, &run.TrackCount, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
