package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dormeight/exome.report/internal/db"
	"github.com/dormeight/exome.report/internal/monitoring"
	"github.com/dormeight/exome.report/internal/tracker"
)

// Generator runs every registered tracker over every track it knows and
// writes the formatted output to a directory: one TSV per tracker/track pair
// and a combined chart page, plus a report_runs record in the database.
type Generator struct {
	DB       *db.DB
	Registry *tracker.Registry
	Dir      string
}

// Run generates the report. Any tracker failure aborts the run; there is no
// partial-failure recovery, the caller decides whether to retry.
func (g *Generator) Run(ctx context.Context) (*db.ReportRun, error) {
	if err := os.MkdirAll(g.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	page := NewReportPage("Pipeline report")
	trackSet := make(map[string]bool)
	trackerCount := 0

	for _, t := range g.Registry.All() {
		tracks, err := t.Tracks(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list tracks for %s: %w", t.Name(), err)
		}
		if len(tracks) == 0 {
			monitoring.Warnf("tracker %s has no tracks, skipping", t.Name())
			continue
		}
		trackerCount++

		for _, track := range tracks {
			trackSet[track] = true

			result, err := t.Call(ctx, track, "")
			if err != nil {
				return nil, fmt.Errorf("tracker %s failed for track %s: %w", t.Name(), track, err)
			}

			path := filepath.Join(g.Dir, fmt.Sprintf("%s_%s.tsv", t.Name(), track))
			if err := g.writeTSVFile(path, result); err != nil {
				return nil, err
			}

			if bar := BarChart(t.Name(), "track: "+track, result); bar != nil {
				page.AddCharts(bar)
			}
		}
	}

	pagePath := filepath.Join(g.Dir, "report.html")
	f, err := os.Create(pagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", pagePath, err)
	}
	if err := page.Render(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to render report page: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	run := &db.ReportRun{
		Dir:          g.Dir,
		TrackerCount: trackerCount,
		TrackCount:   len(trackSet),
	}
	if err := g.DB.CreateReportRun(run); err != nil {
		return nil, err
	}

	monitoring.Logf("report run %s: %d trackers over %d tracks written to %s",
		run.RunID, run.TrackerCount, run.TrackCount, g.Dir)
	return run, nil
}

func (g *Generator) writeTSVFile(path string, result *tracker.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteTSV(f, result); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
