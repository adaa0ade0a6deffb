package tracker

import (
	"github.com/dormeight/exome.report/internal/config"
	"github.com/dormeight/exome.report/internal/db"
)

// DefaultRegistry builds the standard tracker set over a results database,
// threading the report thresholds from the pipeline configuration.
func DefaultRegistry(d *db.DB, cfg *config.PipelineConfig) *Registry {
	reg := NewRegistry()
	for _, t := range []Tracker{
		&TranscriptOverlap{DB: d},
		&VariantEffectsCDS{DB: d},
		&PolyphenSummary{DB: d},
		&CoverageStats{DB: d},
		&VariantStats{DB: d},
		&GWASTopHits{DB: d, PThreshold: cfg.GWAS.PThreshold, Limit: cfg.GWAS.TopHits},
		&SimulationFoldFlags{DB: d, FoldThreshold: cfg.Report.FoldThreshold},
	} {
		// names are unique by construction
		_ = reg.Register(t)
	}
	return reg
}
