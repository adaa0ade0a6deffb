package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
)

// Placeholder marks a configuration value the operator must fill in before
// the pipeline can run. Validate rejects any value still carrying it.
const Placeholder = "?!"

// DefaultConfigPath is the conventional name of the pipeline configuration
// file in a working directory.
const DefaultConfigPath = "pipeline.ini"

// PipelineConfig holds the INI configuration shared between the upstream
// pipeline stages and the report trackers. Sections map one-to-one onto INI
// sections; fields omitted from the file keep their defaults, so partial
// configs are safe.
type PipelineConfig struct {
	General    GeneralConfig    `ini:"general"`
	ROI        ROIConfig        `ini:"roi"`
	Dedup      DedupConfig      `ini:"dedup"`
	Variants   VariantsConfig   `ini:"variants"`
	Annotation AnnotationConfig `ini:"annotation"`
	GWAS       GWASConfig       `ini:"gwas"`
	PCA        PCAConfig        `ini:"pca"`
	LD         LDConfig         `ini:"ld"`
	Report     ReportConfig     `ini:"report"`
}

type GeneralConfig struct {
	// Database is the path to the SQLite database populated by the upstream
	// pipeline stages and queried by the trackers.
	Database string `ini:"database"`
	Genome   string `ini:"genome"`
	// GenomeDir holds the indexed reference sequence used by the mappers.
	GenomeDir string `ini:"genome_dir"`
}

type ROIConfig struct {
	// Bed is the regions-of-interest bed file (chr, start, stop, feature).
	Bed string `ini:"bed"`
	// ToGene maps region features to gene symbols.
	ToGene string `ini:"to_gene"`
	// Samples is the sample sheet loaded into the samples table.
	Samples string `ini:"samples"`
}

type DedupConfig struct {
	// Method selects the duplicate-removal tool: samtools or picard.
	Method string `ini:"method"`
}

type VariantsConfig struct {
	// Filter is passed to the variant filter (vcfutils varFilter options).
	Filter   string `ini:"filter"`
	MinDepth int    `ini:"min_depth"`
}

type AnnotationConfig struct {
	// EnsemblVersion tags the transcript set used for overlap annotation.
	EnsemblVersion string `ini:"ensembl_version"`
	PolyphenModel  string `ini:"polyphen_model"`
}

type GWASConfig struct {
	// PThreshold is the genome-wide significance threshold.
	PThreshold float64 `ini:"p_threshold"`
	// TopHits caps the number of rows the top-hits tracker returns.
	TopHits int `ini:"top_hits"`
}

type PCAConfig struct {
	Components int `ini:"components"`
}

type LDConfig struct {
	R2Threshold float64 `ini:"r2_threshold"`
	WindowKb    int     `ini:"window_kb"`
}

type ReportConfig struct {
	Threads int `ini:"threads"`
	// Dir is where generated report tables and charts are written.
	Dir string `ini:"dir"`
	// FoldThreshold flags simulated transcripts whose abs(log2 fold
	// difference) exceeds it.
	FoldThreshold float64 `ini:"fold_threshold"`
}

// Default returns a PipelineConfig with the documented defaults. Values that
// have no sensible default carry the Placeholder marker.
func Default() *PipelineConfig {
	return &PipelineConfig{
		General: GeneralConfig{
			Database:  "csvdb",
			Genome:    Placeholder,
			GenomeDir: Placeholder,
		},
		ROI: ROIConfig{
			Bed:     Placeholder,
			ToGene:  Placeholder,
			Samples: Placeholder,
		},
		Dedup: DedupConfig{
			Method: "picard",
		},
		Variants: VariantsConfig{
			Filter:   "-d 10 -a 1",
			MinDepth: 10,
		},
		Annotation: AnnotationConfig{
			EnsemblVersion: "62",
			PolyphenModel:  "HumDiv",
		},
		GWAS: GWASConfig{
			PThreshold: 5e-8,
			TopHits:    20,
		},
		PCA: PCAConfig{
			Components: 10,
		},
		LD: LDConfig{
			R2Threshold: 0.8,
			WindowKb:    250,
		},
		Report: ReportConfig{
			Threads:       4,
			Dir:           "report",
			FoldThreshold: 0.585,
		},
	}
}

// Load reads an INI pipeline configuration from path. Fields omitted from
// the file keep their defaults.
func Load(path string) (*PipelineConfig, error) {
	cleanPath := filepath.Clean(path)

	// Keep a hard ceiling on file size; pipeline configs are small.
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	f, err := ini.Load(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := Default()
	if err := f.MapTo(cfg); err != nil {
		return nil, fmt.Errorf("failed to map config file: %w", err)
	}
	return cfg, nil
}

// Validate checks that no value still carries the Placeholder marker and
// that thresholds are sane.
func (c *PipelineConfig) Validate() error {
	var missing []string
	for key, value := range c.Flatten() {
		if s, ok := value.(string); ok && strings.Contains(s, Placeholder) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("unresolved placeholder values: %s", strings.Join(missing, ", "))
	}

	if c.GWAS.PThreshold <= 0 || c.GWAS.PThreshold >= 1 {
		return fmt.Errorf("gwas p_threshold must be in (0, 1), got %g", c.GWAS.PThreshold)
	}
	if c.LD.R2Threshold < 0 || c.LD.R2Threshold > 1 {
		return fmt.Errorf("ld r2_threshold must be in [0, 1], got %g", c.LD.R2Threshold)
	}
	if c.Report.Threads < 1 {
		return fmt.Errorf("report threads must be >= 1, got %d", c.Report.Threads)
	}
	return nil
}

// Flatten returns the configuration as section_key -> value, the shape the
// /api/config endpoint serves and the upstream pipeline interpolates into
// command statements.
func (c *PipelineConfig) Flatten() map[string]interface{} {
	return map[string]interface{}{
		"general_database":           c.General.Database,
		"general_genome":             c.General.Genome,
		"general_genome_dir":         c.General.GenomeDir,
		"roi_bed":                    c.ROI.Bed,
		"roi_to_gene":                c.ROI.ToGene,
		"roi_samples":                c.ROI.Samples,
		"dedup_method":               c.Dedup.Method,
		"variants_filter":            c.Variants.Filter,
		"variants_min_depth":         c.Variants.MinDepth,
		"annotation_ensembl_version": c.Annotation.EnsemblVersion,
		"annotation_polyphen_model":  c.Annotation.PolyphenModel,
		"gwas_p_threshold":           c.GWAS.PThreshold,
		"gwas_top_hits":              c.GWAS.TopHits,
		"pca_components":             c.PCA.Components,
		"ld_r2_threshold":            c.LD.R2Threshold,
		"ld_window_kb":               c.LD.WindowKb,
		"report_threads":             c.Report.Threads,
		"report_dir":                 c.Report.Dir,
		"report_fold_threshold":      c.Report.FoldThreshold,
	}
}
