package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dormeight/exome.report/internal/config"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	orig := *configPath
	defer func() { *configPath = orig }()
	*configPath = filepath.Join(t.TempDir(), "pipeline.ini")

	cfg := loadConfig()
	want := config.Default()
	if cfg.Dedup.Method != want.Dedup.Method {
		t.Errorf("dedup method = %q, want default %q", cfg.Dedup.Method, want.Dedup.Method)
	}
	if cfg.GWAS.PThreshold != want.GWAS.PThreshold {
		t.Errorf("gwas p_threshold = %g, want default %g", cfg.GWAS.PThreshold, want.GWAS.PThreshold)
	}
}

func TestLoadConfigReadsFile(t *testing.T) {
	orig := *configPath
	defer func() { *configPath = orig }()

	path := filepath.Join(t.TempDir(), "pipeline.ini")
	contents := "[dedup]\nmethod = samtools\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	*configPath = path

	cfg := loadConfig()
	if cfg.Dedup.Method != "samtools" {
		t.Errorf("dedup method = %q, want %q", cfg.Dedup.Method, "samtools")
	}
}
