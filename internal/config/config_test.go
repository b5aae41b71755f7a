package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	content := `
reader:
  file: captures/dns.pcap
  mode: materialized
  build_flow_table: true
  verbose: true
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Reader.File != "captures/dns.pcap" {
		t.Errorf("Unexpected file: %q", cfg.Reader.File)
	}
	if cfg.Reader.Mode != "materialized" {
		t.Errorf("Unexpected mode: %q", cfg.Reader.Mode)
	}
	if !cfg.Reader.BuildFlowTable {
		t.Error("Expected build_flow_table to be true")
	}
	if cfg.Reader.SortByTimestamp {
		t.Error("sort_by_timestamp should default to false")
	}
	if !cfg.Reader.Verbose {
		t.Error("Expected verbose to be true")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Expected an error for a missing config file")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("reader: ["), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("Expected an error for invalid YAML")
	}
}
