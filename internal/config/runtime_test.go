package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "BAYES_CACHE_MAX_ITEMS", "BAYES_OBS_BUFFER", "BAYES_TABLE_TOLERANCE", "BAYES_DEFAULT_FORMAT", "BAYES_METRICS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.HTTPAddr != ":8080" || cfg.CacheMaxItems != 1024 || cfg.ObsBuffer != 4096 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.TableTolerance != 1e-6 || cfg.DefaultFormat != "xmlbif" || !cfg.Metrics {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("BAYES_CACHE_MAX_ITEMS", "8")
	t.Setenv("BAYES_TABLE_TOLERANCE", "0.001")
	t.Setenv("BAYES_METRICS", "false")

	cfg := Load()
	if cfg.HTTPAddr != ":9090" || cfg.CacheMaxItems != 8 || cfg.TableTolerance != 0.001 || cfg.Metrics {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("BAYES_CACHE_MAX_ITEMS", "0")
	t.Setenv("BAYES_OBS_BUFFER", "many")
	t.Setenv("BAYES_TABLE_TOLERANCE", "-1")
	t.Setenv("BAYES_METRICS", "maybe")

	cfg := Load()
	if cfg.CacheMaxItems != 1024 || cfg.ObsBuffer != 4096 || cfg.TableTolerance != 1e-6 || !cfg.Metrics {
		t.Fatalf("expected fallbacks, got %+v", cfg)
	}
}

func TestLoadFile_Overlay(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("BAYES_CACHE_MAX_ITEMS", "")
	path := filepath.Join(t.TempDir(), "bayes.yaml")
	if err := os.WriteFile(path, []byte("default_format: dot\ncache_max_items: 16\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultFormat != "dot" || cfg.CacheMaxItems != 16 {
		t.Fatalf("expected overlay values, got %+v", cfg)
	}
	if cfg.HTTPAddr != ":7070" {
		t.Fatalf("expected env value kept for absent key, got %q", cfg.HTTPAddr)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("cache_max_items: [1"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(bad); err == nil {
		t.Fatalf("expected parse error")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("table_tolerance: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(invalid); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadFile_EmptyPath(t *testing.T) {
	cfg, err := LoadFile("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Load() {
		t.Fatalf("expected env config")
	}
}
