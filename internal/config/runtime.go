package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Runtime struct {
	HTTPAddr       string  `yaml:"http_addr"`
	CacheMaxItems  int     `yaml:"cache_max_items"`
	ObsBuffer      int     `yaml:"obs_buffer"`
	TableTolerance float64 `yaml:"table_tolerance"`
	DefaultFormat  string  `yaml:"default_format"`
	Metrics        bool    `yaml:"metrics"`
}

func Load() Runtime {
	return Runtime{
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		CacheMaxItems:  getenvInt("BAYES_CACHE_MAX_ITEMS", 1024, 1),
		ObsBuffer:      getenvInt("BAYES_OBS_BUFFER", 4096, 1),
		TableTolerance: getenvFloat("BAYES_TABLE_TOLERANCE", 1e-6, 0),
		DefaultFormat:  getenv("BAYES_DEFAULT_FORMAT", "xmlbif"),
		Metrics:        getenvBool("BAYES_METRICS", true),
	}
}

// LoadFile starts from Load and overlays the keys present in the YAML
// file at path. An empty path returns Load unchanged.
func LoadFile(path string) (Runtime, error) {
	cfg := Load()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	if cfg.CacheMaxItems < 1 || cfg.ObsBuffer < 1 || cfg.TableTolerance <= 0 {
		return cfg, fmt.Errorf("config %q: cache_max_items and obs_buffer must be >= 1 and table_tolerance > 0", path)
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback, min int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min {
		return fallback
	}
	return v
}

// getenvFloat falls back unless the value parses and is above min.
func getenvFloat(key string, fallback, min float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= min {
		return fallback
	}
	return v
}

func getenvBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}
