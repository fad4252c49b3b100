package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServiceName != "peerbonus" || cfg.HTTPAddr != ":8080" || cfg.MetricsAddr != ":9090" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ScoreMin != 0 || cfg.ScoreMax != 10 {
		t.Fatalf("unexpected score bounds: %+v", cfg)
	}
	if cfg.NormalizationPolicy != "ratio_to_max" {
		t.Fatalf("unexpected default policy: %s", cfg.NormalizationPolicy)
	}
	if cfg.WorkerPollInterval() != 5*time.Second {
		t.Fatalf("unexpected poll interval: %s", cfg.WorkerPollInterval())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PEERBONUS_HTTP_ADDR", ":9090")
	t.Setenv("PEERBONUS_SCORE_MAX", "5")
	t.Setenv("PEERBONUS_NORMALIZATION_POLICY", "minmax_rescale")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("expected env http_addr, got %s", cfg.HTTPAddr)
	}
	if cfg.ScoreMax != 5 {
		t.Fatalf("expected env score_max, got %d", cfg.ScoreMax)
	}
	if cfg.NormalizationPolicy != "minmax_rescale" {
		t.Fatalf("expected env policy, got %s", cfg.NormalizationPolicy)
	}
}

func TestLoadYAMLFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "http_addr: \":7070\"\nscore_max: 7\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file failed: %v", err)
	}
	t.Setenv("PEERBONUS_CONFIG", path)
	t.Setenv("PEERBONUS_SCORE_MAX", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.HTTPAddr != ":7070" {
		t.Fatalf("expected file http_addr, got %s", cfg.HTTPAddr)
	}
	// Environment wins over the file.
	if cfg.ScoreMax != 8 {
		t.Fatalf("expected env to override file, got %d", cfg.ScoreMax)
	}
}

func TestLoadRejectsInvalidPolicy(t *testing.T) {
	t.Setenv("PEERBONUS_NORMALIZATION_POLICY", "median")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestLoadRejectsInvertedScoreBounds(t *testing.T) {
	t.Setenv("PEERBONUS_SCORE_MIN", "10")
	t.Setenv("PEERBONUS_SCORE_MAX", "1")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for inverted score bounds")
	}
}
