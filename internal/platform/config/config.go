// Package config is centralized process configuration.
// Values are layered defaults -> optional YAML file -> environment, and the
// resulting typed Config is passed into builders.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config contains process configuration for the api and worker binaries.
type Config struct {
	ServiceName string `koanf:"service_name"`
	HTTPAddr    string `koanf:"http_addr"`
	MetricsAddr string `koanf:"metrics_addr"`
	PostgresDSN string `koanf:"postgres_dsn"`

	// Scoring knobs made explicit instead of ambient globals.
	ScoreMin             int    `koanf:"score_min"`
	ScoreMax             int    `koanf:"score_max"`
	NormalizationPolicy  string `koanf:"normalization_policy"`
	WorkerPollIntervalMS int    `koanf:"worker_poll_interval_ms"`
	OutboxBatchSize      int    `koanf:"outbox_batch_size"`
}

func defaults() Config {
	return Config{
		ServiceName:          "peerbonus",
		HTTPAddr:             ":8080",
		MetricsAddr:          ":9090",
		ScoreMin:             0,
		ScoreMax:             10,
		NormalizationPolicy:  "ratio_to_max",
		WorkerPollIntervalMS: 5000,
		OutboxBatchSize:      100,
	}
}

// Load builds a Config by layering defaults, an optional YAML file pointed at
// by PEERBONUS_CONFIG, and PEERBONUS_-prefixed environment variables.
func Load() (Config, error) {
	cfg := defaults()

	k := koanf.New(".")
	if path := os.Getenv("PEERBONUS_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, err
		}
	}

	// PEERBONUS_POSTGRES_DSN -> postgres_dsn; underscores are preserved to
	// match the koanf tags on the struct.
	envProvider := env.Provider("PEERBONUS_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "peerbonus_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, err
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return Config{}, errors.New("http_addr must not be empty")
	}
	if cfg.ScoreMax <= cfg.ScoreMin {
		return Config{}, errors.New("score_max must be greater than score_min")
	}
	switch cfg.NormalizationPolicy {
	case "ratio_to_max", "minmax_rescale":
	default:
		return Config{}, errors.New("normalization_policy must be ratio_to_max or minmax_rescale")
	}
	return cfg, nil
}

// WorkerPollInterval returns the worker loop cadence as a duration.
func (c Config) WorkerPollInterval() time.Duration {
	if c.WorkerPollIntervalMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.WorkerPollIntervalMS) * time.Millisecond
}
