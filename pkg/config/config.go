// Package config loads geoproof settings through viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for a geoproof run.
// Values are populated from .geoproof.yaml, GEOPROOF_* env vars, and CLI flags.
type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	// EvalTimeout bounds the evaluation of one problem file.
	EvalTimeout         time.Duration `mapstructure:"eval_timeout"`
	SubtheoremPasses    int           `mapstructure:"subtheorem_passes"`
	AuditProofs         bool          `mapstructure:"audit_proofs"`
	FlattenTransitivity bool          `mapstructure:"flatten_transitivity"`
	// Parallelism is the number of problems proved at once.
	Parallelism int `mapstructure:"parallelism"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "console")
	viper.SetDefault("eval_timeout", 5*time.Second)
	viper.SetDefault("subtheorem_passes", 2)
	viper.SetDefault("audit_proofs", false)
	viper.SetDefault("flatten_transitivity", true)
	viper.SetDefault("parallelism", 4)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	if c.EvalTimeout <= 0 {
		return fmt.Errorf("eval_timeout must be positive, got %s", c.EvalTimeout)
	}
	if c.SubtheoremPasses < 1 {
		return fmt.Errorf("subtheorem_passes must be at least 1, got %d", c.SubtheoremPasses)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism)
	}
	return nil
}
