package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func TestLoad_Defaults(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFormat", cfg.LogFormat, "console"},
		{"EvalTimeout", cfg.EvalTimeout, 5 * time.Second},
		{"SubtheoremPasses", cfg.SubtheoremPasses, 2},
		{"AuditProofs", cfg.AuditProofs, false},
		{"FlattenTransitivity", cfg.FlattenTransitivity, true},
		{"Parallelism", cfg.Parallelism, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "log_level",
			envKey: "GEOPROOF_LOG_LEVEL",
			envVal: "debug",
			field:  func(c Config) any { return c.LogLevel },
			want:   "debug",
		},
		{
			name:   "log_format",
			envKey: "GEOPROOF_LOG_FORMAT",
			envVal: "json",
			field:  func(c Config) any { return c.LogFormat },
			want:   "json",
		},
		{
			name:   "eval_timeout",
			envKey: "GEOPROOF_EVAL_TIMEOUT",
			envVal: "30s",
			field:  func(c Config) any { return c.EvalTimeout },
			want:   30 * time.Second,
		},
		{
			name:   "subtheorem_passes",
			envKey: "GEOPROOF_SUBTHEOREM_PASSES",
			envVal: "3",
			field:  func(c Config) any { return c.SubtheoremPasses },
			want:   3,
		},
		{
			name:   "audit_proofs",
			envKey: "GEOPROOF_AUDIT_PROOFS",
			envVal: "true",
			field:  func(c Config) any { return c.AuditProofs },
			want:   true,
		},
		{
			name:   "flatten_transitivity",
			envKey: "GEOPROOF_FLATTEN_TRANSITIVITY",
			envVal: "false",
			field:  func(c Config) any { return c.FlattenTransitivity },
			want:   false,
		},
		{
			name:   "parallelism",
			envKey: "GEOPROOF_PARALLELISM",
			envVal: "8",
			field:  func(c Config) any { return c.Parallelism },
			want:   8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			viper.SetEnvPrefix("GEOPROOF")
			viper.AutomaticEnv()

			t.Setenv(tt.envKey, tt.envVal)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			got := tt.field(cfg)
			if got != tt.want {
				t.Errorf("%s: got %v (%T), want %v (%T)", tt.name, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	resetViper()

	path := t.TempDir() + "/.geoproof.yaml"
	data := "log_format: json\nsubtheorem_passes: 1\nparallelism: 2\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.LogFormat != "json" || cfg.SubtheoremPasses != 1 || cfg.Parallelism != 2 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want default info", cfg.LogLevel)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value any
	}{
		{"log_format", "xml"},
		{"eval_timeout", time.Duration(0)},
		{"subtheorem_passes", 0},
		{"parallelism", -1},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			resetViper()
			viper.Set(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%v should fail", tt.key, tt.value)
			}
		})
	}
}
