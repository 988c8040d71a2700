// Package config loads the runtime configuration (max rounds, data dir,
// epsilon, sigmoid constant, profile weight overrides) the way
// cmd/default_config.go loads defaults.yaml: strict yaml.v3 parsing, with
// github.com/spf13/viper layered on top for environment variable overrides
// that don't require touching the schema.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/seoul-transit/access-router/internal/weighting"
)

// WeightOverride holds one profile's criterion weights as parsed from the
// weight_overrides block of config.yaml. Nothing outside this package reads
// it: weighting.For always returns the built-in weight vectors. Epsilon and
// SigmoidK are likewise parsed but not consumed elsewhere.
type WeightOverride struct {
	TravelTime         float64 `yaml:"travel_time"`
	Transfers          float64 `yaml:"transfers"`
	TransferDifficulty float64 `yaml:"transfer_difficulty"`
	Convenience        float64 `yaml:"convenience"`
	Congestion         float64 `yaml:"congestion"`
}

// Config is the full runtime config.yaml structure. Every top-level field
// must be listed here to satisfy KnownFields(true) strict parsing.
type Config struct {
	MaxRounds       int                                   `yaml:"max_rounds"`
	Epsilon         float64                               `yaml:"epsilon"`
	SigmoidK        float64                               `yaml:"sigmoid_k"`
	DataDir         string                                `yaml:"data_dir"`
	WeightOverrides map[weighting.Profile]WeightOverride `yaml:"weight_overrides"`
}

// defaults mirrors the fixed constants in internal/engine,
// internal/weighting and internal/facility, applied when config.yaml omits
// a field.
func defaults() Config {
	return Config{
		MaxRounds: 5,
		Epsilon:   weighting.Epsilon,
		SigmoidK:  1.0,
		DataDir:   "./data",
	}
}

// Load reads config.yaml with strict field checking, then layers
// environment variable overrides (ACCESS_ROUTER_MAX_ROUNDS,
// ACCESS_ROUTER_DATA_DIR) via viper on top, matching the way
// shivamshaw23-Hintro layers viper over its own settings struct.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("ACCESS_ROUTER")
	v.AutomaticEnv()
	v.SetDefault("max_rounds", cfg.MaxRounds)
	v.SetDefault("data_dir", cfg.DataDir)
	cfg.MaxRounds = v.GetInt("max_rounds")
	cfg.DataDir = v.GetString("data_dir")

	return cfg, nil
}
