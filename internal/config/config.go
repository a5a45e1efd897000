// Package config loads featvec settings from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/happyhackingspace/featvec/encoder"
)

// Scoring backends.
const (
	BackendLinear = "linear"
	BackendExec   = "exec"
)

// Config holds training, scoring and output settings.
type Config struct {
	Encoder    EncoderConfig    `yaml:"encoder"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Training   TrainingConfig   `yaml:"training"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Output     OutputConfig     `yaml:"output"`
}

type EncoderConfig struct {
	Cutoff     int    `yaml:"cutoff"`     // minimum feature count kept at finalize
	Normalizer string `yaml:"normalizer"` // identity, l2, maxabs or idf
}

type ScoringConfig struct {
	Backend     string   `yaml:"backend"` // linear or exec
	Binary      string   `yaml:"binary"`  // classify binary for the exec backend
	Args        []string `yaml:"args"`
	Parallelism int      `yaml:"parallelism"`
}

type TrainingConfig struct {
	C       float64 `yaml:"c"`
	MaxIter int     `yaml:"max_iter"`
}

type EvaluationConfig struct {
	Folds int `yaml:"folds"`
}

type OutputConfig struct {
	Compress bool `yaml:"compress"` // zstd model and lookup artifacts
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Encoder: EncoderConfig{
			Cutoff:     1,
			Normalizer: encoder.KindIdentity,
		},
		Scoring: ScoringConfig{
			Backend:     BackendLinear,
			Parallelism: 1,
		},
		Training: TrainingConfig{
			C:       5.0,
			MaxIter: 100,
		},
		Evaluation: EvaluationConfig{
			Folds: 10,
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	d := Default()
	if cfg.Encoder.Cutoff < 0 {
		cfg.Encoder.Cutoff = 0
	}
	if cfg.Encoder.Normalizer == "" {
		cfg.Encoder.Normalizer = d.Encoder.Normalizer
	}
	if cfg.Scoring.Backend == "" {
		cfg.Scoring.Backend = d.Scoring.Backend
	}
	if cfg.Scoring.Parallelism <= 0 {
		cfg.Scoring.Parallelism = d.Scoring.Parallelism
	}
	if cfg.Training.C <= 0 {
		cfg.Training.C = d.Training.C
	}
	if cfg.Training.MaxIter <= 0 {
		cfg.Training.MaxIter = d.Training.MaxIter
	}
	if cfg.Evaluation.Folds <= 0 {
		cfg.Evaluation.Folds = d.Evaluation.Folds
	}
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	switch c.Encoder.Normalizer {
	case encoder.KindIdentity, encoder.KindL2, encoder.KindMaxAbs, encoder.KindIDF:
	default:
		return fmt.Errorf("encoder.normalizer: unknown kind %q", c.Encoder.Normalizer)
	}
	switch c.Scoring.Backend {
	case BackendLinear:
	case BackendExec:
		if c.Scoring.Binary == "" {
			return fmt.Errorf("scoring.binary is required for the %s backend", BackendExec)
		}
	default:
		return fmt.Errorf("scoring.backend: unknown backend %q", c.Scoring.Backend)
	}
	if c.Evaluation.Folds < 2 {
		return fmt.Errorf("evaluation.folds must be at least 2, got %d", c.Evaluation.Folds)
	}
	return nil
}
