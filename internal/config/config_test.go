package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	_, err := Load("/nonexistent/path/featvec.yaml")
	assert.Error(t, err)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, BackendLinear, cfg.Scoring.Backend)
	assert.Equal(t, 10, cfg.Evaluation.Folds)
	assert.NoError(t, cfg.Validate())
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "featvec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
encoder:
  cutoff: 3
  normalizer: idf
scoring:
  backend: exec
  binary: /usr/local/bin/svm_classify
  args: ["-v", "0"]
  parallelism: 4
training:
  c: 2.5
evaluation:
  folds: 5
output:
  compress: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Encoder.Cutoff)
	assert.Equal(t, "idf", cfg.Encoder.Normalizer)
	assert.Equal(t, BackendExec, cfg.Scoring.Backend)
	assert.Equal(t, []string{"-v", "0"}, cfg.Scoring.Args)
	assert.Equal(t, 4, cfg.Scoring.Parallelism)
	assert.Equal(t, 2.5, cfg.Training.C)
	assert.Equal(t, 100, cfg.Training.MaxIter)
	assert.Equal(t, 5, cfg.Evaluation.Folds)
	assert.True(t, cfg.Output.Compress)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown normalizer", "encoder:\n  normalizer: zscore\n"},
		{"unknown backend", "scoring:\n  backend: grpc\n"},
		{"exec without binary", "scoring:\n  backend: exec\n"},
		{"one fold", "evaluation:\n  folds: 1\n"},
		{"bad yaml", "encoder: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "encoder:\n  cutoff: -4\nscoring:\n  parallelism: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Encoder.Cutoff)
	assert.Equal(t, 1, cfg.Scoring.Parallelism)
}
