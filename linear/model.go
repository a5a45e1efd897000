// Package linear implements a binary logistic regression model usable as a
// one-vs-all scoring backend.
package linear

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/happyhackingspace/featvec/internal/artifact"
	"github.com/happyhackingspace/featvec/ova"
	"github.com/happyhackingspace/featvec/vector"
)

// Model is a sparse linear decision function.
type Model struct {
	Weights map[int]float64 `json:"weights"`
	Bias    float64         `json:"bias"`
}

// Decision returns the raw decision value w·v + b.
func (m *Model) Decision(v vector.Sparse) float64 {
	sum := m.Bias
	v.Each(func(idx int, val float64) {
		sum += m.Weights[idx] * val
	})
	return sum
}

// Probability returns the logistic of the decision value.
func (m *Model) Probability(v vector.Sparse) float64 {
	return sigmoid(m.Decision(v))
}

// SaveModel writes the model as JSON. Paths ending in .zst are compressed.
func SaveModel(model *Model, path string) error {
	data, err := json.Marshal(model)
	if err != nil {
		return err
	}
	return artifact.WriteFile(path, data)
}

// LoadModel reads a model written by SaveModel.
func LoadModel(path string) (*Model, error) {
	data, err := artifact.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var model Model
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if model.Weights == nil {
		model.Weights = make(map[int]float64)
	}
	return &model, nil
}

// Scorer scores vectors against model files named by their handle. Loaded
// models are cached.
type Scorer struct {
	mu     sync.RWMutex
	models map[ova.Handle]*Model
}

// NewScorer creates a Scorer with an empty cache.
func NewScorer() *Scorer {
	return &Scorer{models: make(map[ova.Handle]*Model)}
}

// Put registers an in-memory model under handle.
func (s *Scorer) Put(h ova.Handle, m *Model) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[h] = m
}

func (s *Scorer) model(h ova.Handle) (*Model, error) {
	s.mu.RLock()
	m, ok := s.models[h]
	s.mu.RUnlock()
	if ok {
		return m, nil
	}
	m, err := LoadModel(string(h))
	if err != nil {
		return nil, err
	}
	s.Put(h, m)
	return m, nil
}

// Score implements ova.Scorer.
func (s *Scorer) Score(ctx context.Context, h ova.Handle, v vector.Sparse) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m, err := s.model(h)
	if err != nil {
		return 0, err
	}
	return m.Decision(v), nil
}
