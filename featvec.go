// Package featvec tags token sequences with BIO chunk labels using
// one-vs-all linear classifiers over sparse feature vectors.
//
//	cfg := config.Default()
//	t, _ := featvec.Train(sentences, cfg)
//	_ = t.Save("model", false)
//	chunks, _ := t.ChunkWords(ctx, []string{"John", "lives", "in", "Paris"})
//	fmt.Println(chunks) // [PER[0:1] LOC[3:4]]
package featvec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/happyhackingspace/featvec/chunking"
	"github.com/happyhackingspace/featvec/encoder"
	"github.com/happyhackingspace/featvec/internal/artifact"
	"github.com/happyhackingspace/featvec/internal/config"
	"github.com/happyhackingspace/featvec/internal/corpus"
	"github.com/happyhackingspace/featvec/linear"
	"github.com/happyhackingspace/featvec/ova"
	"github.com/happyhackingspace/featvec/svmlight"
)

// ManifestFileName describes a saved model bundle.
const ManifestFileName = "manifest.yaml"

const manifestFormat = 1

// ErrNotTrained is returned when saving a tagger whose models are not held in memory.
var ErrNotTrained = errors.New("featvec: models are not held in memory")

// Manifest is the bundle description stored in manifest.yaml.
type Manifest struct {
	Format     int                    `yaml:"format"`
	Labels     []string               `yaml:"labels"`
	Normalizer encoder.NormalizerSpec `yaml:"normalizer"`
	Backend    string                 `yaml:"backend"`
	Models     map[int]string         `yaml:"models"`
}

// Tagger assigns BIO labels to token sequences.
type Tagger struct {
	Encoder    *encoder.Encoder
	Classifier *ova.Classifier
	Outcomes   *ova.Outcomes

	models map[int]*linear.Model
}

func modelFileName(class int, compress bool) string {
	name := fmt.Sprintf("model-%d.json", class)
	if compress {
		name += artifact.ZstdExt
	}
	return name
}

// Load reads a model bundle from dir. cfg.Scoring.Backend must name the
// backend the bundle was written for; cfg also supplies the exec binary and
// scoring parallelism.
func Load(dir string, cfg config.Config) (*Tagger, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	if err != nil {
		return nil, fmt.Errorf("featvec: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("featvec: %s: %w", ManifestFileName, err)
	}
	if m.Format != manifestFormat {
		return nil, fmt.Errorf("featvec: unsupported bundle format %d", m.Format)
	}

	normalizer, err := m.Normalizer.Build()
	if err != nil {
		return nil, fmt.Errorf("featvec: %w", err)
	}
	enc, err := encoder.Load(dir, normalizer)
	if err != nil {
		return nil, fmt.Errorf("featvec: %w", err)
	}

	backend := m.Backend
	if backend == "" {
		backend = config.BackendLinear
	}
	if cfg.Scoring.Backend != "" && cfg.Scoring.Backend != backend {
		return nil, fmt.Errorf("featvec: bundle uses the %s backend, scoring.backend is %s", backend, cfg.Scoring.Backend)
	}

	var scorer ova.Scorer
	switch backend {
	case config.BackendLinear:
		scorer = linear.NewScorer()
	case config.BackendExec:
		if cfg.Scoring.Binary == "" {
			return nil, fmt.Errorf("featvec: bundle needs scoring.binary for the %s backend", config.BackendExec)
		}
		scorer = &svmlight.ExecScorer{Binary: cfg.Scoring.Binary, Args: cfg.Scoring.Args}
	default:
		return nil, fmt.Errorf("featvec: unknown backend %q", backend)
	}

	handles := make(map[int]ova.Handle, len(m.Models))
	for class, name := range m.Models {
		handles[class] = ova.Handle(filepath.Join(dir, name))
	}
	outcomes := ova.NewOutcomes(m.Labels...)
	clf, err := ova.New(handles, outcomes, scorer, ova.WithParallelism(cfg.Scoring.Parallelism))
	if err != nil {
		return nil, fmt.Errorf("featvec: %w", err)
	}
	return &Tagger{Encoder: enc, Classifier: clf, Outcomes: outcomes}, nil
}

// Save writes the tagger as a bundle into dir: manifest, feature lookup and
// one linear model per class.
func (t *Tagger) Save(dir string, compress bool) error {
	if t.models == nil {
		return ErrNotTrained
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("featvec: %w", err)
	}

	spec, err := encoder.SpecOf(t.Encoder.Normalizer())
	if err != nil {
		return fmt.Errorf("featvec: %w", err)
	}
	m := Manifest{
		Format:     manifestFormat,
		Labels:     t.Outcomes.Labels(),
		Normalizer: spec,
		Backend:    config.BackendLinear,
		Models:     make(map[int]string, len(t.models)),
	}
	for class, model := range t.models {
		name := modelFileName(class, compress)
		if err := linear.SaveModel(model, filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("featvec: %w", err)
		}
		m.Models[class] = name
	}
	if err := writeLookup(t.Encoder, dir, compress); err != nil {
		return fmt.Errorf("featvec: %w", err)
	}
	return writeManifest(dir, m)
}

func writeLookup(enc *encoder.Encoder, dir string, compress bool) error {
	path := filepath.Join(dir, encoder.LookupFileName)
	if compress {
		path += artifact.ZstdExt
	}
	w, err := artifact.Create(path)
	if err != nil {
		return err
	}
	if err := enc.Vocabulary().WriteLookup(w); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func writeManifest(dir string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("featvec: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), data, 0o644); err != nil {
		return fmt.Errorf("featvec: %w", err)
	}
	return nil
}

// Labels returns the BIO labels the tagger can emit, in class order.
func (t *Tagger) Labels() []string {
	return t.Classifier.Labels()
}

// Tag returns the best BIO label sequence for the per-token features.
func (t *Tagger) Tag(ctx context.Context, tokens [][]encoder.Feature) ([]string, error) {
	if len(tokens) == 0 {
		return []string{}, nil
	}
	scores := make([][]float64, len(tokens))
	for i, feats := range tokens {
		v, err := t.Encoder.EncodeAll(feats)
		if err != nil {
			return nil, fmt.Errorf("featvec: token %d: %w", i, err)
		}
		outcomes, err := t.Classifier.ScoreAll(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("featvec: token %d: %w", i, err)
		}
		row := make([]float64, len(outcomes))
		for j, o := range outcomes {
			row[j] = o.Score
		}
		scores[i] = row
	}
	return chunking.Viterbi(scores, t.Classifier.Labels()), nil
}

// Chunks tags the tokens and decodes the labels into chunks.
func (t *Tagger) Chunks(ctx context.Context, tokens [][]encoder.Feature) ([]chunking.Chunk, error) {
	labels, err := t.Tag(ctx, tokens)
	if err != nil {
		return nil, err
	}
	return chunking.Decode(labels), nil
}

// ChunkWords extracts the standard token features from words and returns
// their chunks.
func (t *Tagger) ChunkWords(ctx context.Context, words []string) ([]chunking.Chunk, error) {
	return t.Chunks(ctx, corpus.TokenFeatures(words))
}

// Rank returns the maxResults best labels for a single token, highest first.
func (t *Tagger) Rank(ctx context.Context, features []encoder.Feature, maxResults int) ([]ova.ScoredOutcome, error) {
	v, err := t.Encoder.EncodeAll(features)
	if err != nil {
		return nil, fmt.Errorf("featvec: %w", err)
	}
	ranked, err := t.Classifier.Score(ctx, v, maxResults)
	if err != nil {
		return nil, fmt.Errorf("featvec: %w", err)
	}
	return ranked, nil
}
