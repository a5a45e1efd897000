package featvec

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/happyhackingspace/featvec/chunking"
	"github.com/happyhackingspace/featvec/encoder"
	"github.com/happyhackingspace/featvec/internal/config"
	"github.com/happyhackingspace/featvec/internal/corpus"
	"github.com/happyhackingspace/featvec/linear"
	"github.com/happyhackingspace/featvec/ova"
	"github.com/happyhackingspace/featvec/svmlight"
	"github.com/happyhackingspace/featvec/vector"
)

// dataset is a corpus encoded against a frozen vocabulary.
type dataset struct {
	enc      *encoder.Encoder
	outcomes *ova.Outcomes
	xs       []vector.Sparse
	ys       []int
}

// prepare grows a vocabulary over every token, freezes it at the configured
// cutoff and re-encodes the tokens against the frozen vocabulary.
func prepare(sentences []corpus.Sentence, cfg config.Config) (*dataset, error) {
	var feats [][]encoder.Feature
	var labels []string
	for _, s := range sentences {
		ls, err := s.Labels()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Source, err)
		}
		feats = append(feats, corpus.TokenFeatures(s.Tokens)...)
		labels = append(labels, ls...)
	}
	if len(feats) == 0 {
		return nil, fmt.Errorf("no tokens to train on")
	}

	normalizer, err := fitNormalizer(cfg.Encoder.Normalizer, feats)
	if err != nil {
		return nil, err
	}
	enc := encoder.New(cfg.Encoder.Cutoff, normalizer)
	for _, f := range feats {
		if _, err := enc.EncodeAll(f); err != nil {
			return nil, err
		}
	}
	if err := enc.FinalizeFeatureSet(""); err != nil {
		return nil, err
	}

	ds := &dataset{
		enc:      enc,
		outcomes: ova.NewOutcomes(labelSet(labels)...),
		xs:       make([]vector.Sparse, len(feats)),
		ys:       make([]int, len(feats)),
	}
	for i, f := range feats {
		if ds.xs[i], err = enc.EncodeAll(f); err != nil {
			return nil, err
		}
		if ds.ys[i], err = ds.outcomes.Encode(labels[i]); err != nil {
			return nil, err
		}
	}
	slog.Debug("Training data encoded", "tokens", len(feats), "features", enc.Vocabulary().Len(), "labels", ds.outcomes.Len())
	return ds, nil
}

// fitNormalizer builds the named normalizer. IDF is fitted with every token
// position as one document.
func fitNormalizer(kind string, feats [][]encoder.Feature) (encoder.Normalizer, error) {
	if kind != encoder.KindIDF {
		return encoder.NormalizerSpec{Kind: kind}.Build()
	}
	b := encoder.NewIDFBuilder()
	for _, f := range feats {
		b.Add(encoder.ExpandAll(f))
	}
	return b.Build(), nil
}

// labelSet returns the distinct labels with the outside label first and the
// rest sorted, so class indices do not depend on corpus order.
func labelSet(labels []string) []string {
	seen := map[string]bool{chunking.Outside: true}
	var rest []string
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			rest = append(rest, l)
		}
	}
	sort.Strings(rest)
	return append([]string{chunking.Outside}, rest...)
}

// trainModels fits one binary model per class, up to parallelism at a time.
func trainModels(ds *dataset, cfg config.Config) ([]*linear.Model, error) {
	tc := linear.DefaultTrainConfig()
	tc.C = cfg.Training.C
	tc.MaxIter = cfg.Training.MaxIter

	labels := ds.outcomes.Labels()
	models := make([]*linear.Model, len(labels))
	var g errgroup.Group
	g.SetLimit(max(1, cfg.Scoring.Parallelism))
	for class, label := range labels {
		g.Go(func() error {
			ys := make([]bool, len(ds.ys))
			positives := 0
			for i, y := range ds.ys {
				ys[i] = y == class
				if ys[i] {
					positives++
				}
			}
			models[class] = linear.Train(ds.xs, ys, tc)
			slog.Debug("Trained class model", "label", label, "positives", positives, "weights", len(models[class].Weights))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return models, nil
}

// Train fits a tagger on annotated sentences.
func Train(sentences []corpus.Sentence, cfg config.Config) (*Tagger, error) {
	ds, err := prepare(sentences, cfg)
	if err != nil {
		return nil, fmt.Errorf("featvec: %w", err)
	}
	models, err := trainModels(ds, cfg)
	if err != nil {
		return nil, fmt.Errorf("featvec: %w", err)
	}

	scorer := linear.NewScorer()
	handles := make(map[int]ova.Handle, len(models))
	byClass := make(map[int]*linear.Model, len(models))
	for class, m := range models {
		h := ova.Handle(modelFileName(class, false))
		scorer.Put(h, m)
		handles[class] = h
		byClass[class] = m
	}
	clf, err := ova.New(handles, ds.outcomes, scorer, ova.WithParallelism(cfg.Scoring.Parallelism))
	if err != nil {
		return nil, fmt.Errorf("featvec: %w", err)
	}
	return &Tagger{Encoder: ds.enc, Classifier: clf, Outcomes: ds.outcomes, models: byClass}, nil
}

// SVMlightModelFileName is the model file an external learner is expected to
// produce from svmlight.TrainingFileName(class).
func SVMlightModelFileName(class int) string {
	return fmt.Sprintf("model-%d.svm", class)
}

// Export writes SVMlight training files, the feature lookup and an exec
// backend manifest into dir. Models trained externally from the training
// files complete the bundle.
func Export(sentences []corpus.Sentence, cfg config.Config, dir string) error {
	ds, err := prepare(sentences, cfg)
	if err != nil {
		return fmt.Errorf("featvec: %w", err)
	}
	labels := ds.outcomes.Labels()
	classes := make([]int, len(labels))
	models := make(map[int]string, len(labels))
	for class := range labels {
		classes[class] = class
		models[class] = SVMlightModelFileName(class)
	}
	if err := svmlight.WriteOneVsAll(dir, classes, ds.xs, ds.ys); err != nil {
		return fmt.Errorf("featvec: %w", err)
	}
	if err := writeLookup(ds.enc, dir, cfg.Output.Compress); err != nil {
		return fmt.Errorf("featvec: %w", err)
	}
	spec, err := encoder.SpecOf(ds.enc.Normalizer())
	if err != nil {
		return fmt.Errorf("featvec: %w", err)
	}
	return writeManifest(dir, Manifest{
		Format:     manifestFormat,
		Labels:     labels,
		Normalizer: spec,
		Backend:    config.BackendExec,
		Models:     models,
	})
}

// ChunkScore holds exact-match chunk counts and the derived metrics.
type ChunkScore struct {
	Correct   int
	Predicted int
	Gold      int
	Precision float64
	Recall    float64
	F1        float64
}

func (s *ChunkScore) finish() {
	if s.Predicted > 0 {
		s.Precision = float64(s.Correct) / float64(s.Predicted)
	}
	if s.Gold > 0 {
		s.Recall = float64(s.Correct) / float64(s.Gold)
	}
	if s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
}

// EvalResult holds cross-validation evaluation results.
type EvalResult struct {
	Folds         int
	Chunks        ChunkScore
	PerType       map[string]*ChunkScore
	TokenCorrect  int
	TokenTotal    int
	TokenAccuracy float64
}

func (r *EvalResult) typeScore(chunkType string) *ChunkScore {
	s, ok := r.PerType[chunkType]
	if !ok {
		s = &ChunkScore{}
		r.PerType[chunkType] = s
	}
	return s
}

func (r *EvalResult) add(gold, pred []string) {
	for i := range gold {
		if i < len(pred) && pred[i] == gold[i] {
			r.TokenCorrect++
		}
		r.TokenTotal++
	}

	goldChunks := chunking.Decode(gold)
	predChunks := chunking.Decode(pred)
	inGold := make(map[chunking.Chunk]bool, len(goldChunks))
	for _, c := range goldChunks {
		inGold[c] = true
		r.Chunks.Gold++
		r.typeScore(c.Type).Gold++
	}
	for _, c := range predChunks {
		r.Chunks.Predicted++
		r.typeScore(c.Type).Predicted++
		if inGold[c] {
			r.Chunks.Correct++
			r.typeScore(c.Type).Correct++
		}
	}
}

// Evaluate runs cross-validation grouped by document domain, so no site
// contributes to both the training and the test side of a fold.
func Evaluate(ctx context.Context, sentences []corpus.Sentence, cfg config.Config) (*EvalResult, error) {
	folds := corpus.GroupKFold(corpus.DomainGroups(sentences), cfg.Evaluation.Folds)
	if len(folds) < 2 {
		return nil, fmt.Errorf("featvec: need sentences from at least two domains, got %d", len(folds))
	}

	result := &EvalResult{Folds: len(folds), PerType: make(map[string]*ChunkScore)}
	for n, testIdx := range folds {
		testSet := make([]bool, len(sentences))
		for _, i := range testIdx {
			testSet[i] = true
		}
		var train []corpus.Sentence
		for i, s := range sentences {
			if !testSet[i] {
				train = append(train, s)
			}
		}

		tagger, err := Train(train, cfg)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", n, err)
		}
		for _, i := range testIdx {
			s := sentences[i]
			gold, err := s.Labels()
			if err != nil {
				return nil, fmt.Errorf("featvec: %s: %w", s.Source, err)
			}
			pred, err := tagger.Tag(ctx, corpus.TokenFeatures(s.Tokens))
			if err != nil {
				return nil, fmt.Errorf("fold %d: %w", n, err)
			}
			result.add(gold, pred)
		}
		slog.Debug("Fold evaluated", "fold", n, "train", len(train), "test", len(testIdx))
	}

	result.Chunks.finish()
	for _, s := range result.PerType {
		s.finish()
	}
	if result.TokenTotal > 0 {
		result.TokenAccuracy = float64(result.TokenCorrect) / float64(result.TokenTotal)
	}
	return result, nil
}
