// Package ova combines independently trained binary models, one per class,
// into a multiclass decision.
package ova

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/happyhackingspace/featvec/vector"
)

// Handle identifies a trained binary model, typically a file path.
type Handle string

// Scorer returns the raw decision value of one model for one vector.
// Implementations may block on I/O and must be safe for concurrent use.
type Scorer interface {
	Score(ctx context.Context, model Handle, v vector.Sparse) (float64, error)
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(ctx context.Context, model Handle, v vector.Sparse) (float64, error)

// Score implements Scorer.
func (f ScorerFunc) Score(ctx context.Context, model Handle, v vector.Sparse) (float64, error) {
	return f(ctx, model, v)
}

// ErrNoModels is returned by New for an empty model set.
var ErrNoModels = errors.New("no class models")

// ScoringError reports a failed scorer call for one class.
type ScoringError struct {
	Class int
	Model Handle
	Err   error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring class %d with %s: %v", e.Class, e.Model, e.Err)
}

func (e *ScoringError) Unwrap() error { return e.Err }

// ScoredOutcome is a label with its decision value.
type ScoredOutcome struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier is a one-vs-all multiclass classifier. Classes are always
// visited in ascending class index; ties go to the earliest class.
type Classifier struct {
	models      map[int]Handle
	classes     []int
	labels      []string
	scorer      Scorer
	parallelism int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithParallelism scores up to n classes concurrently. n <= 1 scores sequentially.
func WithParallelism(n int) Option {
	return func(c *Classifier) {
		c.parallelism = n
	}
}

// New creates a classifier over models. Every class index must decode
// through outcomes.
func New(models map[int]Handle, outcomes OutcomeEncoder, scorer Scorer, opts ...Option) (*Classifier, error) {
	if len(models) == 0 {
		return nil, ErrNoModels
	}
	c := &Classifier{
		models:      make(map[int]Handle, len(models)),
		classes:     make([]int, 0, len(models)),
		scorer:      scorer,
		parallelism: 1,
	}
	for class, h := range models {
		c.models[class] = h
		c.classes = append(c.classes, class)
	}
	sort.Ints(c.classes)

	c.labels = make([]string, len(c.classes))
	for i, class := range c.classes {
		label, err := outcomes.Decode(class)
		if err != nil {
			return nil, fmt.Errorf("class %d: %w", class, err)
		}
		c.labels[i] = label
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Classes returns the class indices in scoring order.
func (c *Classifier) Classes() []int {
	return append([]int(nil), c.classes...)
}

// Labels returns the class labels in scoring order.
func (c *Classifier) Labels() []string {
	return append([]string(nil), c.labels...)
}

// Model returns the handle of a class.
func (c *Classifier) Model(class int) (Handle, bool) {
	h, ok := c.models[class]
	return h, ok
}

func (c *Classifier) scoreClass(ctx context.Context, i int, v vector.Sparse) (float64, error) {
	class := c.classes[i]
	h := c.models[class]
	s, err := c.scorer.Score(ctx, h, v)
	if err != nil {
		return 0, &ScoringError{Class: class, Model: h, Err: err}
	}
	return s, nil
}

// scores returns the score of every class, slotted by scoring order.
func (c *Classifier) scores(ctx context.Context, v vector.Sparse) ([]float64, error) {
	out := make([]float64, len(c.classes))
	if c.parallelism <= 1 {
		for i := range c.classes {
			s, err := c.scoreClass(ctx, i, v)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallelism)
	for i := range c.classes {
		g.Go(func() error {
			s, err := c.scoreClass(gctx, i, v)
			if err != nil {
				return err
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Classify returns the label of the highest scoring class.
func (c *Classifier) Classify(ctx context.Context, v vector.Sparse) (string, error) {
	scores, err := c.scores(ctx, v)
	if err != nil {
		return "", err
	}
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return c.labels[best], nil
}

// ScoreAll returns one scored outcome per class in scoring order.
func (c *Classifier) ScoreAll(ctx context.Context, v vector.Sparse) ([]ScoredOutcome, error) {
	scores, err := c.scores(ctx, v)
	if err != nil {
		return nil, err
	}
	out := make([]ScoredOutcome, len(scores))
	for i, s := range scores {
		out[i] = ScoredOutcome{Label: c.labels[i], Score: s}
	}
	return out, nil
}

// Score returns the maxResults best outcomes, highest score first. Equal
// scores keep scoring order. maxResults <= 0 returns an empty slice.
func (c *Classifier) Score(ctx context.Context, v vector.Sparse, maxResults int) ([]ScoredOutcome, error) {
	all, err := c.ScoreAll(ctx, v)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Score > all[j].Score
	})
	return all[:max(0, min(maxResults, len(all)))], nil
}
