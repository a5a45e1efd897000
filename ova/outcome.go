package ova

import (
	"fmt"

	"github.com/happyhackingspace/featvec/vocab"
)

// OutcomeEncoder maps outcome labels to class indices and back.
type OutcomeEncoder interface {
	Encode(label string) (int, error)
	Decode(class int) (string, error)
}

// Outcomes is an OutcomeEncoder over a fixed label set, indexed in the
// order labels were first given.
type Outcomes struct {
	m *vocab.Mapper
}

// NewOutcomes builds an encoder for labels. Duplicates keep their first index.
func NewOutcomes(labels ...string) *Outcomes {
	// A fresh mapper is growing and unfinalized, so neither call below can fail.
	m := vocab.New()
	for _, l := range labels {
		_, _ = m.GetOrGenerate(l)
	}
	_ = m.Finalize(0)
	return &Outcomes{m: m}
}

// Encode implements OutcomeEncoder.
func (o *Outcomes) Encode(label string) (int, error) {
	return o.m.Get(label)
}

// Decode implements OutcomeEncoder.
func (o *Outcomes) Decode(class int) (string, error) {
	label, ok := o.m.Key(class)
	if !ok {
		return "", fmt.Errorf("unknown class %d", class)
	}
	return label, nil
}

// Labels returns all labels ordered by class index.
func (o *Outcomes) Labels() []string {
	entries := o.m.Entries()
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.Key
	}
	return labels
}

// Len returns the number of outcomes.
func (o *Outcomes) Len() int {
	return o.m.Len()
}
