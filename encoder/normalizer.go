package encoder

import (
	"fmt"
	"math"
)

// Normalizer rescales a batch of expanded features before indexing.
// Implementations must not modify the input slice.
type Normalizer interface {
	Normalize(batch []NameNumber) []NameNumber
}

// Normalizer kinds understood by NormalizerSpec.
const (
	KindIdentity = "identity"
	KindL2       = "l2"
	KindMaxAbs   = "maxabs"
	KindIDF      = "idf"
)

// Identity returns the batch unchanged.
type Identity struct{}

// Normalize implements Normalizer.
func (Identity) Normalize(batch []NameNumber) []NameNumber {
	return append([]NameNumber(nil), batch...)
}

// L2 scales the batch to unit Euclidean length.
type L2 struct{}

// Normalize implements Normalizer.
func (L2) Normalize(batch []NameNumber) []NameNumber {
	var sum float64
	for _, nn := range batch {
		sum += nn.Number * nn.Number
	}
	return scale(batch, math.Sqrt(sum))
}

// MaxAbs divides every value by the largest absolute value in the batch.
type MaxAbs struct{}

// Normalize implements Normalizer.
func (MaxAbs) Normalize(batch []NameNumber) []NameNumber {
	var maxAbs float64
	for _, nn := range batch {
		if a := math.Abs(nn.Number); a > maxAbs {
			maxAbs = a
		}
	}
	return scale(batch, maxAbs)
}

func scale(batch []NameNumber, div float64) []NameNumber {
	out := make([]NameNumber, len(batch))
	for i, nn := range batch {
		out[i] = nn
		if div > 0 {
			out[i].Number = nn.Number / div
		}
	}
	return out
}

// IDF weights each value by the smoothed inverse document frequency of its
// name: ln((1+n)/(1+df)) + 1. Names never counted get df = 0.
type IDF struct {
	Docs    int            `json:"docs" yaml:"docs"`
	DocFreq map[string]int `json:"doc_freq" yaml:"doc_freq"`
}

// Weight returns the IDF weight for name.
func (n *IDF) Weight(name string) float64 {
	docs := float64(n.Docs)
	return math.Log((1+docs)/(1+float64(n.DocFreq[name]))) + 1
}

// Normalize implements Normalizer.
func (n *IDF) Normalize(batch []NameNumber) []NameNumber {
	out := make([]NameNumber, len(batch))
	for i, nn := range batch {
		out[i] = NameNumber{Name: nn.Name, Number: nn.Number * n.Weight(nn.Name)}
	}
	return out
}

// IDFBuilder counts document frequencies over training batches.
type IDFBuilder struct {
	docs int
	df   map[string]int
}

// NewIDFBuilder creates an empty builder.
func NewIDFBuilder() *IDFBuilder {
	return &IDFBuilder{df: make(map[string]int)}
}

// Add counts one document. Each name counts once per document.
func (b *IDFBuilder) Add(batch []NameNumber) {
	b.docs++
	seen := make(map[string]bool, len(batch))
	for _, nn := range batch {
		if nn.Number == 0 || seen[nn.Name] {
			continue
		}
		seen[nn.Name] = true
		b.df[nn.Name]++
	}
}

// Build returns the IDF normalizer for the documents added so far.
func (b *IDFBuilder) Build() *IDF {
	df := make(map[string]int, len(b.df))
	for k, v := range b.df {
		df[k] = v
	}
	return &IDF{Docs: b.docs, DocFreq: df}
}

// NormalizerSpec is the serializable description of a Normalizer.
type NormalizerSpec struct {
	Kind string `json:"kind" yaml:"kind"`
	IDF  *IDF   `json:"idf,omitempty" yaml:"idf,omitempty"`
}

// SpecOf describes n so it can be rebuilt with Build.
func SpecOf(n Normalizer) (NormalizerSpec, error) {
	switch v := n.(type) {
	case nil, Identity, *Identity:
		return NormalizerSpec{Kind: KindIdentity}, nil
	case L2, *L2:
		return NormalizerSpec{Kind: KindL2}, nil
	case MaxAbs, *MaxAbs:
		return NormalizerSpec{Kind: KindMaxAbs}, nil
	case *IDF:
		return NormalizerSpec{Kind: KindIDF, IDF: v}, nil
	default:
		return NormalizerSpec{}, fmt.Errorf("normalizer %T cannot be serialized", n)
	}
}

// Build returns the Normalizer described by the spec.
func (s NormalizerSpec) Build() (Normalizer, error) {
	switch s.Kind {
	case "", KindIdentity:
		return Identity{}, nil
	case KindL2:
		return L2{}, nil
	case KindMaxAbs:
		return MaxAbs{}, nil
	case KindIDF:
		if s.IDF == nil {
			return nil, fmt.Errorf("idf normalizer has no document frequencies")
		}
		return s.IDF, nil
	default:
		return nil, fmt.Errorf("unknown normalizer kind %q", s.Kind)
	}
}
