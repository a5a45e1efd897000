package encoder

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizersDoNotMutateInput(t *testing.T) {
	batch := []NameNumber{{"a", 2}, {"b", -4}}
	for _, n := range []Normalizer{Identity{}, L2{}, MaxAbs{}, NewIDFBuilder().Build()} {
		out := n.Normalize(batch)
		assert.Len(t, out, 2)
		assert.Equal(t, []NameNumber{{"a", 2}, {"b", -4}}, batch, "%T mutated input", n)
	}
}

func TestMaxAbs(t *testing.T) {
	out := MaxAbs{}.Normalize([]NameNumber{{"a", 2}, {"b", -4}})
	assert.Equal(t, []NameNumber{{"a", 0.5}, {"b", -1}}, out)
}

func TestL2EmptyAndZero(t *testing.T) {
	assert.Empty(t, L2{}.Normalize(nil))
	assert.Equal(t, []NameNumber{{"a", 0}}, L2{}.Normalize([]NameNumber{{"a", 0}}))
}

func TestIDF(t *testing.T) {
	b := NewIDFBuilder()
	b.Add([]NameNumber{{"w=the", 1}, {"w=the", 1}, {"w=cat", 1}})
	b.Add([]NameNumber{{"w=the", 1}, {"w=dog", 1}})
	b.Add([]NameNumber{{"w=the", 1}, {"w=cat", 0}})
	idf := b.Build()

	assert.Equal(t, 3, idf.Docs)
	assert.Equal(t, 3, idf.DocFreq["w=the"])
	assert.Equal(t, 1, idf.DocFreq["w=cat"], "zero values do not count")

	// sklearn smooth IDF: ln((1+n)/(1+df)) + 1
	assert.InDelta(t, 1.0, idf.Weight("w=the"), 1e-12)
	assert.InDelta(t, math.Log(4.0/2.0)+1, idf.Weight("w=cat"), 1e-12)
	assert.InDelta(t, math.Log(4.0)+1, idf.Weight("unseen"), 1e-12)

	out := idf.Normalize([]NameNumber{{"w=cat", 2}})
	assert.InDelta(t, 2*(math.Log(2)+1), out[0].Number, 1e-12)
}

func TestNormalizerSpecRoundTrip(t *testing.T) {
	b := NewIDFBuilder()
	b.Add([]NameNumber{{"x", 1}})
	idf := b.Build()

	for _, n := range []Normalizer{nil, Identity{}, L2{}, MaxAbs{}, idf} {
		spec, err := SpecOf(n)
		require.NoError(t, err)
		rebuilt, err := spec.Build()
		require.NoError(t, err)
		if n == nil {
			assert.Equal(t, Identity{}, rebuilt)
			continue
		}
		assert.Equal(t, n, rebuilt)
	}

	_, err := NormalizerSpec{Kind: "bogus"}.Build()
	assert.Error(t, err)
	_, err = NormalizerSpec{Kind: KindIDF}.Build()
	assert.Error(t, err)
}

type customNormalizer struct{}

func (customNormalizer) Normalize(b []NameNumber) []NameNumber { return b }

func TestSpecOfUnknown(t *testing.T) {
	_, err := SpecOf(customNormalizer{})
	assert.Error(t, err)
}
