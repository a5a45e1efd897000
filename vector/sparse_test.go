package vector

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparseVector(t *testing.T) {
	sv := New()
	require.NoError(t, sv.Set(1, 2.0))
	require.NoError(t, sv.Set(3, 4.0))

	dense := sv.ToDense(5)
	assert.Equal(t, []float64{0, 2, 0, 4, 0}, dense)

	dot := sv.Dot([]float64{1, 2, 3, 4, 5})
	assert.Equal(t, 2.0*2+4.0*4, dot)
	assert.Equal(t, 4, sv.Dim())
}

func TestSparseZeroSuppression(t *testing.T) {
	var sv Sparse
	require.NoError(t, sv.Set(2, 0))
	assert.Equal(t, 0, sv.Nnz())
	assert.Equal(t, 0.0, sv.Get(2))
	assert.Equal(t, 0.0, sv.Get(1000))

	require.NoError(t, sv.Add(2, 1.5))
	require.NoError(t, sv.Add(2, -1.5))
	assert.Equal(t, 0, sv.Nnz(), "entries that cancel out must not stay stored")
}

func TestSparseAccumulate(t *testing.T) {
	sv := New()
	require.NoError(t, sv.Add(7, 1.0))
	require.NoError(t, sv.Add(7, 1.0))
	assert.Equal(t, 2.0, sv.Get(7))
	assert.Equal(t, 1, sv.Nnz())
}

func TestSparseInvalidValue(t *testing.T) {
	tests := []struct {
		name string
		idx  int
		val  float64
	}{
		{"negative index", -1, 1.0},
		{"nan", 0, math.NaN()},
		{"inf", 3, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sv := New()
			err := sv.Set(tt.idx, tt.val)
			var ive *InvalidValueError
			require.True(t, errors.As(err, &ive))
			assert.Equal(t, tt.idx, ive.Index)
			assert.Equal(t, 0, sv.Nnz())
		})
	}
}

func TestSparseIndicesSorted(t *testing.T) {
	sv, err := FromMap(map[int]float64{9: 1, 0: 2, 4: 0, 5: 3})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 5, 9}, sv.Indices())

	var seen []int
	sv.Each(func(idx int, _ float64) { seen = append(seen, idx) })
	assert.Equal(t, []int{0, 5, 9}, seen)
}

func TestSparseCloneEqual(t *testing.T) {
	sv, err := FromMap(map[int]float64{1: 3, 2: 4})
	require.NoError(t, err)
	cp := sv.Clone()
	assert.True(t, sv.Equal(cp))
	require.NoError(t, cp.Set(1, 5))
	assert.False(t, sv.Equal(cp))
	assert.Equal(t, 3.0, sv.Get(1))
	assert.InDelta(t, 5.0, sv.L2Norm(), 1e-12)
}
