// Package vector provides the sparse numeric vectors produced by feature encoding.
package vector

import (
	"fmt"
	"math"
	"sort"
)

// InvalidValueError reports an attempt to store a value at a negative index
// or to store a non-finite value.
type InvalidValueError struct {
	Index int
	Value float64
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid vector value: index %d, value %v", e.Index, e.Value)
}

// Sparse maps non-negative indices to float64 values. Zero entries are never
// stored. The zero value is an empty vector ready to use.
type Sparse struct {
	values map[int]float64
}

// New creates an empty sparse vector.
func New() Sparse {
	return Sparse{values: make(map[int]float64)}
}

// FromMap builds a vector from index/value pairs, dropping zeros.
func FromMap(m map[int]float64) (Sparse, error) {
	sv := New()
	for idx, val := range m {
		if err := sv.Set(idx, val); err != nil {
			return Sparse{}, err
		}
	}
	return sv, nil
}

func check(idx int, val float64) error {
	if idx < 0 || math.IsNaN(val) || math.IsInf(val, 0) {
		return &InvalidValueError{Index: idx, Value: val}
	}
	return nil
}

// Get returns the value at idx, or 0 if the index is unset.
func (sv Sparse) Get(idx int) float64 {
	return sv.values[idx]
}

// Set stores val at idx. Setting 0 removes the entry.
func (sv *Sparse) Set(idx int, val float64) error {
	if err := check(idx, val); err != nil {
		return err
	}
	if val == 0 {
		delete(sv.values, idx)
		return nil
	}
	if sv.values == nil {
		sv.values = make(map[int]float64)
	}
	sv.values[idx] = val
	return nil
}

// Add accumulates delta into the value at idx.
func (sv *Sparse) Add(idx int, delta float64) error {
	if err := check(idx, delta); err != nil {
		return err
	}
	return sv.Set(idx, sv.Get(idx)+delta)
}

// Nnz returns the number of non-zero entries.
func (sv Sparse) Nnz() int {
	return len(sv.values)
}

// Indices returns the set indices in ascending order.
func (sv Sparse) Indices() []int {
	idx := make([]int, 0, len(sv.values))
	for i := range sv.values {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// Each calls fn for every entry in ascending index order.
func (sv Sparse) Each(fn func(idx int, val float64)) {
	for _, i := range sv.Indices() {
		fn(i, sv.values[i])
	}
}

// Dim returns one past the largest set index.
func (sv Sparse) Dim() int {
	dim := 0
	for i := range sv.values {
		if i+1 > dim {
			dim = i + 1
		}
	}
	return dim
}

// Dot computes the dot product with a dense vector.
func (sv Sparse) Dot(dense []float64) float64 {
	var sum float64
	for idx, val := range sv.values {
		if idx < len(dense) {
			sum += val * dense[idx]
		}
	}
	return sum
}

// ToDense converts to a dense slice of length dim. Entries beyond dim are dropped.
func (sv Sparse) ToDense(dim int) []float64 {
	dense := make([]float64, dim)
	for idx, val := range sv.values {
		if idx < dim {
			dense[idx] = val
		}
	}
	return dense
}

// L2Norm returns the L2 norm of the vector.
func (sv Sparse) L2Norm() float64 {
	var sum float64
	for _, v := range sv.values {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Clone returns an independent copy.
func (sv Sparse) Clone() Sparse {
	out := Sparse{values: make(map[int]float64, len(sv.values))}
	for idx, val := range sv.values {
		out.values[idx] = val
	}
	return out
}

// Equal reports whether both vectors hold exactly the same entries.
func (sv Sparse) Equal(other Sparse) bool {
	if len(sv.values) != len(other.values) {
		return false
	}
	for idx, val := range sv.values {
		if ov, ok := other.values[idx]; !ok || ov != val {
			return false
		}
	}
	return true
}

// Map returns a copy of the entries as a map.
func (sv Sparse) Map() map[int]float64 {
	m := make(map[int]float64, len(sv.values))
	for idx, val := range sv.values {
		m[idx] = val
	}
	return m
}
