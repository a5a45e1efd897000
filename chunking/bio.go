// Package chunking converts between typed spans over a sequence of
// sub-units (usually tokens) and per-unit Begin/Inside/Outside labels.
package chunking

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Outside is the label of a sub-unit covered by no chunk.
const Outside = "O"

// ErrInvalidChunk is returned by Encode for chunks that are empty, out of
// range, or overlap another chunk.
var ErrInvalidChunk = errors.New("invalid chunk")

// Chunk is a typed run of sub-units [Start, End).
type Chunk struct {
	Type  string `json:"type"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Len returns the number of covered sub-units.
func (c Chunk) Len() int {
	return c.End - c.Start
}

func (c Chunk) String() string {
	return fmt.Sprintf("%s[%d:%d]", c.Type, c.Start, c.End)
}

// Suffix returns the label suffix for a chunk type.
func Suffix(chunkType string) string {
	if chunkType == "" {
		return ""
	}
	return "-" + chunkType
}

// Begin returns the label of the first sub-unit of a chunk of the given type.
func Begin(chunkType string) string {
	return "B" + Suffix(chunkType)
}

// Inside returns the label of a non-initial sub-unit of a chunk of the given type.
func Inside(chunkType string) string {
	return "I" + Suffix(chunkType)
}

// Encode returns the labels of n sub-units covered by chunks. Uncovered
// sub-units are labeled Outside.
func Encode(n int, chunks []Chunk) ([]string, error) {
	sorted := append([]Chunk(nil), chunks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	labels := make([]string, n)
	for i := range labels {
		labels[i] = Outside
	}
	prevEnd := 0
	for _, c := range sorted {
		if c.Start < 0 || c.End > n || c.Len() <= 0 {
			return nil, fmt.Errorf("%w: %s out of range for %d sub-units", ErrInvalidChunk, c, n)
		}
		if c.Start < prevEnd {
			return nil, fmt.Errorf("%w: %s overlaps a previous chunk", ErrInvalidChunk, c)
		}
		labels[c.Start] = Begin(c.Type)
		for i := c.Start + 1; i < c.End; i++ {
			labels[i] = Inside(c.Type)
		}
		prevEnd = c.End
	}
	return labels, nil
}

// split returns the prefix and suffix of a label. Labels not starting with
// B or I are outside.
func split(label string) (prefix byte, suffix string) {
	if label == "" {
		return 'O', ""
	}
	switch label[0] {
	case 'B', 'I':
		return label[0], label[1:]
	default:
		return 'O', ""
	}
}

// isEndOfChunk reports whether a chunk whose current label has suffix
// currSuffix ends before a sub-unit labeled next.
func isEndOfChunk(currSuffix, next string) bool {
	nextPrefix, nextSuffix := split(next)
	return nextPrefix == 'O' || nextPrefix == 'B' || nextSuffix != currSuffix
}

// TypeOf returns the chunk type encoded in a B or I label suffix.
func TypeOf(suffix string) string {
	return strings.TrimPrefix(suffix, "-")
}

// Decode rebuilds chunks from a label sequence. It never fails: an I label
// with no open chunk starts a new one.
func Decode(labels []string) []Chunk {
	var chunks []Chunk
	for i := 0; i < len(labels); {
		prefix, suffix := split(labels[i])
		if prefix == 'O' {
			i++
			continue
		}
		start := i
		for i+1 < len(labels) && !isEndOfChunk(suffix, labels[i+1]) {
			i++
		}
		chunks = append(chunks, Chunk{Type: TypeOf(suffix), Start: start, End: i + 1})
		i++
	}
	return chunks
}
