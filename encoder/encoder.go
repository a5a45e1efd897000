package encoder

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/happyhackingspace/featvec/internal/artifact"
	"github.com/happyhackingspace/featvec/vector"
	"github.com/happyhackingspace/featvec/vocab"
)

// LookupFileName is the lookup artifact written by FinalizeFeatureSet.
const LookupFileName = "features-lookup.txt"

// Encoder maps feature lists to sparse vectors through a vocabulary.
//
// While the vocabulary is growing, every encoded name is added to it. After
// FinalizeFeatureSet the vocabulary is frozen and names it does not know are
// skipped. A growing Encoder must not be used concurrently; a frozen one can.
type Encoder struct {
	cutoff     int
	normalizer Normalizer
	mapper     *vocab.Mapper
}

// New creates a growing encoder. A negative cutoff is treated as 0 and a nil
// normalizer as Identity.
func New(cutoff int, normalizer Normalizer) *Encoder {
	if cutoff < 0 {
		cutoff = 0
	}
	if normalizer == nil {
		normalizer = Identity{}
	}
	return &Encoder{
		cutoff:     cutoff,
		normalizer: normalizer,
		mapper:     vocab.New(),
	}
}

// NewFrozen creates an inference-time encoder over an already frozen vocabulary.
func NewFrozen(mapper *vocab.Mapper, normalizer Normalizer) (*Encoder, error) {
	if mapper.Phase() != vocab.Frozen {
		return nil, vocab.ErrNotFrozen
	}
	if normalizer == nil {
		normalizer = Identity{}
	}
	return &Encoder{normalizer: normalizer, mapper: mapper}, nil
}

// Load reads the lookup artifact from dir and returns a frozen encoder.
func Load(dir string, normalizer Normalizer) (*Encoder, error) {
	path, err := artifact.Find(filepath.Join(dir, LookupFileName))
	if err != nil {
		return nil, err
	}
	r, err := artifact.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	mapper, err := vocab.ReadLookup(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return NewFrozen(mapper, normalizer)
}

// Cutoff returns the minimum occurrence count applied at freeze time.
func (e *Encoder) Cutoff() int {
	return e.cutoff
}

// Normalizer returns the normalizer applied to every batch.
func (e *Encoder) Normalizer() Normalizer {
	return e.normalizer
}

// Vocabulary returns the underlying mapper.
func (e *Encoder) Vocabulary() *vocab.Mapper {
	return e.mapper
}

// Frozen reports whether the encoder no longer grows its vocabulary.
func (e *Encoder) Frozen() bool {
	return e.mapper.Phase() == vocab.Frozen
}

// EncodeAll expands, normalizes and indexes features. Values of the same
// index are summed.
func (e *Encoder) EncodeAll(features []Feature) (vector.Sparse, error) {
	batch := e.normalizer.Normalize(ExpandAll(features))
	frozen := e.Frozen()

	sv := vector.New()
	for _, nn := range batch {
		if nn.Number == 0 {
			continue
		}
		var idx int
		var err error
		if frozen {
			idx, err = e.mapper.Get(nn.Name)
			if errors.Is(err, vocab.ErrUnknownKey) {
				continue
			}
		} else {
			idx, err = e.mapper.GetOrGenerate(nn.Name)
		}
		if err != nil {
			return vector.Sparse{}, err
		}
		if err := sv.Add(idx, nn.Number); err != nil {
			return vector.Sparse{}, fmt.Errorf("feature %q: %w", nn.Name, err)
		}
	}
	return sv, nil
}

// FinalizeFeatureSet freezes the vocabulary at the encoder's cutoff. When dir
// is not empty the frozen vocabulary is written there as LookupFileName.
func (e *Encoder) FinalizeFeatureSet(dir string) error {
	return e.finalize(dir, false)
}

// FinalizeCompressed is FinalizeFeatureSet writing a zstd-compressed lookup.
func (e *Encoder) FinalizeCompressed(dir string) error {
	return e.finalize(dir, true)
}

func (e *Encoder) finalize(dir string, compress bool) error {
	seen := e.mapper.Len()
	if err := e.mapper.Finalize(e.cutoff); err != nil {
		return err
	}
	slog.Debug("Feature set finalized", "cutoff", e.cutoff, "seen", seen, "kept", e.mapper.Len())
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, LookupFileName)
	if compress {
		path += artifact.ZstdExt
	}
	w, err := artifact.Create(path)
	if err != nil {
		return err
	}
	if err := e.mapper.WriteLookup(w); err != nil {
		_ = w.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return w.Close()
}
