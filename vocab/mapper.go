// Package vocab maps feature names to stable integer indices.
//
// A Mapper starts out Growing: unseen keys are assigned the next free index
// and every lookup is counted. Finalize moves it to Frozen, dropping keys
// that were looked up fewer than cutoff times. Frozen mappers never allocate.
package vocab

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUnknownKey is returned by Get for keys that were never seen or were pruned.
	ErrUnknownKey = errors.New("unknown key")
	// ErrFrozen is returned when a growing-only operation is called on a frozen mapper.
	ErrFrozen = errors.New("mapper is frozen")
	// ErrNotFrozen is returned when a frozen-only operation is called on a growing mapper.
	ErrNotFrozen = errors.New("mapper is not frozen")
)

// Phase is the lifecycle state of a Mapper.
type Phase int

const (
	Growing Phase = iota
	Frozen
)

func (p Phase) String() string {
	switch p {
	case Growing:
		return "growing"
	case Frozen:
		return "frozen"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// growth holds the data that only exists while growing.
type growth struct {
	next   int
	counts map[string]int
}

// Mapper is a string to index vocabulary. It is not safe for concurrent
// use while growing; a frozen Mapper may be shared by readers.
type Mapper struct {
	phase Phase
	grow  *growth // nil once frozen
	toID  map[string]int
	toKey map[int]string
}

// Entry is one key and its index.
type Entry struct {
	Key   string
	Index int
}

// New creates an empty growing mapper.
func New() *Mapper {
	return &Mapper{
		phase: Growing,
		grow:  &growth{counts: make(map[string]int)},
		toID:  make(map[string]int),
		toKey: make(map[int]string),
	}
}

// NewFrozen builds a frozen mapper from entries, e.g. a previously written lookup.
func NewFrozen(entries []Entry) (*Mapper, error) {
	m := &Mapper{
		phase: Frozen,
		toID:  make(map[string]int, len(entries)),
		toKey: make(map[int]string, len(entries)),
	}
	for _, e := range entries {
		if e.Index < 0 {
			return nil, fmt.Errorf("key %q: negative index %d", e.Key, e.Index)
		}
		if _, dup := m.toID[e.Key]; dup {
			return nil, fmt.Errorf("key %q: duplicate entry", e.Key)
		}
		if other, dup := m.toKey[e.Index]; dup {
			return nil, fmt.Errorf("index %d: assigned to both %q and %q", e.Index, other, e.Key)
		}
		m.toID[e.Key] = e.Index
		m.toKey[e.Index] = e.Key
	}
	return m, nil
}

// Phase returns the current lifecycle state.
func (m *Mapper) Phase() Phase {
	return m.phase
}

// GetOrGenerate returns the index for key, allocating one on first sight.
// Each call counts as one occurrence of key.
func (m *Mapper) GetOrGenerate(key string) (int, error) {
	if m.phase != Growing {
		return 0, ErrFrozen
	}
	m.grow.counts[key]++
	if id, ok := m.toID[key]; ok {
		return id, nil
	}
	id := m.grow.next
	m.grow.next++
	m.toID[key] = id
	m.toKey[id] = key
	return id, nil
}

// Get returns the index for key on a frozen mapper.
func (m *Mapper) Get(key string) (int, error) {
	if m.phase != Frozen {
		return 0, ErrNotFrozen
	}
	if id, ok := m.toID[key]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

// Finalize freezes the mapper, removing every key seen fewer than cutoff
// times. Surviving keys keep their indices. Calling Finalize on a frozen
// mapper returns ErrFrozen and changes nothing.
func (m *Mapper) Finalize(cutoff int) error {
	if m.phase != Growing {
		return ErrFrozen
	}
	if cutoff > 0 {
		for key, count := range m.grow.counts {
			if count < cutoff {
				delete(m.toKey, m.toID[key])
				delete(m.toID, key)
			}
		}
	}
	m.grow = nil
	m.phase = Frozen
	return nil
}

// Count returns how many times key was looked up while growing. Counts are
// discarded at freeze time, so a frozen mapper reports 0.
func (m *Mapper) Count(key string) int {
	if m.grow == nil {
		return 0
	}
	return m.grow.counts[key]
}

// Len returns the number of keys currently mapped.
func (m *Mapper) Len() int {
	return len(m.toID)
}

// Key returns the key assigned to index.
func (m *Mapper) Key(index int) (string, bool) {
	key, ok := m.toKey[index]
	return key, ok
}

// Entries returns all mapped keys ordered by index.
func (m *Mapper) Entries() []Entry {
	entries := make([]Entry, 0, len(m.toID))
	for key, id := range m.toID {
		entries = append(entries, Entry{Key: key, Index: id})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Index < entries[j].Index
	})
	return entries
}
