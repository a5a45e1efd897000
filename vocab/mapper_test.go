package vocab

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapperFirstSeenOrder(t *testing.T) {
	m := New()
	keys := []string{"hello", "world", "hello", "again", "world"}
	var ids []int
	for _, k := range keys {
		id, err := m.GetOrGenerate(k)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	assert.Equal(t, []int{0, 1, 0, 2, 1}, ids)
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 2, m.Count("hello"))
	assert.Equal(t, 1, m.Count("again"))
	assert.Equal(t, Growing, m.Phase())
}

func TestMapperStableIndices(t *testing.T) {
	m := New()
	first := make(map[string]int)
	seq := strings.Fields("a b c a d b e a f c g")
	for _, k := range seq {
		id, err := m.GetOrGenerate(k)
		require.NoError(t, err)
		if prev, ok := first[k]; ok {
			assert.Equal(t, prev, id, "index of %q changed", k)
		} else {
			first[k] = id
		}
	}
}

func TestMapperCutoffPruning(t *testing.T) {
	m := New()
	for _, k := range strings.Fields("a a a b b c d d d d") {
		_, err := m.GetOrGenerate(k)
		require.NoError(t, err)
	}
	require.NoError(t, m.Finalize(3))
	assert.Equal(t, Frozen, m.Phase())

	tests := []struct {
		key    string
		want   int
		wantOK bool
	}{
		{"a", 0, true},
		{"b", 0, false},
		{"c", 0, false},
		{"d", 3, true},
		{"never", 0, false},
	}
	for _, tt := range tests {
		id, err := m.Get(tt.key)
		if tt.wantOK {
			require.NoError(t, err, tt.key)
			assert.Equal(t, tt.want, id, tt.key)
		} else {
			assert.True(t, errors.Is(err, ErrUnknownKey), tt.key)
		}
	}
	assert.Equal(t, 2, m.Len())
}

func TestMapperZeroCutoffKeepsAll(t *testing.T) {
	m := New()
	for _, k := range []string{"x", "y"} {
		_, err := m.GetOrGenerate(k)
		require.NoError(t, err)
	}
	require.NoError(t, m.Finalize(0))
	assert.Equal(t, 2, m.Len())
}

func TestMapperPhaseErrors(t *testing.T) {
	m := New()
	_, err := m.Get("x")
	assert.ErrorIs(t, err, ErrNotFrozen)

	require.NoError(t, m.Finalize(0))
	_, err = m.GetOrGenerate("x")
	assert.ErrorIs(t, err, ErrFrozen)
	assert.ErrorIs(t, m.Finalize(0), ErrFrozen)
	assert.Equal(t, 0, m.Count("x"))
}

func TestLookupRoundTrip(t *testing.T) {
	m := New()
	for _, k := range []string{"w=the", "tab\there", "quote\"d", "w=the", "line\nbreak"} {
		_, err := m.GetOrGenerate(k)
		require.NoError(t, err)
	}
	require.NoError(t, m.Finalize(0))

	var buf bytes.Buffer
	require.NoError(t, m.WriteLookup(&buf))
	assert.True(t, strings.HasPrefix(buf.String(), LookupHeader+"\n"))
	assert.Equal(t, 5, strings.Count(buf.String(), "\n"), "header plus one line per entry")

	loaded, err := ReadLookup(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.Entries(), loaded.Entries())
	id, err := loaded.Get("tab\there")
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestLookupKeepsGapsAfterPruning(t *testing.T) {
	m := New()
	for _, k := range strings.Fields("a b b c c") {
		_, err := m.GetOrGenerate(k)
		require.NoError(t, err)
	}
	require.NoError(t, m.Finalize(2))

	var buf bytes.Buffer
	require.NoError(t, m.WriteLookup(&buf))
	loaded, err := ReadLookup(&buf)
	require.NoError(t, err)

	id, err := loaded.Get("c")
	require.NoError(t, err)
	assert.Equal(t, 2, id)
	_, err = loaded.Get("a")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestReadLookupErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"empty", "", 1},
		{"bad header", "nope\n", 1},
		{"no tab", LookupHeader + "\n\"a\" 0\n", 2},
		{"unquoted key", LookupHeader + "\na\t0\n", 2},
		{"bad index", LookupHeader + "\n\"a\"\tx\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadLookup(strings.NewReader(tt.input))
			var le *LookupError
			require.True(t, errors.As(err, &le), "got %v", err)
			assert.Equal(t, tt.line, le.Line)
		})
	}
}

func TestWriteLookupRequiresFrozen(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, New().WriteLookup(&buf), ErrNotFrozen)
}

func TestNewFrozenRejectsDuplicates(t *testing.T) {
	_, err := NewFrozen([]Entry{{"a", 0}, {"b", 0}})
	assert.Error(t, err)
	_, err = NewFrozen([]Entry{{"a", 0}, {"a", 1}})
	assert.Error(t, err)
}
