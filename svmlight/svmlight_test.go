package svmlight

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happyhackingspace/featvec/ova"
	"github.com/happyhackingspace/featvec/vector"
)

func TestFormatParse(t *testing.T) {
	v, err := vector.FromMap(map[int]float64{4: 0.5, 0: 2})
	require.NoError(t, err)

	line := Format("+1", v)
	assert.Equal(t, "+1 1:2 5:0.5", line)

	target, got, err := Parse(line + " # comment")
	require.NoError(t, err)
	assert.Equal(t, "+1", target)
	assert.True(t, v.Equal(got))
}

func TestParseErrors(t *testing.T) {
	for _, line := range []string{"", "# only comment", "1 3", "1 x:2", "1 2:y", "1 0:1"} {
		_, _, err := Parse(line)
		assert.Error(t, err, line)
	}
}

func TestWriteOneVsAll(t *testing.T) {
	dir := t.TempDir()
	a, _ := vector.FromMap(map[int]float64{0: 1})
	b, _ := vector.FromMap(map[int]float64{1: 1})
	require.NoError(t, WriteOneVsAll(dir, []int{0, 1}, []vector.Sparse{a, b}, []int{0, 1}))

	data, err := os.ReadFile(filepath.Join(dir, TrainingFileName(0)))
	require.NoError(t, err)
	assert.Equal(t, "+1 1:1\n-1 2:1\n", string(data))

	data, err = os.ReadFile(filepath.Join(dir, TrainingFileName(1)))
	require.NoError(t, err)
	assert.Equal(t, "-1 1:1\n+1 2:1\n", string(data))
}

func TestWriteExamples(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExamples(&buf, []string{"0"}, []vector.Sparse{vector.New()}))
	assert.Equal(t, "0\n", buf.String())
}

// fakeClassifier writes a script that echoes the number of feature pairs in
// the example file plus a constant read from the model file.
func fakeClassifier(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	script := filepath.Join(t.TempDir(), "classify.sh")
	body := `#!/bin/sh
set -e
n=$(head -n1 "$1" | tr ' ' '\n' | grep -c ':' || true)
base=$(cat "$2")
echo "$((n + base))" > "$3"
`
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))
	return script
}

func TestExecScorer(t *testing.T) {
	bin := fakeClassifier(t)
	model := filepath.Join(t.TempDir(), "model")
	require.NoError(t, os.WriteFile(model, []byte("10"), 0o644))

	v, err := vector.FromMap(map[int]float64{0: 1, 3: 2})
	require.NoError(t, err)

	s := &ExecScorer{Binary: bin}
	score, err := s.Score(context.Background(), "missing-model", v)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), bin))

	score, err = s.Score(context.Background(), ova.Handle(model), v)
	require.NoError(t, err)
	assert.Equal(t, 12.0, score)
}

func TestExecScorerMissingBinary(t *testing.T) {
	s := &ExecScorer{Binary: filepath.Join(t.TempDir(), "nope")}
	_, err := s.Score(context.Background(), "m", vector.New())
	assert.Error(t, err)
}
