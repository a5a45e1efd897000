package svmlight

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/happyhackingspace/featvec/ova"
	"github.com/happyhackingspace/featvec/vector"
)

// ExecScorer scores a vector by running an SVMlight-style classify binary:
//
//	<Binary> [Args...] <example file> <model file> <predictions file>
//
// The first number in the predictions file is the score.
type ExecScorer struct {
	Binary string
	Args   []string
	// TempDir is where example and prediction files are created. Empty
	// means os.TempDir.
	TempDir string
}

// Score implements ova.Scorer.
func (s *ExecScorer) Score(ctx context.Context, model ova.Handle, v vector.Sparse) (float64, error) {
	dir, err := os.MkdirTemp(s.TempDir, "featvec-score-")
	if err != nil {
		return 0, err
	}
	defer func() { _ = os.RemoveAll(dir) }()

	example := filepath.Join(dir, "example.dat")
	predictions := filepath.Join(dir, "predictions.dat")
	if err := os.WriteFile(example, []byte(Format("0", v)+"\n"), 0o644); err != nil {
		return 0, err
	}

	args := append(append([]string(nil), s.Args...), example, string(model), predictions)
	cmd := exec.CommandContext(ctx, s.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return 0, fmt.Errorf("%s: %w: %s", s.Binary, err, msg)
		}
		return 0, fmt.Errorf("%s: %w", s.Binary, err)
	}

	out, err := os.ReadFile(predictions)
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return 0, fmt.Errorf("%s: empty predictions", s.Binary)
	}
	score, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("%s: predictions: %w", s.Binary, err)
	}
	return score, nil
}
