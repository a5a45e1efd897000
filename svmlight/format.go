// Package svmlight reads and writes the SVMlight text format and scores
// vectors by running an external classifier binary.
package svmlight

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/happyhackingspace/featvec/vector"
)

// Format renders v as one SVMlight line. SVMlight feature numbers start at
// 1, so index i is written as i+1.
func Format(target string, v vector.Sparse) string {
	var b strings.Builder
	b.WriteString(target)
	v.Each(func(idx int, val float64) {
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(idx + 1))
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	})
	return b.String()
}

// Parse reads one SVMlight line back into its target and vector.
// Comments after '#' are ignored.
func Parse(line string) (string, vector.Sparse, error) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", vector.Sparse{}, fmt.Errorf("empty line")
	}
	v := vector.New()
	for _, f := range fields[1:] {
		num, val, ok := strings.Cut(f, ":")
		if !ok {
			return "", vector.Sparse{}, fmt.Errorf("feature %q: missing ':'", f)
		}
		n, err := strconv.Atoi(num)
		if err != nil {
			return "", vector.Sparse{}, fmt.Errorf("feature %q: %w", f, err)
		}
		x, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return "", vector.Sparse{}, fmt.Errorf("feature %q: %w", f, err)
		}
		if err := v.Add(n-1, x); err != nil {
			return "", vector.Sparse{}, err
		}
	}
	return fields[0], v, nil
}

// WriteExamples writes one line per vector with the matching target.
func WriteExamples(w io.Writer, targets []string, xs []vector.Sparse) error {
	bw := bufio.NewWriter(w)
	for i, x := range xs {
		if _, err := fmt.Fprintln(bw, Format(targets[i], x)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// TrainingFileName returns the per-class training file written by WriteOneVsAll.
func TrainingFileName(class int) string {
	return fmt.Sprintf("training-data-%d.dat", class)
}

// WriteOneVsAll writes one binary training file per class into dir. An
// example is +1 in the file of its own class and -1 in all others.
func WriteOneVsAll(dir string, classes []int, xs []vector.Sparse, ys []int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, class := range classes {
		targets := make([]string, len(xs))
		for i := range xs {
			targets[i] = "-1"
			if ys[i] == class {
				targets[i] = "+1"
			}
		}
		path := filepath.Join(dir, TrainingFileName(class))
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := WriteExamples(f, targets, xs); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
