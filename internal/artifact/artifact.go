// Package artifact opens and creates model artifacts, compressing those
// whose name ends in ZstdExt.
package artifact

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ZstdExt marks zstd-compressed artifacts.
const ZstdExt = ".zst"

// Create creates path for writing. Close must be called to flush.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ZstdExt) {
		return &fileWriter{f: f, bw: bufio.NewWriter(f)}, nil
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &zstdWriter{f: f, enc: enc}, nil
}

// Open opens path for reading, decompressing zstd artifacts.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ZstdExt) {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &zstdReader{f: f, dec: dec}, nil
}

// ReadFile reads a whole artifact.
func ReadFile(path string) ([]byte, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return io.ReadAll(r)
}

// WriteFile writes data as an artifact.
func WriteFile(path string, data []byte) error {
	w, err := Create(path)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// Find returns path if it exists, otherwise its compressed variant.
func Find(path string) (string, error) {
	for _, p := range []string{path, path + ZstdExt} {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("%s: %w", path, os.ErrNotExist)
}

type fileWriter struct {
	f  *os.File
	bw *bufio.Writer
}

func (w *fileWriter) Write(p []byte) (int, error) { return w.bw.Write(p) }

func (w *fileWriter) Close() error {
	if err := w.bw.Flush(); err != nil {
		_ = w.f.Close()
		return err
	}
	return w.f.Close()
}

type zstdWriter struct {
	f   *os.File
	enc *zstd.Encoder
}

func (w *zstdWriter) Write(p []byte) (int, error) { return w.enc.Write(p) }

func (w *zstdWriter) Close() error {
	if err := w.enc.Close(); err != nil {
		_ = w.f.Close()
		return err
	}
	return w.f.Close()
}

type zstdReader struct {
	f   *os.File
	dec *zstd.Decoder
}

func (r *zstdReader) Read(p []byte) (int, error) { return r.dec.Read(p) }

func (r *zstdReader) Close() error {
	r.dec.Close()
	return r.f.Close()
}
