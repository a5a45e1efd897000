// Package corpus reads chunk-annotated HTML documents into token sentences
// for training and evaluation.
package corpus

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/happyhackingspace/featvec/chunking"
)

// IndexFileName is the corpus index mapping document files to their URL.
const IndexFileName = "index.json"

// Sentence is one tokenized block of text with its gold chunks.
type Sentence struct {
	Tokens []string
	Chunks []chunking.Chunk
	URL    string
	Source string
}

// Labels returns the BIO labels of the sentence's gold chunks.
func (s Sentence) Labels() ([]string, error) {
	return chunking.Encode(len(s.Tokens), s.Chunks)
}

// Storage wraps a corpus folder.
type Storage struct {
	Folder string
}

// NewStorage creates a Storage for the given corpus folder.
func NewStorage(folder string) *Storage {
	return &Storage{Folder: folder}
}

// IndexEntry describes one document file in index.json.
type IndexEntry struct {
	URL string `json:"url"`
}

// Index reads index.json.
func (s *Storage) Index() (map[string]IndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(s.Folder, IndexFileName))
	if err != nil {
		return nil, err
	}
	var index map[string]IndexEntry
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("%s: %w", IndexFileName, err)
	}
	return index, nil
}

// SaveIndex writes index.json, creating the folder if needed.
func (s *Storage) SaveIndex(index map[string]IndexEntry) error {
	if err := os.MkdirAll(s.Folder, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(index, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.Folder, IndexFileName), data, 0o644)
}

// Sentences reads every indexed document, ordered by domain then path.
// Unreadable documents are logged and skipped.
func (s *Storage) Sentences() ([]Sentence, error) {
	index, err := s.Index()
	if err != nil {
		return nil, fmt.Errorf("get index: %w", err)
	}

	paths := make([]string, 0, len(index))
	for path := range index {
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool {
		di := Domain(index[paths[i]].URL)
		dj := Domain(index[paths[j]].URL)
		if di != dj {
			return di < dj
		}
		return paths[i] < paths[j]
	})

	var sentences []Sentence
	for _, path := range paths {
		f, err := os.Open(filepath.Join(s.Folder, path))
		if err != nil {
			slog.Warn("Cannot read corpus file", "path", path, "error", err)
			continue
		}
		doc, err := ReadDocument(f, index[path].URL)
		_ = f.Close()
		if err != nil {
			slog.Warn("Cannot parse corpus file", "path", path, "error", err)
			continue
		}
		for i := range doc {
			doc[i].Source = path
		}
		sentences = append(sentences, doc...)
	}
	slog.Debug("Corpus loaded", "folder", s.Folder, "documents", len(paths), "sentences", len(sentences))
	return sentences, nil
}
