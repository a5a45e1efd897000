// Package collect downloads pages into a corpus folder so they can be
// annotated with chunk spans.
package collect

import (
	"bufio"
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/happyhackingspace/featvec/internal/corpus"
)

const (
	maxPageBytes  = 5 * 1024 * 1024
	saveIndexEach = 50
)

// httpClient is the interface used for HTTP requests (allows testing).
type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Collector fetches pages and records them in a corpus index.
type Collector struct {
	Client    httpClient
	UserAgent string
	Delay     time.Duration
	MinBytes  int
}

// New returns a Collector with an HTTP client using the given timeout.
func New(timeout time.Duration) *Collector {
	return &Collector{
		Client:    newHTTPClient(timeout),
		UserAgent: "Mozilla/5.0 (compatible; featvec-collect/1.0)",
		MinBytes:  100,
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
}

// LoadURLs reads one URL per line, skipping blanks and # comments. Bare
// hosts get an https:// scheme.
func LoadURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.Contains(line, "://") {
			line = "https://" + line
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}

// PageFileName is the corpus-relative file a URL is saved to.
func PageFileName(rawURL string) string {
	hash := fmt.Sprintf("%x", md5.Sum([]byte(rawURL)))
	return "pages/" + hash[:12] + ".html"
}

// Collect fetches every URL not yet in the folder's index, saves it and
// updates index.json. Failed fetches are logged and skipped. It returns the
// number of pages added.
func (c *Collector) Collect(ctx context.Context, folder string, urls []string) (int, error) {
	store := corpus.NewStorage(folder)
	index, err := store.Index()
	if errors.Is(err, os.ErrNotExist) {
		index = make(map[string]corpus.IndexEntry)
	} else if err != nil {
		return 0, fmt.Errorf("load index: %w", err)
	}

	collected := 0
	for i, rawURL := range urls {
		name := PageFileName(rawURL)
		if _, ok := index[name]; ok {
			slog.Debug("Already collected", "url", rawURL)
			continue
		}
		if i > 0 && c.Delay > 0 {
			select {
			case <-ctx.Done():
				return collected, errors.Join(ctx.Err(), store.SaveIndex(index))
			case <-time.After(c.Delay):
			}
		}

		if err := c.fetchAndSave(ctx, rawURL, filepath.Join(folder, name)); err != nil {
			if ctx.Err() != nil {
				return collected, errors.Join(ctx.Err(), store.SaveIndex(index))
			}
			slog.Warn("Failed to collect page", "url", rawURL, "error", err)
			continue
		}
		index[name] = corpus.IndexEntry{URL: rawURL}
		collected++
		slog.Debug("Collected page", "url", rawURL, "file", name)

		if collected%saveIndexEach == 0 {
			if err := store.SaveIndex(index); err != nil {
				slog.Warn("Failed to save index", "error", err)
			}
		}
	}

	if err := store.SaveIndex(index); err != nil {
		return collected, fmt.Errorf("save index: %w", err)
	}
	return collected, nil
}

func (c *Collector) fetchAndSave(ctx context.Context, rawURL, path string) error {
	html, status, err := fetchHTML(ctx, c.Client, rawURL, c.UserAgent)
	if err != nil {
		return err
	}
	if status >= 400 {
		return fmt.Errorf("HTTP %d", status)
	}
	if len(html) < c.MinBytes {
		return fmt.Errorf("response too short (%d bytes)", len(html))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, html, 0o644)
}

func fetchHTML(ctx context.Context, client httpClient, rawURL, userAgent string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
