package collect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happyhackingspace/featvec/internal/corpus"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	page := "<html><body><p>" + strings.Repeat("Paris is a city. ", 10) + "</p></body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.NotEmpty(t, r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte(page))
		case "/short":
			_, _ = w.Write([]byte("<p>x</p>"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCollect(t *testing.T) {
	srv := testServer(t)
	folder := t.TempDir()
	c := New(0)
	c.Client = srv.Client()

	urls := []string{srv.URL + "/ok", srv.URL + "/missing", srv.URL + "/short"}
	n, err := c.Collect(context.Background(), folder, urls)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	index, err := corpus.NewStorage(folder).Index()
	require.NoError(t, err)
	require.Len(t, index, 1)
	name := PageFileName(srv.URL + "/ok")
	assert.Equal(t, srv.URL+"/ok", index[name].URL)

	sentences, err := corpus.NewStorage(folder).Sentences()
	require.NoError(t, err)
	require.Len(t, sentences, 1)
	assert.Equal(t, "Paris", sentences[0].Tokens[0])

	// A second run skips pages already in the index.
	n, err = c.Collect(context.Background(), folder, urls[:1])
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCollectCanceled(t *testing.T) {
	srv := testServer(t)
	c := New(0)
	c.Client = srv.Client()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Collect(ctx, t.TempDir(), []string{srv.URL + "/ok"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadURLs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte("# seeds\nexample.org\n\nhttp://a.com/x\n"), 0o644))
	urls, err := LoadURLs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.org", "http://a.com/x"}, urls)
}

func TestPageFileName(t *testing.T) {
	name := PageFileName("http://example.org")
	assert.True(t, strings.HasPrefix(name, "pages/"))
	assert.True(t, strings.HasSuffix(name, ".html"))
	assert.Equal(t, name, PageFileName("http://example.org"))
	assert.NotEqual(t, name, PageFileName("http://example.com"))
}
