package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happyhackingspace/featvec/chunking"
	"github.com/happyhackingspace/featvec/encoder"
)

const sampleHTML = `<html><body>
<h1>News</h1>
<p><span data-chunk="PER">John Smith</span> flew to <span data-chunk="LOC">Paris</span>.</p>
<ul><li><p>Nested <span data-chunk="ORG">Acme <span data-chunk="LOC">Inc</span></span></p></li></ul>
<p>   </p>
<table><tr><td><span data-chunk="LOC">Berlin</span></td></tr></table>
</body></html>`

func TestReadDocument(t *testing.T) {
	sentences, err := ReadString(sampleHTML, "http://example.org/a")
	require.NoError(t, err)
	require.Len(t, sentences, 4)

	assert.Equal(t, []string{"News"}, sentences[0].Tokens)
	assert.Empty(t, sentences[0].Chunks)

	assert.Equal(t, []string{"John", "Smith", "flew", "to", "Paris", "."}, sentences[1].Tokens)
	assert.Equal(t, []chunking.Chunk{
		{Type: "PER", Start: 0, End: 2},
		{Type: "LOC", Start: 4, End: 5},
	}, sentences[1].Chunks)
	assert.Equal(t, "http://example.org/a", sentences[1].URL)

	assert.Equal(t, []string{"Nested", "Acme", "Inc"}, sentences[2].Tokens)
	assert.Equal(t, []chunking.Chunk{{Type: "ORG", Start: 1, End: 3}}, sentences[2].Chunks)

	assert.Equal(t, []chunking.Chunk{{Type: "LOC", Start: 0, End: 1}}, sentences[3].Chunks)

	labels, err := sentences[1].Labels()
	require.NoError(t, err)
	assert.Equal(t, []string{"B-PER", "I-PER", "O", "O", "B-LOC", "O"}, labels)
}

func TestAnnotateRoundTrip(t *testing.T) {
	tokens := []string{"John", "Smith", "flew", "to", "Paris", "&", "Co"}
	chunks := []chunking.Chunk{{Type: "PER", Start: 0, End: 2}, {Type: "LOC", Start: 4, End: 5}}

	out := Annotate(tokens, chunks)
	assert.Equal(t, `<span data-chunk="PER">John Smith</span> flew to <span data-chunk="LOC">Paris</span> &amp; Co`, out)

	sentences, err := ReadString("<p>"+out+"</p>", "")
	require.NoError(t, err)
	require.Len(t, sentences, 1)
	assert.Equal(t, tokens, sentences[0].Tokens)
	assert.Equal(t, chunks, sentences[0].Chunks)
}

func TestStorageSentences(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.html": `<p><span data-chunk="PER">Ann</span> ran</p>`,
		"a.html": `<p>Hello <span data-chunk="LOC">Rome</span></p>`,
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	index := `{
		"b.html": {"url": "http://aaa.com/x"},
		"a.html": {"url": "http://zzz.co.uk/y"},
		"missing.html": {"url": "http://mmm.org/"}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, IndexFileName), []byte(index), 0o644))

	sentences, err := NewStorage(dir).Sentences()
	require.NoError(t, err)
	require.Len(t, sentences, 2)
	assert.Equal(t, "b.html", sentences[0].Source)
	assert.Equal(t, []string{"Ann", "ran"}, sentences[0].Tokens)
	assert.Equal(t, "a.html", sentences[1].Source)
}

func TestStorageMissingIndex(t *testing.T) {
	_, err := NewStorage(t.TempDir()).Sentences()
	assert.Error(t, err)
}

func TestDomain(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"http://example.org/page", "example"},
		{"https://foo.example.co.uk/path", "example"},
		{"http://www.google.com", "google"},
		{"example.org", "example"},
		{"http://localhost:8080/path", "localhost"},
		{"https://user@News.BBC.co.uk?q=1", "bbc"},
	}
	for _, tt := range tests {
		if got := Domain(tt.url); got != tt.want {
			t.Errorf("Domain(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestGroupKFold(t *testing.T) {
	groups := []int{2, 0, 1, 0, 2, 3}
	folds := GroupKFold(groups, 3)
	require.Len(t, folds, 3)
	assert.Equal(t, [][]int{{1, 3, 5}, {2}, {0, 4}}, folds)

	assert.Len(t, GroupKFold(groups, 10), 4)
	assert.Nil(t, GroupKFold(nil, 5))
}

func TestDomainGroups(t *testing.T) {
	sentences := []Sentence{
		{URL: "http://a.example.com"},
		{URL: "http://other.org"},
		{URL: "https://b.example.com/x"},
	}
	assert.Equal(t, []int{0, 1, 0}, DomainGroups(sentences))
}

func TestTokenFeatures(t *testing.T) {
	feats := TokenFeatures([]string{"Paris", "2024", "."})
	require.Len(t, feats, 3)

	byName := func(fs []encoder.Feature) map[string]any {
		m := make(map[string]any)
		for _, f := range fs {
			m[f.Name] = f.Value
		}
		return m
	}
	first := byName(feats[0])
	assert.Equal(t, "paris", first["w"])
	assert.Equal(t, "Xx", first["shape"])
	assert.Equal(t, true, first["title"])
	assert.Equal(t, "<START>", first["w-1"])
	assert.Equal(t, "2024", first["w+1"])
	assert.Equal(t, []string{"ppa", "sis", "ppar", "sris"}, first["affix"])
	assert.NotContains(t, first, "num")

	second := byName(feats[1])
	assert.Equal(t, "XXXX", second["num"])
	assert.Equal(t, "paris_2024", second["bigram"])

	third := byName(feats[2])
	assert.Equal(t, "<END>", third["w+1"])
	assert.Equal(t, true, third["single"])
	assert.Nil(t, third["affix"])
}
