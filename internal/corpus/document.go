package corpus

import (
	"html"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/happyhackingspace/featvec/chunking"
	"github.com/happyhackingspace/featvec/internal/textutil"
)

// ChunkAttr marks a chunk span: <span data-chunk="PER">John Smith</span>.
const ChunkAttr = "data-chunk"

const blockSelector = "p, li, h1, h2, h3, h4, h5, h6, td"

// ReadDocument parses annotated HTML into sentences, one per innermost
// block element. Blocks without tokens are dropped. Chunk spans nested in
// another chunk span are absorbed into the outer chunk.
func ReadDocument(r io.Reader, url string) ([]Sentence, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	var sentences []Sentence
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if s.Find(blockSelector).Length() > 0 {
			return
		}
		var b sentenceBuilder
		b.walk(s, "")
		if len(b.tokens) == 0 {
			return
		}
		sentences = append(sentences, Sentence{Tokens: b.tokens, Chunks: b.chunks, URL: url})
	})
	return sentences, nil
}

// ReadString is ReadDocument over a string.
func ReadString(s, url string) ([]Sentence, error) {
	return ReadDocument(strings.NewReader(s), url)
}

type sentenceBuilder struct {
	tokens []string
	chunks []chunking.Chunk
}

func (b *sentenceBuilder) walk(s *goquery.Selection, inChunk string) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.tokens = append(b.tokens, textutil.Tokenize(c.Text())...)
			return
		}
		chunkType, ok := c.Attr(ChunkAttr)
		if !ok || inChunk != "" {
			b.walk(c, inChunk)
			return
		}
		chunkType = strings.TrimSpace(chunkType)
		start := len(b.tokens)
		b.walk(c, chunkType)
		if len(b.tokens) > start {
			b.chunks = append(b.chunks, chunking.Chunk{Type: chunkType, Start: start, End: len(b.tokens)})
		}
	})
}

// Annotate renders tokens back to HTML with chunk spans. Chunks must be
// sorted and non-overlapping, as Decode returns them.
func Annotate(tokens []string, chunks []chunking.Chunk) string {
	var buf strings.Builder
	next := 0
	for i := 0; i < len(tokens); {
		if i > 0 {
			buf.WriteByte(' ')
		}
		if next < len(chunks) && chunks[next].Start == i {
			c := chunks[next]
			buf.WriteString(`<span ` + ChunkAttr + `="` + html.EscapeString(c.Type) + `">`)
			buf.WriteString(html.EscapeString(strings.Join(tokens[c.Start:c.End], " ")))
			buf.WriteString(`</span>`)
			i = c.End
			next++
			continue
		}
		buf.WriteString(html.EscapeString(tokens[i]))
		i++
	}
	return buf.String()
}
