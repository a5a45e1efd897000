package corpus

import (
	"unicode/utf8"

	"github.com/happyhackingspace/featvec/encoder"
	"github.com/happyhackingspace/featvec/internal/textutil"
)

const (
	startToken = "<START>"
	endToken   = "<END>"
)

// TokenFeatures returns the features of every token position in a sentence.
func TokenFeatures(tokens []string) [][]encoder.Feature {
	lower := make([]string, len(tokens))
	for i, tok := range tokens {
		lower[i] = textutil.Normalize(tok)
	}
	at := func(i int) string {
		switch {
		case i < 0:
			return startToken
		case i >= len(lower):
			return endToken
		}
		return lower[i]
	}

	out := make([][]encoder.Feature, len(tokens))
	for i, tok := range tokens {
		feats := []encoder.Feature{
			{Name: "w", Value: lower[i]},
			{Name: "shape", Value: textutil.Shape(tok)},
			{Name: "title", Value: textutil.IsTitle(tok)},
			{Name: "affix", Value: affixes(lower[i])},
			{Name: "w-1", Value: at(i - 1)},
			{Name: "w+1", Value: at(i + 1)},
			{Name: "bigram", Value: at(i-1) + "_" + lower[i]},
		}
		if p := textutil.NumberPattern(tok, 0.3); p != "" {
			feats = append(feats, encoder.Feature{Name: "num", Value: p})
		}
		if utf8.RuneCountInString(tok) == 1 {
			feats = append(feats, encoder.Feature{Name: "single", Value: true})
		}
		out[i] = feats
	}
	return out
}

// affixes returns prefixes and suffixes of length 2 and 3.
func affixes(word string) []string {
	runes := []rune(word)
	var res []string
	for _, n := range []int{2, 3} {
		if len(runes) < n {
			break
		}
		res = append(res, "p"+string(runes[:n]), "s"+string(runes[len(runes)-n:]))
	}
	return res
}
