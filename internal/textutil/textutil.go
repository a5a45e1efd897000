// Package textutil provides tokenization and token-shape helpers used to
// build per-token features.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var tokenizeRe = regexp.MustCompile(`[\p{L}\p{N}_]+|[^\s\p{L}\p{N}_]`)

// Tokenize splits text into word tokens and single punctuation tokens.
func Tokenize(text string) []string {
	return tokenizeRe.FindAllString(text, -1)
}

var (
	newlineRe    = regexp.MustCompile(`[\n\r]`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// NormalizeWhitespaces replaces newlines and whitespace runs with a single space.
func NormalizeWhitespaces(text string) string {
	text = newlineRe.ReplaceAllString(text, " ")
	return multiSpaceRe.ReplaceAllString(text, " ")
}

// Normalize lowercases text and normalizes whitespace.
func Normalize(text string) string {
	return NormalizeWhitespaces(strings.ToLower(text))
}

// NumberPattern maps digits to X and letters to C when the digit ratio of
// text is at least ratio. It returns "" otherwise.
func NumberPattern(text string, ratio float64) string {
	if text == "" {
		return ""
	}
	total := utf8.RuneCountInString(text)
	digits := 0
	for _, r := range text {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if float64(digits)/float64(total) < ratio {
		return ""
	}
	var buf strings.Builder
	for _, r := range text {
		switch {
		case unicode.IsDigit(r):
			buf.WriteRune('X')
		case unicode.IsLetter(r):
			buf.WriteRune('C')
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

// Shape returns the collapsed character classes of a token: "Xx" for
// "Paris", "d" for "2024", "X.X." for "U.S.".
func Shape(token string) string {
	var buf strings.Builder
	var last rune
	for _, r := range token {
		var c rune
		switch {
		case unicode.IsUpper(r):
			c = 'X'
		case unicode.IsLetter(r):
			c = 'x'
		case unicode.IsDigit(r):
			c = 'd'
		default:
			c = r
		}
		if c == last && (c == 'X' || c == 'x' || c == 'd') {
			continue
		}
		buf.WriteRune(c)
		last = c
	}
	return buf.String()
}

// IsTitle reports whether token starts with an upper-case letter followed
// only by lower-case letters.
func IsTitle(token string) bool {
	first, size := utf8.DecodeRuneInString(token)
	if first == utf8.RuneError || !unicode.IsUpper(first) {
		return false
	}
	for _, r := range token[size:] {
		if !unicode.IsLower(r) {
			return false
		}
	}
	return true
}
