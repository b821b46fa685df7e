// Package tokenizer provides the pluggable text-to-token contract the
// engine tokenizes file contents and normalizes query terms with.
package tokenizer

import (
	"strings"
	"unicode"
)

// Tokenizer turns file contents into a set of normalized tokens, and
// normalizes a single query term the same way. Implementations must
// guarantee that every token Tokenize produces is already a fixed point of
// Normalize.
type Tokenizer interface {
	Tokenize(content string) map[string]struct{}
	Normalize(term string) string
}

// Default returns the simple word tokenizer: lowercase, split on maximal
// runs of non-word runes, drop empty pieces.
func Default() Tokenizer {
	return wordTokenizer{}
}

type wordTokenizer struct{}

func (wordTokenizer) Tokenize(content string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, word := range splitWords(content) {
		tokens[word] = struct{}{}
	}
	return tokens
}

func (wordTokenizer) Normalize(term string) string {
	words := splitWords(term)
	if len(words) == 0 {
		return ""
	}
	return words[0]
}

func splitWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
