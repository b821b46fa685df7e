package tokenizer

import "github.com/surgebase/porter2"

// NewStemming returns a Tokenizer that reduces every word to its Porter2
// stem before treating it as a token. Matching stays exact-token: a query
// for "running" normalizes to the same stem "run" that "runs" also
// normalizes to, so it is the stem, not the surface form, that is the unit
// of identity in the index.
func NewStemming() Tokenizer {
	return stemTokenizer{}
}

type stemTokenizer struct{}

func (stemTokenizer) Tokenize(content string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, word := range splitWords(content) {
		tokens[porter2.Stem(word)] = struct{}{}
	}
	return tokens
}

func (stemTokenizer) Normalize(term string) string {
	words := splitWords(term)
	if len(words) == 0 {
		return ""
	}
	return porter2.Stem(words[0])
}
