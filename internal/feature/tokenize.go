package feature

import (
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
)

var (
	wordTokenizer = unicode.NewUnicodeTokenizer()
	lowerFilter   = lowercase.NewLowerCaseFilter()
)

// Tokenize splits text into lowercase word terms with the bleve analysis
// chain. Single-rune terms carry no signal in short business email and are
// dropped.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	stream := lowerFilter.Filter(wordTokenizer.Tokenize([]byte(text)))
	terms := make([]string, 0, len(stream))
	for _, tok := range stream {
		term := string(tok.Term)
		if utf8.RuneCountInString(term) < 2 {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

// ngrams returns the unigrams followed by space-joined bigrams, in document
// order. Bigrams let the vectorizer keep phrases like "application received"
// distinct from the words alone.
func ngrams(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, 0, 2*len(tokens))
	out = append(out, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}
