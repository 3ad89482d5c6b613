package feature

import (
	"fmt"
	"math"
	"sort"
)

// Vectorizer is a fitted TF-IDF model over unigram and bigram terms. Vocab
// maps each kept term to its column and IDF holds the per-column inverse
// document frequency weight. Both are learned once by FitVectorizer and then
// read-only, so a Vectorizer is safe for concurrent Transform calls.
type Vectorizer struct {
	Vocab map[string]int `json:"vocab"`
	IDF   []float64      `json:"idf"`
}

// FitVectorizer learns a vocabulary and idf weights from the document set.
// When the distinct term count exceeds maxFeatures, the terms with the
// highest total corpus frequency are kept, ties broken alphabetically.
// Columns are assigned in alphabetical term order. idf uses the smoothed
// form ln((1+n)/(1+df)) + 1 so unseen-term weights stay finite.
func FitVectorizer(docs []string, maxFeatures int) (*Vectorizer, error) {
	df := make(map[string]int) // documents containing the term
	cf := make(map[string]int) // total corpus count, used by the cap
	for _, doc := range docs {
		for term, c := range termCounts(doc) {
			df[term]++
			cf[term] += c
		}
	}
	if len(df) == 0 {
		return nil, fmt.Errorf("empty vocabulary: no usable terms in %d documents", len(docs))
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	if maxFeatures > 0 && len(terms) > maxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if cf[terms[i]] != cf[terms[j]] {
				return cf[terms[i]] > cf[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	n := len(docs)
	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}
	return &Vectorizer{Vocab: vocab, IDF: idf}, nil
}

// Width returns the number of feature columns.
func (v *Vectorizer) Width() int { return len(v.IDF) }

// Transform encodes one document as an L2-normalized tf-idf row. Terms
// outside the fitted vocabulary are ignored, so the row width never changes
// after fitting.
func (v *Vectorizer) Transform(doc string) Vector {
	weights := make(map[int]float64)
	for term, c := range termCounts(doc) {
		if col, ok := v.Vocab[term]; ok {
			weights[col] = float64(c) * v.IDF[col]
		}
	}

	indices := make([]int, 0, len(weights))
	for col := range weights {
		indices = append(indices, col)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	var norm float64
	for i, col := range indices {
		values[i] = weights[col]
		norm += weights[col] * weights[col]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range values {
			values[i] /= norm
		}
	}
	return Vector{Indices: indices, Values: values, Width: v.Width()}
}

// termCounts tokenizes one document and counts its unigrams and bigrams.
func termCounts(doc string) map[string]int {
	terms := ngrams(Tokenize(doc))
	if len(terms) == 0 {
		return nil
	}
	counts := make(map[string]int, len(terms))
	for _, t := range terms {
		counts[t]++
	}
	return counts
}
