package classifier

import (
	"errors"
	"math"
	"sort"
	"strings"
)

// minTermLength mirrors the usual word-token pattern: at least two characters.
const minTermLength = 2

// SparseVector is a row of the document-term matrix. Indices are ascending.
type SparseVector struct {
	Indices []int     `json:"indices"`
	Values  []float64 `json:"values"`
}

// Dot returns the inner product with a dense weight vector.
func (s SparseVector) Dot(w []float64) float64 {
	var sum float64
	for k, idx := range s.Indices {
		sum += s.Values[k] * w[idx]
	}
	return sum
}

// SquaredNorm returns the squared L2 norm.
func (s SparseVector) SquaredNorm() float64 {
	var sum float64
	for _, v := range s.Values {
		sum += v * v
	}
	return sum
}

// Dense expands the vector to dim entries.
func (s SparseVector) Dense(dim int) []float64 {
	out := make([]float64, dim)
	for k, idx := range s.Indices {
		out[idx] = s.Values[k]
	}
	return out
}

// TFIDFVectorizer maps normalized text to L2-normalized TF-IDF vectors over
// unigrams and bigrams. Vocabulary indices follow sorted term order.
type TFIDFVectorizer struct {
	MaxFeatures int            `json:"max_features"`
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
}

// NewTFIDFVectorizer creates an unfitted vectorizer. maxFeatures <= 0 keeps every term.
func NewTFIDFVectorizer(maxFeatures int) *TFIDFVectorizer {
	return &TFIDFVectorizer{
		MaxFeatures: maxFeatures,
		Vocabulary:  make(map[string]int),
	}
}

// Fit learns the vocabulary and smoothed IDF weights from docs.
// When the vocabulary exceeds MaxFeatures, the most frequent terms across the
// corpus are kept, ties broken alphabetically.
func (v *TFIDFVectorizer) Fit(docs []string) error {
	if len(docs) == 0 {
		return errors.New("cannot fit vectorizer on an empty corpus")
	}

	docFreq := make(map[string]int)
	termFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range analyze(doc) {
			termFreq[term]++
			if !seen[term] {
				docFreq[term]++
				seen[term] = true
			}
		}
	}
	if len(docFreq) == 0 {
		return errors.New("empty vocabulary; documents contain only stopwords or short tokens")
	}

	terms := make([]string, 0, len(docFreq))
	for term := range docFreq {
		terms = append(terms, term)
	}

	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if termFreq[terms[i]] != termFreq[terms[j]] {
				return termFreq[terms[i]] > termFreq[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.MaxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	for i, term := range terms {
		v.Vocabulary[term] = i
		// smooth idf: ln((1+n)/(1+df)) + 1
		v.IDF[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	return nil
}

// Transform converts one normalized document. Terms outside the vocabulary
// are ignored, so the result may be the zero vector.
func (v *TFIDFVectorizer) Transform(doc string) SparseVector {
	counts := make(map[int]float64)
	for _, term := range analyze(doc) {
		if idx, ok := v.Vocabulary[term]; ok {
			counts[idx]++
		}
	}

	vec := SparseVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)

	var norm float64
	for _, idx := range vec.Indices {
		w := counts[idx] * v.IDF[idx]
		vec.Values = append(vec.Values, w)
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for k := range vec.Values {
			vec.Values[k] /= norm
		}
	}
	return vec
}

// TransformAll converts every document.
func (v *TFIDFVectorizer) TransformAll(docs []string) []SparseVector {
	out := make([]SparseVector, len(docs))
	for i, doc := range docs {
		out[i] = v.Transform(doc)
	}
	return out
}

// NumFeatures returns the fitted vocabulary size.
func (v *TFIDFVectorizer) NumFeatures() int {
	return len(v.IDF)
}

func (v *TFIDFVectorizer) validate() error {
	if len(v.IDF) == 0 || len(v.Vocabulary) != len(v.IDF) {
		return errors.New("vectorizer is not fitted")
	}
	for term, idx := range v.Vocabulary {
		if idx < 0 || idx >= len(v.IDF) {
			return errors.New("vectorizer index out of range for term " + term)
		}
	}
	return nil
}

// analyze splits a normalized document into unigrams followed by bigrams.
func analyze(doc string) []string {
	words := make([]string, 0)
	for _, w := range strings.Fields(doc) {
		if len(w) >= minTermLength {
			words = append(words, w)
		}
	}

	terms := make([]string, 0, 2*len(words))
	terms = append(terms, words...)
	for i := 0; i+1 < len(words); i++ {
		terms = append(terms, words[i]+" "+words[i+1])
	}
	return terms
}
