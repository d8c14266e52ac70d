// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vectorize turns publication text into sparse TF-IDF term vectors.
// A Vocabulary carries the document frequencies of one corpus snapshot; a
// Vectorizer weights term counts against that snapshot and normalizes the
// result to unit length, so ranking reduces to dot products.
package vectorize

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Tokenize normalizes text into terms: lowercased, split on runs of
// non-alphanumeric runes, with stopwords and tokens shorter than minLen
// dropped. minLen below 1 keeps every non-empty token.
func Tokenize(text string, minLen int) []string {
	if minLen < 1 {
		minLen = 1
	}
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var tokens []string
	for _, f := range fields {
		if len(f) < minLen {
			continue
		}
		if _, ok := stopwords[f]; ok {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// TermCounts tallies raw term occurrences.
func TermCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}

// Vocabulary holds per-term document frequencies for one snapshot of a
// document collection. It is immutable after construction.
type Vocabulary struct {
	docFreq  map[string]int
	docCount int
}

// NewVocabulary builds a vocabulary from tokenized documents. Each term's
// document frequency counts the documents it appears in, not occurrences.
func NewVocabulary(docs [][]string) *Vocabulary {
	v := &Vocabulary{
		docFreq:  make(map[string]int),
		docCount: len(docs),
	}
	for _, tokens := range docs {
		seen := make(map[string]struct{}, len(tokens))
		for _, t := range tokens {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			v.docFreq[t]++
		}
	}
	return v
}

// RestoreVocabulary rebuilds a vocabulary from persisted frequencies.
func RestoreVocabulary(docFreq map[string]int, docCount int) *Vocabulary {
	df := make(map[string]int, len(docFreq))
	for t, n := range docFreq {
		df[t] = n
	}
	return &Vocabulary{docFreq: df, docCount: docCount}
}

// Len returns the number of distinct terms.
func (v *Vocabulary) Len() int { return len(v.docFreq) }

// DocCount returns the number of documents the vocabulary was built from.
func (v *Vocabulary) DocCount() int { return v.docCount }

// DocFreq returns the document frequency of term, zero if unseen.
func (v *Vocabulary) DocFreq(term string) int { return v.docFreq[term] }

// IDF returns the smoothed inverse document frequency of term:
// log((1+N)/(1+df)) + 1. Defined for every term, including unseen ones.
func (v *Vocabulary) IDF(term string) float64 {
	return math.Log(float64(1+v.docCount)/float64(1+v.docFreq[term])) + 1
}

// Terms returns every vocabulary term in sorted order.
func (v *Vocabulary) Terms() []string {
	terms := make([]string, 0, len(v.docFreq))
	for t := range v.docFreq {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// Vector is a sparse TF-IDF document vector keyed by term.
type Vector map[string]float64

// Dot returns the inner product of a and b, visiting the smaller
// operand's terms in sorted order. Fixing the summation order keeps the
// result bit-identical for equal inputs, so exact score ties stay exact.
// For unit-length vectors this is the cosine similarity.
func (a Vector) Dot(b Vector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for _, t := range a.terms() {
		if bw, ok := b[t]; ok {
			sum += a[t] * bw
		}
	}
	return sum
}

// Norm returns the Euclidean length, summing squares in term order so
// equal term weights always norm identically.
func (v Vector) Norm() float64 {
	var ss float64
	for _, t := range v.terms() {
		w := v[t]
		ss += w * w
	}
	return math.Sqrt(ss)
}

func (v Vector) terms() []string {
	terms := make([]string, 0, len(v))
	for t := range v {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// Normalize scales v to unit length in place. Zero vectors stay zero.
func (v Vector) Normalize() {
	n := v.Norm()
	if n == 0 {
		return
	}
	for t, w := range v {
		v[t] = w / n
	}
}

// Vectorizer converts text into unit-length TF-IDF vectors against a fixed
// vocabulary snapshot. It carries no mutable state and is safe for
// concurrent use.
type Vectorizer struct {
	vocab  *Vocabulary
	minLen int
}

// NewVectorizer returns a vectorizer over vocab keeping tokens of at least
// minLen runes.
func NewVectorizer(vocab *Vocabulary, minLen int) *Vectorizer {
	return &Vectorizer{vocab: vocab, minLen: minLen}
}

// Vocabulary returns the vocabulary snapshot the vectorizer weights against.
func (vz *Vectorizer) Vocabulary() *Vocabulary { return vz.vocab }

// Vectorize converts text to a unit-length TF-IDF vector. Terms outside
// the vocabulary are ignored, so unseen query terms simply contribute
// nothing to any similarity.
func (vz *Vectorizer) Vectorize(text string) Vector {
	return vz.FromCounts(TermCounts(Tokenize(text, vz.minLen)))
}

// FromCounts weights raw term counts by IDF and normalizes to unit length.
func (vz *Vectorizer) FromCounts(counts map[string]int) Vector {
	vec := make(Vector, len(counts))
	for term, n := range counts {
		if vz.vocab.DocFreq(term) == 0 {
			continue
		}
		vec[term] = float64(n) * vz.vocab.IDF(term)
	}
	vec.Normalize()
	return vec
}
