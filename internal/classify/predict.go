// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rijwolshakya09/IR-Test/internal/vectorize"
	"github.com/rijwolshakya09/IR-Test/pkg/types"
)

// Predict classifies text against a trained snapshot. Terms the model has
// never seen contribute nothing, so any text classifies without error; a
// text with no vocabulary overlap falls back to what the priors alone say.
// explainTerms caps the contributing-terms list; zero or less omits it.
func Predict(m *Model, text string, explainTerms int) (types.ClassificationResult, error) {
	if !m.Trained() {
		return types.ClassificationResult{}, ErrModelNotTrained
	}

	tokens := vectorize.Tokenize(text, m.MinTokenLength)
	counts := vectorize.TermCounts(tokens)

	scores := make([]float64, len(m.Categories))
	switch m.Algorithm {
	case types.AlgorithmNaiveBayes:
		scoreGenerative(m, counts, scores)
	case types.AlgorithmLogisticRegression:
		scoreDiscriminative(m, counts, scores)
	default:
		return types.ClassificationResult{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, m.Algorithm)
	}

	probs := softmax(scores)
	winner := argmax(probs)

	result := types.ClassificationResult{
		PredictedCategory:   m.Categories[winner],
		Confidence:          probs[winner],
		Probabilities:       make(map[string]float64, len(m.Categories)),
		ModelUsed:           m.Algorithm,
		TextLength:          len(text),
		ProcessedTextLength: len(strings.Join(tokens, " ")),
	}
	for i, c := range m.Categories {
		result.Probabilities[c] = probs[i]
	}
	if explainTerms > 0 {
		result.TopTerms = topContributors(m, counts, winner, explainTerms)
	}
	result.Explanation = explanation(m, result)
	return result, nil
}

// scoreGenerative accumulates log prior + sum of count-weighted log
// conditionals per category. Every category sees the terms in the same
// sorted order, so indistinguishable categories score bit-identically
// and ties resolve by category priority rather than float noise.
func scoreGenerative(m *Model, counts map[string]int, scores []float64) {
	terms := knownTerms(m, counts)
	for ci := range scores {
		s := m.LogPriors[ci]
		for _, term := range terms {
			s += float64(counts[term]) * m.CondLogProb[ci][m.termIndex[term]]
		}
		scores[ci] = s
	}
}

// scoreDiscriminative computes weight-row dot feature-vector plus bias
// per category over the unit-length TF-IDF features, visiting terms in
// sorted order for the same tie stability.
func scoreDiscriminative(m *Model, counts map[string]int, scores []float64) {
	vec := m.vectorizer.FromCounts(counts)
	terms := make([]string, 0, len(vec))
	for term := range vec {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	for ci := range scores {
		s := m.Bias[ci]
		for _, term := range terms {
			s += m.Weights[ci][m.termIndex[term]] * vec[term]
		}
		scores[ci] = s
	}
}

// knownTerms lists the model-vocabulary terms present in counts, sorted.
func knownTerms(m *Model, counts map[string]int) []string {
	terms := make([]string, 0, len(counts))
	for term := range counts {
		if _, ok := m.termIndex[term]; ok {
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)
	return terms
}

// softmax maps raw scores onto the probability simplex, shifting by the
// maximum for numerical stability.
func softmax(scores []float64) []float64 {
	maxS := scores[0]
	for _, s := range scores[1:] {
		if s > maxS {
			maxS = s
		}
	}
	exps := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		exps[i] = math.Exp(s - maxS)
		sum += exps[i]
	}
	for i := range exps {
		exps[i] /= sum
	}
	return exps
}

// argmax returns the first index of the maximum, so earlier categories win
// exact ties.
func argmax(probs []float64) int {
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return best
}

// topContributors ranks the input terms by how strongly they pushed the
// prediction toward the winning category: for the generative model the
// count-weighted log-conditional margin over the best rival, for the
// discriminative model the winner-row weight times the feature value.
// Only positive contributions count.
func topContributors(m *Model, counts map[string]int, winner, k int) []types.TermWeight {
	var contribs []types.TermWeight

	switch m.Algorithm {
	case types.AlgorithmNaiveBayes:
		if len(m.Categories) < 2 {
			return nil
		}
		for term, n := range counts {
			ti, ok := m.termIndex[term]
			if !ok {
				continue
			}
			rival := math.Inf(-1)
			for ci := range m.Categories {
				if ci != winner && m.CondLogProb[ci][ti] > rival {
					rival = m.CondLogProb[ci][ti]
				}
			}
			w := float64(n) * (m.CondLogProb[winner][ti] - rival)
			if w > 0 {
				contribs = append(contribs, types.TermWeight{Term: term, Weight: w})
			}
		}
	case types.AlgorithmLogisticRegression:
		for term, x := range m.vectorizer.FromCounts(counts) {
			w := m.Weights[winner][m.termIndex[term]] * x
			if w > 0 {
				contribs = append(contribs, types.TermWeight{Term: term, Weight: w})
			}
		}
	}

	sort.Slice(contribs, func(i, j int) bool {
		if contribs[i].Weight != contribs[j].Weight {
			return contribs[i].Weight > contribs[j].Weight
		}
		return contribs[i].Term < contribs[j].Term
	})
	if len(contribs) > k {
		contribs = contribs[:k]
	}
	return contribs
}

// confidenceLevel buckets a probability the way the UI presents it.
func confidenceLevel(p float64) string {
	switch {
	case p >= 0.8:
		return "high"
	case p >= 0.6:
		return "moderate"
	default:
		return "low"
	}
}

// displayName returns the human-readable algorithm name.
func displayName(algorithm types.Algorithm) string {
	switch algorithm {
	case types.AlgorithmNaiveBayes:
		return "Naive Bayes"
	case types.AlgorithmLogisticRegression:
		return "Logistic Regression"
	default:
		return string(algorithm)
	}
}

// explanation renders the prose account of a prediction: confidence level
// plus the alternatives in category priority order.
func explanation(m *Model, r types.ClassificationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The %s model classified this text as '%s' with %.1f%% confidence. This is a %s-confidence prediction.",
		displayName(m.Algorithm), r.PredictedCategory, r.Confidence*100, confidenceLevel(r.Confidence))

	var alts []string
	for _, c := range m.Categories {
		if c == r.PredictedCategory {
			continue
		}
		alts = append(alts, fmt.Sprintf("%s: %.1f%%", c, r.Probabilities[c]*100))
	}
	if len(alts) > 0 {
		fmt.Fprintf(&b, " Alternative classifications: %s.", strings.Join(alts, ", "))
	}
	return b.String()
}
