// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/rijwolshakya09/IR-Test/internal/vectorize"
	"github.com/rijwolshakya09/IR-Test/pkg/types"
)

const (
	// DefaultMinTokenLength keeps classification tokens of 3+ characters.
	DefaultMinTokenLength = 3

	// DefaultLearningRate is the gradient-descent step size.
	DefaultLearningRate = 0.5

	// DefaultIterations is the number of full-batch gradient passes.
	DefaultIterations = 200

	// DefaultExplainTerms is how many contributing terms predictions report.
	DefaultExplainTerms = 5
)

// Trainer builds classifier snapshots from labeled documents. Training is
// deterministic: sorted vocabulary, zero-initialized weights, fixed
// iteration counts, no sampling. Two runs over identical inputs produce
// identical parameters.
type Trainer struct {
	cfg    types.ClassifyConfig
	logger *slog.Logger
}

// NewTrainer returns a trainer with unset config fields defaulted. A nil
// logger falls back to slog.Default().
func NewTrainer(cfg types.ClassifyConfig, logger *slog.Logger) *Trainer {
	if cfg.MinTokenLength < 1 {
		cfg.MinTokenLength = DefaultMinTokenLength
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = DefaultLearningRate
	}
	if cfg.Iterations < 1 {
		cfg.Iterations = DefaultIterations
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Trainer{cfg: cfg, logger: logger}
}

// Train builds a snapshot for algorithm from docs labeled within
// categories. The whole model is assembled off to the side; on any error
// nothing is produced, so a failed run cannot leave a partial model behind.
func (t *Trainer) Train(docs []types.TrainingDocument, categories []string, algorithm types.Algorithm) (*Model, types.TrainingSummary, error) {
	switch algorithm {
	case types.AlgorithmNaiveBayes, types.AlgorithmLogisticRegression:
	default:
		return nil, types.TrainingSummary{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}

	counts, err := validate(docs, categories)
	if err != nil {
		return nil, types.TrainingSummary{}, err
	}

	start := time.Now()

	// Both families share the preprocessing and the vocabulary.
	tokenized := make([][]string, len(docs))
	for i, d := range docs {
		tokenized[i] = vectorize.Tokenize(d.Text, t.cfg.MinTokenLength)
	}
	vocab := vectorize.NewVocabulary(tokenized)

	m := &Model{
		Algorithm:      algorithm,
		Categories:     append([]string(nil), categories...),
		MinTokenLength: t.cfg.MinTokenLength,
		Terms:          vocab.Terms(),
		DocCount:       len(docs),
		CategoryCounts: counts,
		TrainedAt:      time.Now().UTC(),
	}
	m.DocFreq = make([]int, len(m.Terms))
	for i, term := range m.Terms {
		m.DocFreq[i] = vocab.DocFreq(term)
	}

	if algorithm == types.AlgorithmNaiveBayes {
		t.trainGenerative(m, docs, tokenized)
	} else {
		t.trainDiscriminative(m, docs, tokenized, vocab)
	}
	m.finalize()

	summary := types.TrainingSummary{
		Algorithm:      algorithm,
		DocumentCount:  len(docs),
		CategoryCounts: counts,
		Accuracy:       t.resubstitutionAccuracy(m, docs),
		TrainedAt:      m.TrainedAt,
	}
	t.logger.Info("classifier trained",
		"algorithm", algorithm,
		"documents", len(docs),
		"vocabulary", len(m.Terms),
		"accuracy", summary.Accuracy,
		"elapsed", time.Since(start))
	return m, summary, nil
}

// validate checks the training set against the category set and returns
// per-category document counts.
func validate(docs []types.TrainingDocument, categories []string) (map[string]int, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no training documents", ErrInsufficientTrainingData)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: no categories configured", ErrInsufficientTrainingData)
	}

	counts := make(map[string]int, len(categories))
	allowed := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		allowed[c] = struct{}{}
		counts[c] = 0
	}
	for _, d := range docs {
		if _, ok := allowed[d.Category]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, d.Category)
		}
		counts[d.Category]++
	}
	for _, c := range categories {
		if counts[c] == 0 {
			return nil, fmt.Errorf("%w: category %q has no documents", ErrInsufficientTrainingData, c)
		}
	}
	return counts, nil
}

// trainGenerative fits category priors and add-one smoothed multinomial
// term conditionals, stored in log space:
// cond(t|c) = (count(t,c) + 1) / (total terms in c + |vocabulary|).
func (t *Trainer) trainGenerative(m *Model, docs []types.TrainingDocument, tokenized [][]string) {
	nCats := len(m.Categories)
	nTerms := len(m.Terms)

	catIdx := make(map[string]int, nCats)
	for i, c := range m.Categories {
		catIdx[c] = i
	}
	termIdx := make(map[string]int, nTerms)
	for i, term := range m.Terms {
		termIdx[term] = i
	}

	termCounts := make([][]float64, nCats)
	totals := make([]float64, nCats)
	for ci := range termCounts {
		termCounts[ci] = make([]float64, nTerms)
	}
	for di, d := range docs {
		ci := catIdx[d.Category]
		for _, tok := range tokenized[di] {
			termCounts[ci][termIdx[tok]]++
			totals[ci]++
		}
	}

	m.LogPriors = make([]float64, nCats)
	m.CondLogProb = make([][]float64, nCats)
	for ci, c := range m.Categories {
		m.LogPriors[ci] = math.Log(float64(m.CategoryCounts[c]) / float64(m.DocCount))
		m.CondLogProb[ci] = make([]float64, nTerms)
		denom := totals[ci] + float64(nTerms)
		for ti := 0; ti < nTerms; ti++ {
			m.CondLogProb[ci][ti] = math.Log((termCounts[ci][ti] + 1) / denom)
		}
	}
}

// trainDiscriminative fits one-vs-rest logistic weights over unit-length
// TF-IDF features by full-batch gradient descent on cross-entropy.
func (t *Trainer) trainDiscriminative(m *Model, docs []types.TrainingDocument, tokenized [][]string, vocab *vectorize.Vocabulary) {
	nCats := len(m.Categories)
	nTerms := len(m.Terms)

	catIdx := make(map[string]int, nCats)
	for i, c := range m.Categories {
		catIdx[c] = i
	}
	termIdx := make(map[string]int, nTerms)
	for i, term := range m.Terms {
		termIdx[term] = i
	}

	vz := vectorize.NewVectorizer(vocab, t.cfg.MinTokenLength)
	features := make([][]float64, len(docs))
	labels := make([]int, len(docs))
	for di := range docs {
		row := make([]float64, nTerms)
		for term, w := range vz.FromCounts(vectorize.TermCounts(tokenized[di])) {
			row[termIdx[term]] = w
		}
		features[di] = row
		labels[di] = catIdx[docs[di].Category]
	}

	m.Weights = make([][]float64, nCats)
	m.Bias = make([]float64, nCats)
	lr := t.cfg.LearningRate
	n := float64(len(docs))

	for ci := 0; ci < nCats; ci++ {
		w := make([]float64, nTerms)
		var b float64
		gradW := make([]float64, nTerms)

		for iter := 0; iter < t.cfg.Iterations; iter++ {
			for i := range gradW {
				gradW[i] = 0
			}
			var gradB float64

			for di, row := range features {
				var target float64
				if labels[di] == ci {
					target = 1
				}
				z := b
				for ti, x := range row {
					if x != 0 {
						z += w[ti] * x
					}
				}
				delta := sigmoid(z) - target
				for ti, x := range row {
					if x != 0 {
						gradW[ti] += delta * x
					}
				}
				gradB += delta
			}

			for ti := range w {
				w[ti] -= lr * gradW[ti] / n
			}
			b -= lr * gradB / n
		}
		m.Weights[ci] = w
		m.Bias[ci] = b
	}
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// resubstitutionAccuracy scores the trained model against its own training
// set. Deterministic, unlike a sampled holdout, so repeated training runs
// report the same number.
func (t *Trainer) resubstitutionAccuracy(m *Model, docs []types.TrainingDocument) float64 {
	correct := 0
	for _, d := range docs {
		res, err := Predict(m, d.Text, 0)
		if err == nil && res.PredictedCategory == d.Category {
			correct++
		}
	}
	return float64(correct) / float64(len(docs))
}
