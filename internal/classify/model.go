// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify trains and applies text classifiers over the fixed
// category set: a generative multinomial model and a discriminative
// one-vs-rest logistic model. Trained snapshots are immutable, published
// atomically, and persisted as YAML so a restarted process stays trained.
package classify

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/rijwolshakya09/IR-Test/internal/vectorize"
	"github.com/rijwolshakya09/IR-Test/pkg/types"
)

// Model is one immutable trained classifier snapshot. Parameter rows align
// with Categories, parameter columns with Terms. The YAML form is the
// on-disk persistence format.
type Model struct {
	// Algorithm identifies the classifier family the parameters belong to.
	Algorithm types.Algorithm `yaml:"algorithm"`

	// Categories is the label set in priority order; exact probability
	// ties resolve to the earliest entry.
	Categories []string `yaml:"categories"`

	// MinTokenLength is the token filter training used; predictions
	// preprocess identically.
	MinTokenLength int `yaml:"min_token_length"`

	// Terms is the training vocabulary in sorted order, DocFreq the
	// per-term document frequencies aligned with it, and DocCount the
	// number of training documents.
	Terms    []string `yaml:"terms"`
	DocFreq  []int    `yaml:"doc_freq"`
	DocCount int      `yaml:"doc_count"`

	// CategoryCounts maps each category to its training document count.
	CategoryCounts map[string]int `yaml:"category_counts"`

	// TrainedAt records when training completed.
	TrainedAt time.Time `yaml:"trained_at"`

	// LogPriors and CondLogProb are the generative parameters: per-category
	// log priors and add-one smoothed log conditionals per category and term.
	LogPriors   []float64   `yaml:"log_priors,omitempty"`
	CondLogProb [][]float64 `yaml:"cond_log_prob,omitempty"`

	// Weights and Bias are the discriminative parameters: one weight row
	// and intercept per category.
	Weights [][]float64 `yaml:"weights,omitempty"`
	Bias    []float64   `yaml:"bias,omitempty"`

	termIndex  map[string]int
	vectorizer *vectorize.Vectorizer
}

// Trained reports whether the model carries usable parameters.
func (m *Model) Trained() bool {
	return m != nil && m.DocCount > 0 && len(m.Categories) > 0
}

// Info describes the snapshot for the given algorithm slot; a nil or
// untrained model yields an untrained shell.
func (m *Model) Info(algorithm types.Algorithm) types.ModelInfo {
	if !m.Trained() {
		return types.ModelInfo{Algorithm: algorithm}
	}
	return types.ModelInfo{
		Algorithm:     m.Algorithm,
		IsTrained:     true,
		DocumentCount: m.DocCount,
		Categories:    append([]string(nil), m.Categories...),
		TrainingStats: m.CategoryCounts,
	}
}

// finalize rebuilds the derived lookup structures after training or load.
func (m *Model) finalize() {
	m.termIndex = make(map[string]int, len(m.Terms))
	df := make(map[string]int, len(m.Terms))
	for i, t := range m.Terms {
		m.termIndex[t] = i
		df[t] = m.DocFreq[i]
	}
	vocab := vectorize.RestoreVocabulary(df, m.DocCount)
	m.vectorizer = vectorize.NewVectorizer(vocab, m.MinTokenLength)
}

// SaveYAML writes the snapshot to path, creating parent directories.
func (m *Model) SaveYAML(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling %s model: %w", m.Algorithm, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating model directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadYAML reads a snapshot from path and prepares it for prediction.
func LoadYAML(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing model %s: %w", path, err)
	}
	m.finalize()
	return &m, nil
}

// SnapshotPath returns the conventional snapshot file for an algorithm.
func SnapshotPath(dir string, algorithm types.Algorithm) string {
	return filepath.Join(dir, string(algorithm)+".yaml")
}

// Holder publishes one trained snapshot per algorithm. Readers Load the
// current snapshot lock-free; training Stores its replacement in one
// atomic step, so a prediction sees the old model or the new one, never a
// mix. The zero value holds no snapshots.
type Holder struct {
	generative     atomic.Pointer[Model]
	discriminative atomic.Pointer[Model]
}

// Load returns the current snapshot for algorithm, nil when untrained or
// the algorithm is unknown.
func (h *Holder) Load(algorithm types.Algorithm) *Model {
	switch algorithm {
	case types.AlgorithmNaiveBayes:
		return h.generative.Load()
	case types.AlgorithmLogisticRegression:
		return h.discriminative.Load()
	default:
		return nil
	}
}

// Store publishes m under its own algorithm. Models of unknown algorithms
// are ignored.
func (h *Holder) Store(m *Model) {
	if m == nil {
		return
	}
	switch m.Algorithm {
	case types.AlgorithmNaiveBayes:
		h.generative.Store(m)
	case types.AlgorithmLogisticRegression:
		h.discriminative.Store(m)
	}
}
