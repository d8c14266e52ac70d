// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Algorithm selects which classifier family to train or query.
type Algorithm string

const (
	// AlgorithmNaiveBayes is the generative multinomial model: category
	// priors plus add-one-smoothed per-term conditionals.
	AlgorithmNaiveBayes Algorithm = "naive_bayes"

	// AlgorithmLogisticRegression is the discriminative one-vs-rest model
	// trained by gradient descent over TF-IDF features.
	AlgorithmLogisticRegression Algorithm = "logistic_regression"
)

// Algorithms lists every supported classifier, in training order.
func Algorithms() []Algorithm {
	return []Algorithm{AlgorithmNaiveBayes, AlgorithmLogisticRegression}
}

// TrainingDocument is one labeled text used to train the classifiers.
type TrainingDocument struct {
	// Text is the raw document body.
	Text string `json:"text" yaml:"text"`

	// Category is the label; it must belong to the configured category set.
	Category string `json:"category" yaml:"category"`
}

// TermWeight pairs a vocabulary term with its contribution to a prediction.
type TermWeight struct {
	// Term is the vocabulary term.
	Term string `json:"term" yaml:"term"`

	// Weight is the term's contribution toward the predicted category.
	Weight float64 `json:"weight" yaml:"weight"`
}

// ClassificationResult is the outcome of classifying one text.
type ClassificationResult struct {
	// PredictedCategory is the highest-probability category.
	PredictedCategory string `json:"predicted_category" yaml:"predicted_category"`

	// Confidence is the probability of the predicted category.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Probabilities maps every category to its probability. The values
	// sum to 1.
	Probabilities map[string]float64 `json:"probabilities" yaml:"probabilities"`

	// Explanation is a human-readable account of the prediction: the
	// confidence level and the alternative categories considered.
	Explanation string `json:"explanation" yaml:"explanation"`

	// TopTerms lists the input terms that pushed the prediction toward
	// the winning category, strongest first.
	TopTerms []TermWeight `json:"top_terms" yaml:"top_terms"`

	// ModelUsed is the algorithm that produced this result.
	ModelUsed Algorithm `json:"model_used" yaml:"model_used"`

	// TextLength is the character length of the raw input.
	TextLength int `json:"text_length" yaml:"text_length"`

	// ProcessedTextLength is the character length of the input after
	// preprocessing (kept tokens joined by single spaces).
	ProcessedTextLength int `json:"processed_text_length" yaml:"processed_text_length"`
}

// TrainingSummary reports one algorithm's training run.
type TrainingSummary struct {
	// Algorithm identifies the trained model.
	Algorithm Algorithm `json:"algorithm" yaml:"algorithm"`

	// DocumentCount is the number of training documents used.
	DocumentCount int `json:"document_count" yaml:"document_count"`

	// CategoryCounts maps each category to its number of training
	// documents.
	CategoryCounts map[string]int `json:"category_counts" yaml:"category_counts"`

	// Accuracy is the fraction of training documents the trained model
	// labels correctly. Computed on the training set itself, so repeated
	// runs over identical inputs report identical values.
	Accuracy float64 `json:"accuracy" yaml:"accuracy"`

	// TrainedAt records when training completed.
	TrainedAt time.Time `json:"trained_at" yaml:"trained_at"`
}

// ModelInfo describes the current state of one classifier.
type ModelInfo struct {
	// Algorithm identifies the model.
	Algorithm Algorithm `json:"model_type" yaml:"model_type"`

	// IsTrained reports whether a trained snapshot is available.
	IsTrained bool `json:"is_trained" yaml:"is_trained"`

	// DocumentCount is the number of documents the snapshot was trained on.
	DocumentCount int `json:"total_documents" yaml:"total_documents"`

	// Categories lists the category set in priority order.
	Categories []string `json:"categories" yaml:"categories"`

	// TrainingStats maps each category to its training document count.
	TrainingStats map[string]int `json:"training_stats" yaml:"training_stats"`
}
