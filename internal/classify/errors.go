// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import "errors"

var (
	// ErrInsufficientTrainingData indicates the training set is empty or
	// some configured category has no documents.
	ErrInsufficientTrainingData = errors.New("insufficient training data")

	// ErrModelNotTrained indicates prediction was requested before any
	// successful training produced a snapshot.
	ErrModelNotTrained = errors.New("model not trained")

	// ErrUnknownCategory indicates a label outside the configured
	// category set.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrUnknownAlgorithm indicates an unsupported algorithm kind.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
)
