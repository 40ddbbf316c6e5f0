package ports

import (
	"gonum.org/v1/gonum/mat"

	"surveyml/domain/model"
)

// Classifier is a binary classifier over a dense feature matrix.
type Classifier interface {
	Name() model.ModelName
	// Fit trains on rows of X with labels y in {0,1}.
	Fit(X mat.Matrix, y []int) error
	// PredictProba returns [P(y=0), P(y=1)] for one feature vector.
	PredictProba(x []float64) [2]float64
	// FeatureImportances returns non-negative impurity-based importances summing to 1
	// (or all zeros when no split was made).
	FeatureImportances() []float64
	IsFitted() bool
}

// ClassifierFactory creates a fresh, unfitted classifier seeded from rng.
type ClassifierFactory func(cfg model.ModelConfig, rng RNGPort) Classifier
