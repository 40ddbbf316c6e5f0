package model

import (
	"surveyml/domain/core"
)

// ModelName identifies a classifier family.
type ModelName string

const (
	DecisionTree     ModelName = "decision_tree"
	RandomForest     ModelName = "random_forest"
	GradientBoosting ModelName = "gradient_boosting"
)

// DisplayName returns the label shown on dashboards.
func (n ModelName) DisplayName() string {
	switch n {
	case DecisionTree:
		return "Decision Tree"
	case RandomForest:
		return "Random Forest"
	case GradientBoosting:
		return "Gradient Boosting"
	}
	return string(n)
}

// FamilyOrder is the fixed family order; it is also the vote tie-break priority, last wins.
var FamilyOrder = []ModelName{DecisionTree, RandomForest, GradientBoosting}

// EvaluationReport holds the scores computed alongside one trained model.
type EvaluationReport struct {
	Model         ModelName `json:"model"`
	TrainAccuracy float64   `json:"train_accuracy"`
	CVMean        float64   `json:"cv_mean"`
	CVStd         float64   `json:"cv_std"`
	CVFolds       int       `json:"cv_folds"`
	CVScores      []float64 `json:"cv_scores"`
	TestAccuracy  float64   `json:"test_accuracy"`
	TrainRows     int       `json:"train_rows"`
	TestRows      int       `json:"test_rows"`
}

// FailedModel records a family that could not be trained.
type FailedModel struct {
	Model ModelName `json:"model"`
	Err   string    `json:"error"`
}

// FeatureKind separates survey score columns from text columns.
type FeatureKind string

const (
	FeatureNumeric FeatureKind = "numeric"
	FeatureText    FeatureKind = "text"
)

// FeatureImportance is one ranked entry of a model's importance vector.
type FeatureImportance struct {
	Rank       int         `json:"rank"`
	Feature    string      `json:"feature"`
	Term       string      `json:"term"`
	Kind       FeatureKind `json:"kind"`
	Importance float64     `json:"importance"`
	Impact     Impact      `json:"impact"`
}

// Impact is the reading shown next to a ranked feature.
type Impact string

const (
	ImpactWord  Impact = "この単語が含まれると低満足度になりやすい"
	ImpactScore Impact = "KPI値が低いと低満足度になりやすい"
	ImpactMinor Impact = "影響は軽微"
)

// Importances above these thresholds read as a strong pull towards low satisfaction.
const (
	WordImpactThreshold  = 0.05
	ScoreImpactThreshold = 0.1
)

// ImpactOf interprets an importance for a feature of the given kind.
func ImpactOf(kind FeatureKind, importance float64) Impact {
	if kind == FeatureText {
		if importance > WordImpactThreshold {
			return ImpactWord
		}
		return ImpactMinor
	}
	if importance > ScoreImpactThreshold {
		return ImpactScore
	}
	return ImpactMinor
}

// ModelVote is one model's contribution to an ensemble prediction.
type ModelVote struct {
	Model         ModelName  `json:"model"`
	Label         int        `json:"label"`
	Probabilities [2]float64 `json:"probabilities"`
}

// PredictionResult is the ensemble outcome for one record.
type PredictionResult struct {
	Votes      []ModelVote    `json:"votes"`
	Label      int            `json:"label"`
	Confidence float64        `json:"confidence"`
	TieBroken  bool           `json:"tie_broken"`
	Warnings   []core.Warning `json:"warnings,omitempty"`
}

// Vote returns the vote of the named model, if it took part.
func (p *PredictionResult) Vote(name ModelName) (ModelVote, bool) {
	for _, v := range p.Votes {
		if v.Model == name {
			return v, true
		}
	}
	return ModelVote{}, false
}
