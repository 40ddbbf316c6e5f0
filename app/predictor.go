package app

import (
	"fmt"
	"math"

	"surveyml/domain/core"
	"surveyml/domain/model"
	"surveyml/domain/survey"
)

// Predictor runs one record through the fitted extractor and every trained model.
type Predictor struct {
	assembler *Assembler
}

// NewPredictor creates a predictor coercing numeric cells with assembler
func NewPredictor(assembler *Assembler) *Predictor {
	return &Predictor{assembler: assembler}
}

// Predict returns the per-model votes, the majority label and the mean probability spread.
// Artifacts must hold a fitted extractor and at least one model trained against it.
func (p *Predictor) Predict(a *Artifacts, rec survey.Record) (*model.PredictionResult, error) {
	if err := checkArtifacts(a); err != nil {
		return nil, err
	}

	x, warnings, err := p.Vector(a, rec)
	if err != nil {
		return nil, err
	}

	result := &model.PredictionResult{Warnings: warnings}
	ones, zeros := 0, 0
	var spread float64
	for _, name := range model.FamilyOrder {
		m, ok := a.Model(name)
		if !ok {
			continue
		}
		proba := m.Classifier.PredictProba(x)
		label := PredictLabel(proba)
		if label == 1 {
			ones++
		} else {
			zeros++
		}
		spread += math.Max(proba[0], proba[1]) - math.Min(proba[0], proba[1])
		result.Votes = append(result.Votes, model.ModelVote{Model: name, Label: label, Probabilities: proba})
	}

	switch {
	case ones > zeros:
		result.Label = 1
	case zeros > ones:
		result.Label = 0
	default:
		// later families in FamilyOrder take priority
		result.Label = result.Votes[len(result.Votes)-1].Label
		result.TieBroken = true
	}
	result.Confidence = spread / float64(len(result.Votes))
	return result, nil
}

// Vector builds the feature vector of rec in the training column layout.
func (p *Predictor) Vector(a *Artifacts, rec survey.Record) ([]float64, []core.Warning, error) {
	numeric, warnings := p.assembler.NumericVector(a.Numeric, rec)
	text := a.Extractor.Transform(rec.CombinedComment(a.TextFields))

	x := make([]float64, 0, len(numeric)+len(text))
	x = append(x, numeric...)
	x = append(x, text...)
	if len(x) != len(a.FeatureNames) {
		return nil, nil, fmt.Errorf("%w: vector has %d values, models expect %d", core.ErrSchemaMismatch, len(x), len(a.FeatureNames))
	}
	for j, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, core.NewNonFiniteError(0, a.FeatureNames[j])
		}
	}
	return x, warnings, nil
}

func checkArtifacts(a *Artifacts) error {
	if a == nil || a.Extractor == nil || len(a.Models) == 0 {
		return core.ErrNotTrained
	}
	schema := core.ComputeSchemaHash(a.FeatureNames)
	for _, m := range a.Models {
		if m.Classifier == nil || !m.Classifier.IsFitted() {
			return fmt.Errorf("%w: %s is not fitted", core.ErrNotTrained, m.Name)
		}
		if m.ExtractorFitID != a.Extractor.FitID {
			return fmt.Errorf("%w: %s was trained with extractor %s, have %s",
				core.ErrExtractorMismatch, m.Name, m.ExtractorFitID, a.Extractor.FitID)
		}
		if m.SchemaHash != schema {
			return fmt.Errorf("%w: %s", core.ErrSchemaMismatch, m.Name)
		}
	}
	return nil
}
