package app

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"surveyml/adapters/tokenizer"
	"surveyml/domain/model"
	"surveyml/domain/survey"
	"surveyml/ports"
)

// stubClassifier returns fixed probabilities.
type stubClassifier struct {
	name    model.ModelName
	proba   [2]float64
	fitErr  error
	panics  bool
	fitted  bool
	columns int
}

func (s *stubClassifier) Name() model.ModelName { return s.name }

func (s *stubClassifier) Fit(X mat.Matrix, y []int) error {
	if s.panics {
		panic("index out of range")
	}
	if s.fitErr != nil {
		return s.fitErr
	}
	_, s.columns = X.Dims()
	s.fitted = true
	return nil
}

func (s *stubClassifier) PredictProba([]float64) [2]float64 { return s.proba }

func (s *stubClassifier) FeatureImportances() []float64 {
	out := make([]float64, s.columns)
	if s.columns > 0 {
		out[0] = 1
	}
	return out
}

func (s *stubClassifier) IsFitted() bool { return s.fitted }

func failingFamily(name model.ModelName) Family {
	return Family{Name: name, New: func(model.ModelConfig, ports.RNGPort) ports.Classifier {
		return &stubClassifier{name: name, fitErr: errors.New("solver diverged")}
	}}
}

func panickingFamily(name model.ModelName) Family {
	return Family{Name: name, New: func(model.ModelConfig, ports.RNGPort) ports.Classifier {
		return &stubClassifier{name: name, panics: true}
	}}
}

var (
	positiveVocab = "満足 成長 信頼 快適"
	negativeVocab = "不満 残業 負担 不安"
)

// scenarioDataset builds n records with satisfaction cycling 1..5 and comments
// alternating between two disjoint vocabularies.
func scenarioDataset(n int) *survey.Dataset {
	ds := &survey.Dataset{
		NumericFields:     survey.DefaultNumericFields(),
		TextFields:        []string{survey.FieldComment},
		SatisfactionField: survey.FieldOverallSatisfaction,
		Source:            "scenario",
	}
	for i := 0; i < n; i++ {
		comment := positiveVocab
		if i%2 == 1 {
			comment = negativeVocab
		}
		ds.Records = append(ds.Records, survey.Record{
			ID: fmt.Sprintf("r%03d", i),
			Scores: map[string]interface{}{
				survey.FieldRecommendScore:      5,
				survey.FieldOverallSatisfaction: i%5 + 1,
				survey.FieldLongTermIntention:   3,
				survey.FieldSenseOfContribution: 4,
			},
			Comments: map[string]string{survey.FieldComment: comment},
		})
	}
	return ds
}

func smallConfig() model.PipelineConfig {
	cfg := model.DefaultPipelineConfig()
	cfg.Models.ForestTrees = 10
	cfg.Models.BoostingStages = 10
	return cfg
}

func newTestPipeline(cfg model.PipelineConfig, families ...Family) *PipelineService {
	return NewPipelineService(cfg, tokenizer.NewRegexTokenizer(), nil, families...)
}
