package app

import (
	"context"
	"fmt"
	"time"

	"surveyml/adapters/datareadiness/coercer"
	"surveyml/adapters/rng"
	"surveyml/adapters/textfeatures"
	"surveyml/domain/core"
	"surveyml/domain/model"
	"surveyml/domain/survey"
	"surveyml/internal"
	"surveyml/ports"
)

// Artifacts bundles everything one training run produced. Inference and reporting read
// it; nothing mutates it after Train returns.
type Artifacts struct {
	RunID        core.RunID               `json:"run_id"`
	CreatedAt    time.Time                `json:"created_at"`
	Config       model.PipelineConfig     `json:"config"`
	Source       string                   `json:"source"`
	Tokenizer    string                   `json:"tokenizer"`
	Extractor    *textfeatures.Extractor  `json:"-"`
	Numeric      NumericSchema            `json:"numeric"`
	TextFields   []string                 `json:"text_fields"`
	FeatureNames []string                 `json:"feature_names"`
	Schema       core.SchemaHash          `json:"schema"`
	Matrix       *model.FeatureMatrix     `json:"-"`
	Models       []*TrainedModel          `json:"-"`
	Reports      []model.EvaluationReport `json:"reports"`
	Failures     []model.FailedModel      `json:"failures,omitempty"`
	Labels       *survey.LabeledDataset   `json:"labels"`
	Split        Split                    `json:"split"`
	Warnings     []core.Warning           `json:"warnings,omitempty"`
	Timings      []StageTiming            `json:"timings"`
}

// Model returns the trained model with the given name.
func (a *Artifacts) Model(name model.ModelName) (*TrainedModel, bool) {
	for _, m := range a.Models {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Report returns the evaluation report of the named model.
func (a *Artifacts) Report(name model.ModelName) (model.EvaluationReport, bool) {
	for _, r := range a.Reports {
		if r.Model == name {
			return r, true
		}
	}
	return model.EvaluationReport{}, false
}

// Record returns training record i.
func (a *Artifacts) Record(i int) (survey.Record, error) {
	if a.Labels == nil || i < 0 || i >= a.Labels.Dataset.Len() {
		return survey.Record{}, fmt.Errorf("%w: row %d out of range", core.ErrPrecondition, i)
	}
	return a.Labels.Dataset.Records[i], nil
}

// Summary is the model comparison shown on dashboards.
type Summary struct {
	RunID          core.RunID               `json:"run_id"`
	Source         string                   `json:"source"`
	Tokenizer      string                   `json:"tokenizer"`
	Records        int                      `json:"records"`
	Positives      int                      `json:"positives"`
	Threshold      float64                  `json:"threshold"`
	NumericColumns int                      `json:"numeric_columns"`
	TextColumns    int                      `json:"text_columns"`
	Reports        []model.EvaluationReport `json:"reports"`
	Failures       []model.FailedModel      `json:"failures,omitempty"`
	BestModel      model.ModelName          `json:"best_model"`
	Warnings       []core.Warning           `json:"warnings,omitempty"`
}

// PipelineService runs label, extract, assemble and train, and serves inference and
// reporting over the resulting artifacts.
type PipelineService struct {
	config            model.PipelineConfig
	tokenizer         ports.Tokenizer
	tokenizerWarnings []core.Warning
	families          []Family
	coercer           *coercer.TypeCoercer
	assembler         *Assembler
	predictor         *Predictor
	ranker            *ImportanceRanker
	insights          *InsightsAnalyzer
	logger            *internal.Logger
}

// NewPipelineService creates a pipeline. tokenizerWarnings are the ones reported when the
// tokenizer was selected; they are attached to every run. With no families the defaults
// are trained.
func NewPipelineService(config model.PipelineConfig, tok ports.Tokenizer, tokenizerWarnings []core.Warning, families ...Family) *PipelineService {
	c := coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())
	assembler := NewAssembler(c)
	return &PipelineService{
		config:            config,
		tokenizer:         tok,
		tokenizerWarnings: tokenizerWarnings,
		families:          families,
		coercer:           c,
		assembler:         assembler,
		predictor:         NewPredictor(assembler),
		ranker:            NewImportanceRanker(config.StopList),
		insights:          NewInsightsAnalyzer(config.Insights),
		logger:            internal.DefaultLogger,
	}
}

// Config returns the pipeline configuration
func (s *PipelineService) Config() model.PipelineConfig {
	return s.config
}

// Train runs the full pipeline on ds. Cancellation is honoured between stages.
func (s *PipelineService) Train(ctx context.Context, ds *survey.Dataset) (*Artifacts, error) {
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, core.NewStageError(core.StageIngest, core.NewInsufficientDataError("records", 0, 1))
	}

	runner := NewStageRunner(s.logger)
	a := &Artifacts{
		RunID:      core.NewRunID(),
		CreatedAt:  time.Now(),
		Config:     s.config,
		Source:     ds.Source,
		Tokenizer:  s.tokenizer.Name(),
		TextFields: append([]string(nil), ds.TextFields...),
		Warnings:   append([]core.Warning(nil), s.tokenizerWarnings...),
	}
	s.logger.Info("[Pipeline] run %s: %d records from %s", a.RunID, ds.Len(), ds.Source)

	err := runner.Run(ctx, core.StageLabel, func() error {
		labels, warnings, err := NewLabelDeriver(s.config.Training.LowFraction, s.coercer).Label(ds)
		if err != nil {
			return err
		}
		a.Labels = labels
		a.Warnings = append(a.Warnings, warnings...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var textRows [][]float64
	err = runner.Run(ctx, core.StageExtract, func() error {
		vectorizer := textfeatures.NewVectorizer(s.config.Features, s.tokenizer)
		extractor, rows, warnings, err := vectorizer.FitTransform(ds.Comments())
		if err != nil {
			return err
		}
		a.Extractor = extractor
		a.Warnings = append(a.Warnings, warnings...)
		textRows = rows
		return nil
	})
	if err != nil {
		return nil, err
	}

	var fm *model.FeatureMatrix
	err = runner.Run(ctx, core.StageAssemble, func() error {
		block, warnings := s.assembler.FitNumeric(ds)
		a.Warnings = append(a.Warnings, warnings...)
		a.Numeric = block.Schema

		var err error
		fm, err = s.assembler.Assemble(block.Rows, block.Schema.Columns, textRows, a.Extractor.Columns())
		return err
	})
	if err != nil {
		return nil, err
	}
	a.Matrix = fm
	a.FeatureNames = fm.Columns
	a.Schema = fm.Schema()

	err = runner.Run(ctx, core.StageTrain, func() error {
		trainer := NewEnsembleTrainer(s.config.Models, s.config.Training, rng.NewSeededRNG(s.config.Training.Seed), s.families...)
		result, err := trainer.Train(ctx, fm, a.Labels.Labels, a.Extractor.FitID)
		if result != nil {
			a.Warnings = append(a.Warnings, result.Warnings...)
			a.Failures = result.Failures
		}
		if err != nil {
			return err
		}
		a.Models = result.Models
		a.Reports = result.Reports
		a.Split = result.Split
		return nil
	})
	a.Timings = runner.Timings()
	if err != nil {
		return nil, err
	}

	s.logger.Info("[Pipeline] run %s: %d models trained, %d failed, %d warnings",
		a.RunID, len(a.Models), len(a.Failures), len(a.Warnings))
	return a, nil
}

// Predict classifies one record with every model of a.
func (s *PipelineService) Predict(ctx context.Context, a *Artifacts, rec survey.Record) (*model.PredictionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := s.predictor.Predict(a, rec)
	if err != nil {
		return nil, core.NewStageError(core.StagePredict, err)
	}
	return result, nil
}

// Importance ranks every model's features. topN <= 0 uses the configured default.
func (s *PipelineService) Importance(a *Artifacts, topN int) ([]ModelImportance, error) {
	if topN <= 0 {
		topN = s.config.TopN
	}
	ranked, err := s.ranker.RankAll(a, topN)
	if err != nil {
		return nil, core.NewStageError(core.StageRank, err)
	}
	return ranked, nil
}

// Insights compares comment length, sentiment balance and frequent keywords between the
// low-satisfaction group and the rest of the training data of a.
func (s *PipelineService) Insights(a *Artifacts) (*CommentInsights, error) {
	out, err := s.insights.Analyze(a)
	if err != nil {
		return nil, core.NewStageError(core.StageInsights, err)
	}
	return out, nil
}

// Summary returns the model comparison for a. The best model has the highest test
// accuracy, ties going to the later family.
func (s *PipelineService) Summary(a *Artifacts) (*Summary, error) {
	if a == nil || len(a.Models) == 0 {
		return nil, core.ErrNotTrained
	}
	sum := &Summary{
		RunID:          a.RunID,
		Source:         a.Source,
		Tokenizer:      a.Tokenizer,
		Records:        a.Labels.Dataset.Len(),
		Positives:      a.Labels.Positives,
		Threshold:      a.Labels.Threshold,
		NumericColumns: len(a.Numeric.Columns),
		TextColumns:    a.Extractor.Len(),
		Reports:        a.Reports,
		Failures:       a.Failures,
		Warnings:       a.Warnings,
	}
	best := -1.0
	for _, name := range model.FamilyOrder {
		if r, ok := a.Report(name); ok && r.TestAccuracy >= best {
			best = r.TestAccuracy
			sum.BestModel = name
		}
	}
	return sum, nil
}
