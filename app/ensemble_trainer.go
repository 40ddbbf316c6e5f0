package app

import (
	"context"
	"fmt"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"

	"surveyml/adapters/ml"
	"surveyml/domain/core"
	"surveyml/domain/model"
	"surveyml/internal"
	"surveyml/ports"
)

// TrainedModel is a fitted classifier bound to the extractor fit and column layout it
// was trained on.
type TrainedModel struct {
	Name           model.ModelName
	Classifier     ports.Classifier
	ExtractorFitID core.FitID
	SchemaHash     core.SchemaHash
}

// Family registers a classifier constructor under its model name.
type Family struct {
	Name model.ModelName
	New  ports.ClassifierFactory
}

// DefaultFamilies returns decision tree, random forest and gradient boosting in family order.
func DefaultFamilies() []Family {
	return []Family{
		{Name: model.DecisionTree, New: ml.NewDecisionTree},
		{Name: model.RandomForest, New: ml.NewRandomForest},
		{Name: model.GradientBoosting, New: ml.NewGradientBoosting},
	}
}

// TrainingResult is everything the trainer produces for one feature matrix.
type TrainingResult struct {
	Models   []*TrainedModel          `json:"-"`
	Reports  []model.EvaluationReport `json:"reports"`
	Failures []model.FailedModel      `json:"failures,omitempty"`
	Split    Split                    `json:"split"`
	Warnings []core.Warning           `json:"warnings,omitempty"`
}

// Model returns the trained model with the given name.
func (r *TrainingResult) Model(name model.ModelName) (*TrainedModel, bool) {
	for _, m := range r.Models {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// EnsembleTrainer splits, cross-validates and fits every registered family. A family that
// fails is recorded and skipped; training fails only when no family succeeds.
type EnsembleTrainer struct {
	models   model.ModelConfig
	training model.TrainingConfig
	rngPort  ports.RNGPort
	families []Family
	logger   *internal.Logger
}

// NewEnsembleTrainer creates a trainer; with no families given it uses DefaultFamilies
func NewEnsembleTrainer(models model.ModelConfig, training model.TrainingConfig, rngPort ports.RNGPort, families ...Family) *EnsembleTrainer {
	if len(families) == 0 {
		families = DefaultFamilies()
	}
	return &EnsembleTrainer{
		models:   models,
		training: training,
		rngPort:  rngPort,
		families: families,
		logger:   internal.DefaultLogger,
	}
}

// Train fits every family on fm and labels y. fitID and the matrix schema are recorded on
// each model so inference can refuse a different extractor.
func (t *EnsembleTrainer) Train(ctx context.Context, fm *model.FeatureMatrix, y []int, fitID core.FitID) (*TrainingResult, error) {
	if fm.Rows() != len(y) {
		return nil, fmt.Errorf("%w: %d feature rows, %d labels", core.ErrRowMismatch, fm.Rows(), len(y))
	}

	split, warnings, err := StratifiedSplit(y, t.training.TestFraction, t.rngPort.Stream("split"))
	if err != nil {
		return nil, err
	}
	result := &TrainingResult{Split: split, Warnings: warnings}

	Xtrain, ytrain := selectRows(fm.Data, y, split.Train)
	Xtest, ytest := selectRows(fm.Data, y, split.Test)

	folds, foldWarnings := StratifiedKFold(ytrain, t.training.CVFolds, t.rngPort.Stream("cv"))
	result.Warnings = append(result.Warnings, foldWarnings...)

	schema := fm.Schema()
	for _, family := range t.families {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		clf, report, err := t.trainFamily(family, Xtrain, ytrain, Xtest, ytest, folds)
		if err != nil {
			t.logger.Warn("[EnsembleTrainer] %s failed: %v", family.Name, err)
			result.Failures = append(result.Failures, model.FailedModel{Model: family.Name, Err: err.Error()})
			result.Warnings = append(result.Warnings, core.NewWarning(core.WarnModelFailed, core.StageTrain,
				"%s failed: %v", family.Name, err).With("model", string(family.Name)))
			continue
		}

		t.logger.Info("[EnsembleTrainer] %s train=%.3f cv=%.3f±%.3f test=%.3f",
			family.Name, report.TrainAccuracy, report.CVMean, report.CVStd, report.TestAccuracy)
		result.Models = append(result.Models, &TrainedModel{
			Name:           family.Name,
			Classifier:     clf,
			ExtractorFitID: fitID,
			SchemaHash:     schema,
		})
		result.Reports = append(result.Reports, report)
	}

	if len(result.Models) == 0 {
		return result, fmt.Errorf("%w: %d families attempted", core.ErrNoModelsTrained, len(t.families))
	}
	return result, nil
}

// trainFamily runs cross-validation and the final fit for one family. Panics inside a
// classifier are returned as errors.
func (t *EnsembleTrainer) trainFamily(family Family, Xtrain *mat.Dense, ytrain []int, Xtest *mat.Dense, ytest []int, folds [][]int) (clf ports.Classifier, report model.EvaluationReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			clf, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	report = model.EvaluationReport{
		Model:     family.Name,
		TrainRows: len(ytrain),
		TestRows:  len(ytest),
	}

	if len(folds) >= 2 {
		scores := make(stats.Float64Data, 0, len(folds))
		for k := range folds {
			trainIdx := foldComplement(folds, k)
			Xf, yf := selectRows(Xtrain, ytrain, trainIdx)
			Xv, yv := selectRows(Xtrain, ytrain, folds[k])

			fold := family.New(t.models, t.rngPort)
			if err := fold.Fit(Xf, yf); err != nil {
				return nil, report, fmt.Errorf("cv fold %d: %w", k+1, err)
			}
			scores = append(scores, accuracy(fold, Xv, yv))
		}
		report.CVFolds = len(folds)
		report.CVScores = scores
		report.CVMean, _ = stats.Mean(scores)
		report.CVStd, _ = stats.StandardDeviationPopulation(scores)
	}

	clf = family.New(t.models, t.rngPort)
	if err := clf.Fit(Xtrain, ytrain); err != nil {
		return nil, report, err
	}
	report.TrainAccuracy = accuracy(clf, Xtrain, ytrain)
	report.TestAccuracy = accuracy(clf, Xtest, ytest)
	return clf, report, nil
}

// PredictLabel applies the 0.5 decision rule; ties go to label 0.
func PredictLabel(p [2]float64) int {
	if p[1] > p[0] {
		return 1
	}
	return 0
}

func accuracy(clf ports.Classifier, X *mat.Dense, y []int) float64 {
	if len(y) == 0 {
		return 0
	}
	correct := 0
	for i, label := range y {
		if PredictLabel(clf.PredictProba(X.RawRowView(i))) == label {
			correct++
		}
	}
	return float64(correct) / float64(len(y))
}

func foldComplement(folds [][]int, k int) []int {
	var out []int
	for j, f := range folds {
		if j != k {
			out = append(out, f...)
		}
	}
	return out
}

// selectRows copies the given rows of X and y.
func selectRows(X *mat.Dense, y []int, rows []int) (*mat.Dense, []int) {
	_, c := X.Dims()
	out := mat.NewDense(len(rows), c, nil)
	labels := make([]int, len(rows))
	for i, r := range rows {
		out.SetRow(i, X.RawRowView(r))
		labels[i] = y[r]
	}
	return out, labels
}
