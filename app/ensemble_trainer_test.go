package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"surveyml/adapters/rng"
	"surveyml/domain/core"
	"surveyml/domain/model"
)

// separableMatrix has the satisfaction score in column 0 and an unrelated toggle in
// column 1; label 1 is exactly score == 1.
func separableMatrix(n int) (*model.FeatureMatrix, []int) {
	data := make([]float64, 0, n*2)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		score := float64(i%5 + 1)
		data = append(data, score, float64(i%2))
		if score == 1 {
			y[i] = 1
		}
	}
	return &model.FeatureMatrix{
		Data:           mat.NewDense(n, 2, data),
		Columns:        []string{"overall_satisfaction", "word_残業"},
		NumericColumns: 1,
	}, y
}

func newTrainer(families ...Family) *EnsembleTrainer {
	cfg := smallConfig()
	return NewEnsembleTrainer(cfg.Models, cfg.Training, rng.NewSeededRNG(42), families...)
}

func TestEnsembleTrainer_TrainsEveryFamily(t *testing.T) {
	fm, y := separableMatrix(150)
	fitID := core.NewFitID()

	result, err := newTrainer().Train(context.Background(), fm, y, fitID)
	require.NoError(t, err)
	require.Len(t, result.Models, 3)
	assert.Empty(t, result.Failures)
	assert.Len(t, result.Split.Test, 45)

	for i, name := range model.FamilyOrder {
		m, ok := result.Model(name)
		require.True(t, ok, "missing %s", name)
		assert.Equal(t, fitID, m.ExtractorFitID)
		assert.Equal(t, fm.Schema(), m.SchemaHash)

		report := result.Reports[i]
		assert.Equal(t, name, report.Model)
		assert.Greater(t, report.TrainAccuracy, 0.8, "%s train accuracy", name)
		assert.Greater(t, report.TestAccuracy, 0.8, "%s test accuracy", name)
		assert.Equal(t, 3, report.CVFolds)
		assert.Len(t, report.CVScores, 3)
		assert.Equal(t, 105, report.TrainRows)
	}
}

func TestEnsembleTrainer_IsolatesFailures(t *testing.T) {
	fm, y := separableMatrix(60)

	families := []Family{
		{Name: model.DecisionTree, New: DefaultFamilies()[0].New},
		failingFamily(model.RandomForest),
		panickingFamily(model.GradientBoosting),
	}
	result, err := newTrainer(families...).Train(context.Background(), fm, y, core.NewFitID())
	require.NoError(t, err)

	require.Len(t, result.Models, 1)
	assert.Equal(t, model.DecisionTree, result.Models[0].Name)
	require.Len(t, result.Failures, 2)
	assert.Equal(t, model.RandomForest, result.Failures[0].Model)
	assert.Contains(t, result.Failures[0].Err, "solver diverged")
	assert.Equal(t, model.GradientBoosting, result.Failures[1].Model)
	assert.Contains(t, result.Failures[1].Err, "panic")
	assert.True(t, core.HasWarning(result.Warnings, core.WarnModelFailed))
}

func TestEnsembleTrainer_NoModels(t *testing.T) {
	fm, y := separableMatrix(60)
	result, err := newTrainer(failingFamily(model.DecisionTree), panickingFamily(model.RandomForest)).
		Train(context.Background(), fm, y, core.NewFitID())

	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNoModelsTrained))
	assert.True(t, core.IsFatalError(err))
	require.NotNil(t, result)
	assert.Len(t, result.Failures, 2)
}

func TestEnsembleTrainer_Cancelled(t *testing.T) {
	fm, y := separableMatrix(60)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTrainer().Train(ctx, fm, y, core.NewFitID())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEnsembleTrainer_RowMismatch(t *testing.T) {
	fm, y := separableMatrix(20)
	_, err := newTrainer().Train(context.Background(), fm, y[:10], core.NewFitID())
	assert.True(t, errors.Is(err, core.ErrRowMismatch))
}

func TestPredictLabel(t *testing.T) {
	assert.Equal(t, 1, PredictLabel([2]float64{0.4, 0.6}))
	assert.Equal(t, 0, PredictLabel([2]float64{0.6, 0.4}))
	assert.Equal(t, 0, PredictLabel([2]float64{0.5, 0.5}))
}
