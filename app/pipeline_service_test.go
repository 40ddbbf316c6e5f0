package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyml/domain/core"
	"surveyml/domain/model"
	"surveyml/domain/survey"
)

func TestPipeline_TrainsOnSurvey(t *testing.T) {
	svc := newTestPipeline(smallConfig())
	a, err := svc.Train(context.Background(), scenarioDataset(150))
	require.NoError(t, err)

	assert.Equal(t, 30, a.Labels.Positives)
	assert.Equal(t, 1.0, a.Labels.Threshold)
	assert.Equal(t, "regex", a.Tokenizer)
	assert.Equal(t, 8, a.Extractor.Len())
	assert.Len(t, a.FeatureNames, len(survey.DefaultNumericFields())+8)
	assert.Equal(t, core.ComputeSchemaHash(a.FeatureNames), a.Schema)
	assert.Empty(t, a.Failures)

	require.Len(t, a.Models, 3)
	for _, name := range model.FamilyOrder {
		r, ok := a.Report(name)
		require.True(t, ok, "missing report for %s", name)
		assert.Greater(t, r.TrainAccuracy, 0.8, "%s", name)
	}

	var stages []string
	for _, st := range a.Timings {
		stages = append(stages, st.Stage)
	}
	assert.Equal(t, []string{core.StageLabel, core.StageExtract, core.StageAssemble, core.StageTrain}, stages)
}

func TestPipeline_EmptyCommentsFallBackToNumeric(t *testing.T) {
	ds := scenarioDataset(50)
	for i := range ds.Records {
		ds.Records[i].Comments = map[string]string{survey.FieldComment: "  "}
	}

	a, err := newTestPipeline(smallConfig()).Train(context.Background(), ds)
	require.NoError(t, err)
	assert.True(t, core.HasWarning(a.Warnings, core.WarnEmptyVocabulary))
	assert.Equal(t, survey.DefaultNumericFields(), a.FeatureNames)
	assert.NotEmpty(t, a.Models)
}

func TestPipeline_TooFewRecords(t *testing.T) {
	_, err := newTestPipeline(smallConfig()).Train(context.Background(), scenarioDataset(4))
	require.Error(t, err)
	assert.Equal(t, core.StageLabel, core.StageOf(err))
	assert.True(t, errors.Is(err, core.ErrInsufficientData))

	_, err = newTestPipeline(smallConfig()).Train(context.Background(), &survey.Dataset{})
	assert.Equal(t, core.StageIngest, core.StageOf(err))
}

func TestPipeline_InvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Training.CVFolds = 1
	_, err := newTestPipeline(cfg).Train(context.Background(), scenarioDataset(50))
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))
}

func TestPipeline_AllFamiliesFail(t *testing.T) {
	svc := newTestPipeline(smallConfig(), failingFamily(model.DecisionTree), failingFamily(model.GradientBoosting))
	_, err := svc.Train(context.Background(), scenarioDataset(50))
	require.Error(t, err)
	assert.Equal(t, core.StageTrain, core.StageOf(err))
	assert.True(t, errors.Is(err, core.ErrNoModelsTrained))
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestPipeline(smallConfig()).Train(ctx, scenarioDataset(50))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, core.StageLabel, core.StageOf(err))
}

func TestPipeline_PredictUnknownVocabulary(t *testing.T) {
	svc := newTestPipeline(smallConfig())
	a, err := svc.Train(context.Background(), scenarioDataset(100))
	require.NoError(t, err)

	rec := survey.Record{
		Scores: map[string]interface{}{
			survey.FieldRecommendScore:      "5",
			survey.FieldOverallSatisfaction: "5",
			survey.FieldLongTermIntention:   "4",
			survey.FieldSenseOfContribution: "4",
		},
		Comments: map[string]string{survey.FieldComment: "まったく 新しい 語彙 だけ"},
	}
	res, err := svc.Predict(context.Background(), a, rec)
	require.NoError(t, err)
	assert.Len(t, res.Votes, 3)
	assert.Equal(t, 0, res.Label)
	assert.GreaterOrEqual(t, res.Confidence, 0.0)
	assert.LessOrEqual(t, res.Confidence, 1.0)
}

func TestPipeline_TrainingRowsRoundTrip(t *testing.T) {
	svc := newTestPipeline(smallConfig())
	a, err := svc.Train(context.Background(), scenarioDataset(60))
	require.NoError(t, err)
	dt, ok := a.Model(model.DecisionTree)
	require.True(t, ok)

	for _, i := range []int{0, 1, 7, 33, 59} {
		rec, err := a.Record(i)
		require.NoError(t, err)

		x, _, err := svc.predictor.Vector(a, rec)
		require.NoError(t, err)
		assert.InDeltaSlice(t, a.Matrix.Row(i), x, 1e-12, "row %d", i)

		res, err := svc.Predict(context.Background(), a, rec)
		require.NoError(t, err)
		vote, ok := res.Vote(model.DecisionTree)
		require.True(t, ok)
		assert.Equal(t, PredictLabel(dt.Classifier.PredictProba(a.Matrix.Row(i))), vote.Label)
	}

	_, err = a.Record(60)
	assert.True(t, core.IsPreconditionError(err))
}

func TestPipeline_PredictNotTrained(t *testing.T) {
	_, err := newTestPipeline(smallConfig()).Predict(context.Background(), nil, survey.Record{})
	assert.True(t, errors.Is(err, core.ErrNotTrained))
	assert.Equal(t, core.StagePredict, core.StageOf(err))
}

func TestPipeline_SummaryAndImportance(t *testing.T) {
	cfg := smallConfig()
	cfg.TopN = 3
	svc := newTestPipeline(cfg)
	a, err := svc.Train(context.Background(), scenarioDataset(100))
	require.NoError(t, err)

	sum, err := svc.Summary(a)
	require.NoError(t, err)
	assert.Equal(t, 100, sum.Records)
	assert.Equal(t, 20, sum.Positives)
	assert.Equal(t, 4, sum.NumericColumns)
	assert.Equal(t, 8, sum.TextColumns)
	assert.Len(t, sum.Reports, 3)
	assert.Contains(t, model.FamilyOrder, sum.BestModel)

	ranked, err := svc.Importance(a, 0)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	for _, mi := range ranked {
		assert.LessOrEqual(t, len(mi.Features), 3)
		require.NotEmpty(t, mi.Features, "%s", mi.Model)
		assert.Equal(t, survey.FieldOverallSatisfaction, mi.Features[0].Feature, "%s", mi.Model)
	}

	_, err = svc.Importance(nil, 5)
	assert.Equal(t, core.StageRank, core.StageOf(err))

	_, err = svc.Summary(nil)
	assert.True(t, errors.Is(err, core.ErrNotTrained))
}
