package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyml/domain/core"
	"surveyml/domain/survey"
	"surveyml/internal/migration"
)

func newTestDB(t *testing.T, table string) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migration.NewRunner(table).Run(context.Background(), db))
	return db
}

func testDataset(n int) *survey.Dataset {
	ds := &survey.Dataset{
		NumericFields: survey.DefaultNumericFields(),
		TextFields:    []string{survey.FieldComment},
	}
	for i := 0; i < n; i++ {
		rec := survey.Record{
			ID: fmt.Sprintf("r%02d", i),
			Scores: map[string]interface{}{
				survey.FieldRecommendScore:      i % 11,
				survey.FieldOverallSatisfaction: fmt.Sprintf("%d（回答）", i%5+1),
				survey.FieldSenseOfContribution: 3,
			},
			Comments: map[string]string{survey.FieldComment: "残業が多い"},
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds
}

func TestSurveyRepository_SaveLoad(t *testing.T) {
	ctx := context.Background()
	repo, err := NewSurveyRepository(newTestDB(t, "survey_responses"), "survey_responses")
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, testDataset(12)))
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	ds, warnings, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Equal(t, 12, ds.Len())
	assert.Equal(t, "database:survey_responses", ds.Source)
	assert.Equal(t, survey.DefaultNumericFields(), ds.NumericFields)

	rec := ds.Records[3]
	assert.Equal(t, "r03", rec.ID)
	assert.Equal(t, "3", rec.Score(survey.FieldRecommendScore))
	assert.Equal(t, "4（回答）", rec.Score(survey.FieldOverallSatisfaction))
	assert.Nil(t, rec.Score(survey.FieldLongTermIntention))
	assert.Equal(t, "残業が多い", rec.Comment(survey.FieldComment))
}

func TestSurveyRepository_DuplicateRollsBack(t *testing.T) {
	ctx := context.Background()
	repo, err := NewSurveyRepository(newTestDB(t, "responses"), "responses")
	require.NoError(t, err)

	ds := testDataset(3)
	ds.Records = append(ds.Records, ds.Records[0])
	require.Error(t, repo.Save(ctx, ds))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSurveyRepository_EmptyTable(t *testing.T) {
	repo, err := NewSurveyRepository(newTestDB(t, "responses"), "responses")
	require.NoError(t, err)
	_, _, err = repo.Load(context.Background())
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestSurveyRepository_RejectsTableName(t *testing.T) {
	_, err := NewSurveyRepository(nil, "responses; DROP TABLE x")
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	assert.Error(t, migration.NewRunner("bad-name").Run(context.Background(), db))
}
