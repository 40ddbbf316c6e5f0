package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyml/domain/core"
	"surveyml/domain/survey"
)

var surveyHeaders = []string{
	"回答者ID",
	"総合評価：自分の親しい友人や家族に対して、この会社への転職・就職をどの程度勧めたいと思いますか？",
	"総合満足度：自社の現在の働く環境や条件、周りの人間関係なども含めあなたはどの程度満足されていますか？",
	"あなたはこの会社でこれからも長く働きたいと思われますか？",
	"活躍貢献度：現在の会社や所属組織であなたはどの程度、活躍貢献できていると感じますか？",
	"満足度が高い項目について具体的に教えてください",
	"満足度が低い項目について具体的に教えてください",
	"人間関係が良好な環境について（1: 満足していない 5: 満足している）",
}

func writeSurvey(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "survey.xlsx")
	require.NoError(t, WriteRows(path, "Responses", surveyHeaders, rows))
	return path
}

func sampleRows() [][]interface{} {
	return [][]interface{}{
		{"a1", 8, "4（満足）", 5, 4, "チームの雰囲気が良い", "", "5"},
		{"a2", 2, "1（不満）", 2, 3, "", "残業が多く負担が大きい", "2"},
		{"a3", 6, "３", nil, 3, "裁量がある", "給与が低い", "3"},
	}
}

func TestSource_MapsJapaneseHeaders(t *testing.T) {
	cfg := DefaultExcelConfig()
	cfg.FilePath = writeSurvey(t, sampleRows())

	ds, warnings, err := NewSource(cfg).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Equal(t, 3, ds.Len())

	assert.Equal(t, survey.DefaultNumericFields(), ds.NumericFields)
	assert.Equal(t, survey.FieldOverallSatisfaction, ds.SatisfactionField)
	assert.Equal(t, "a2", ds.Records[1].ID)
	assert.Equal(t, "1（不満）", ds.Records[1].Score(survey.FieldOverallSatisfaction))
	assert.Equal(t, "8", ds.Records[0].Score(survey.FieldRecommendScore))
	assert.Nil(t, ds.Records[2].Score(survey.FieldLongTermIntention))

	assert.Equal(t, []string{"チームの雰囲気が良い", "残業が多く負担が大きい", "裁量がある 給与が低い"}, ds.Comments())
	assert.Contains(t, NewSource(cfg).Name(), "survey.xlsx")
}

func TestSource_ItemsAreOptIn(t *testing.T) {
	cfg := DefaultExcelConfig()
	cfg.FilePath = writeSurvey(t, sampleRows())
	cfg.Mapper.IncludeItems = true

	ds, _, err := NewSource(cfg).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, append(survey.DefaultNumericFields(), "relationships_satisfaction"), ds.NumericFields)
	assert.Equal(t, "2", ds.Records[1].Score("relationships_satisfaction"))
}

func TestSource_HeaderRowAndSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titled.xlsx")
	rows := append([][]interface{}{}, sampleRows()...)
	header := make([]interface{}, len(surveyHeaders))
	for i, h := range surveyHeaders {
		header[i] = h
	}
	rows = append([][]interface{}{header}, rows...)
	require.NoError(t, WriteRows(path, "Responses", []string{"従業員調査 2024"}, rows))

	cfg := DefaultExcelConfig()
	cfg.FilePath = path
	cfg.Sheet = "Responses"
	cfg.HeaderRow = 2

	ds, warnings, err := NewSource(cfg).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 3, ds.Len())

	cfg.Sheet = "Missing"
	_, _, err = NewSource(cfg).Load(context.Background())
	assert.Error(t, err)
}

func TestSource_MissingColumnsWarn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.xlsx")
	require.NoError(t, WriteRows(path, "", []string{"overall_satisfaction", "備考"}, [][]interface{}{
		{3, "特になし"},
		{1, ""},
	}))

	cfg := DefaultExcelConfig()
	cfg.FilePath = path
	ds, warnings, err := NewSource(cfg).Load(context.Background())
	require.NoError(t, err)

	missing := map[interface{}]bool{}
	for _, w := range warnings {
		assert.Equal(t, core.WarnColumnMissing, w.Code)
		missing[w.Details["field"]] = true
	}
	assert.Len(t, missing, 4)
	assert.True(t, missing[survey.FieldRecommendScore])
	assert.True(t, missing[survey.FieldComment])
	assert.Equal(t, "3", ds.Records[0].Score(survey.FieldOverallSatisfaction))
	assert.Equal(t, "", ds.Records[0].Comment(survey.FieldComment))
}

func TestSource_Errors(t *testing.T) {
	cfg := DefaultExcelConfig()
	cfg.FilePath = filepath.Join(t.TempDir(), "absent.xlsx")
	_, _, err := NewSource(cfg).Load(context.Background())
	assert.Error(t, err)

	cfg.FilePath = writeSurvey(t, nil)
	_, _, err = NewSource(cfg).Load(context.Background())
	assert.ErrorIs(t, err, core.ErrInsufficientData)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = NewSource(cfg).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDataReader_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.csv")
	content := "\ufeffid,overall_satisfaction,,comment,comment\n" +
		"r1,5,x,良い,とても\n" +
		",,,,\n" +
		"r2,2,y,不満\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	data, err := NewDataReader(path, "", 1).ReadData()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "overall_satisfaction", "C", "comment", "comment.1"}, data.Headers)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "不満", data.Rows[1]["comment"])

	id, err := NewDataReader(path, "", 1).DetectEntityColumn(data)
	require.NoError(t, err)
	assert.Equal(t, "id", id)

	ds, mapping, _ := NewSurveyMapper(DefaultMapperConfig()).Map(data, id, "csv")
	assert.Equal(t, []string{"comment"}, mapping.Text)
	assert.Equal(t, "r1", ds.Records[0].ID)
	assert.Equal(t, "良い", ds.Records[0].Comment(survey.FieldComment))
}

func TestWriteDataset_RoundTrip(t *testing.T) {
	ds := &survey.Dataset{
		NumericFields: survey.DefaultNumericFields(),
		TextFields:    []string{survey.FieldComment},
		Records: []survey.Record{
			{ID: "x1", Scores: map[string]interface{}{survey.FieldOverallSatisfaction: 2}, Comments: map[string]string{survey.FieldComment: "残業 多い"}},
		},
	}
	path := filepath.Join(t.TempDir(), "demo.xlsx")
	require.NoError(t, WriteDataset(path, "Responses", ds))

	cfg := DefaultExcelConfig()
	cfg.FilePath = path
	loaded, _, err := NewSource(cfg).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Len())
	assert.Equal(t, "x1", loaded.Records[0].ID)
	assert.Equal(t, "2", loaded.Records[0].Score(survey.FieldOverallSatisfaction))
	assert.Equal(t, "残業 多い", loaded.Records[0].Comment(survey.FieldComment))
}
