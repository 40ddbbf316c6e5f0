package excel

import (
	"fmt"
	"strings"

	"surveyml/domain/core"
	"surveyml/domain/survey"
	"surveyml/internal"
)

// FieldRule maps spreadsheet headers onto a canonical field. A header matches when it
// equals Field or contains any of Patterns.
type FieldRule struct {
	Field    string   `json:"field" yaml:"field"`
	Patterns []string `json:"patterns" yaml:"patterns"`
}

// MapperConfig describes how survey questions map onto the canonical schema.
type MapperConfig struct {
	Fields       []FieldRule `json:"fields" yaml:"fields"`
	TextKeywords []string    `json:"text_keywords" yaml:"text_keywords"`
	Items        []FieldRule `json:"items" yaml:"items"`
	IncludeItems bool        `json:"include_items" yaml:"include_items"`
}

// DefaultMapperConfig returns the question wording of the employee survey.
func DefaultMapperConfig() MapperConfig {
	return MapperConfig{
		Fields: []FieldRule{
			{Field: survey.FieldRecommendScore, Patterns: []string{"総合評価", "転職・就職をどの程度勧めたい"}},
			{Field: survey.FieldOverallSatisfaction, Patterns: []string{"総合満足度"}},
			{Field: survey.FieldLongTermIntention, Patterns: []string{"長く働きたい"}},
			{Field: survey.FieldSenseOfContribution, Patterns: []string{"活躍貢献度"}},
		},
		TextKeywords: []string{"項目について", "満足度が高い", "満足度が低い", "具体的に", "教えていただけ", "期待していること"},
		Items: []FieldRule{
			{Field: "work_hours_satisfaction", Patterns: []string{"自分に合った勤務時間で働ける（1: 満足していない"}},
			{Field: "holidays_satisfaction", Patterns: []string{"休日休暇がちゃんと取れる（1: 満足していない"}},
			{Field: "paid_leave_satisfaction", Patterns: []string{"有給休暇がちゃんと取れる（1: 満足していない"}},
			{Field: "flex_work_satisfaction", Patterns: []string{"のもとで働ける（1: 満足していない"}},
			{Field: "commute_satisfaction", Patterns: []string{"自宅から適切な距離で働ける（1: 満足していない"}},
			{Field: "pride_in_work_satisfaction", Patterns: []string{"誇りやプライドを持てるような仕事内容を提供してくれる環境について（1: 満足していない"}},
			{Field: "relationships_satisfaction", Patterns: []string{"人間関係が良好な環境について（1: 満足していない"}},
			{Field: "fair_evaluation_satisfaction", Patterns: []string{"自身の行った仕事が正当に評価される体制について（1: 満足していない"}},
		},
	}
}

// SurveyMapper turns raw sheet rows into a survey dataset.
type SurveyMapper struct {
	config MapperConfig
	logger *internal.Logger
}

// NewSurveyMapper creates a mapper with the given question rules
func NewSurveyMapper(config MapperConfig) *SurveyMapper {
	return &SurveyMapper{config: config, logger: internal.DefaultLogger}
}

// ColumnMapping records which header each canonical field was read from.
type ColumnMapping struct {
	Numeric map[string]string `json:"numeric"`
	Text    []string          `json:"text"`
	ID      string            `json:"id,omitempty"`
}

// Resolve matches headers against the rules. Each header is used at most once; numeric
// fields are resolved first so free-text detection never claims a score column.
func (m *SurveyMapper) Resolve(headers []string, idColumn string) ColumnMapping {
	mapping := ColumnMapping{Numeric: make(map[string]string), ID: idColumn}
	taken := make(map[string]bool)
	if idColumn != "" {
		taken[idColumn] = true
	}

	rules := m.config.Fields
	if m.config.IncludeItems {
		rules = append(append([]FieldRule(nil), rules...), m.config.Items...)
	}
	for _, rule := range rules {
		if h, ok := matchHeader(headers, rule, taken); ok {
			mapping.Numeric[rule.Field] = h
			taken[h] = true
		}
	}

	for _, h := range headers {
		if taken[h] {
			continue
		}
		if strings.EqualFold(h, survey.FieldComment) || containsAny(h, m.config.TextKeywords) {
			mapping.Text = append(mapping.Text, h)
			taken[h] = true
		}
	}
	return mapping
}

func matchHeader(headers []string, rule FieldRule, taken map[string]bool) (string, bool) {
	for _, h := range headers {
		if !taken[h] && h == rule.Field {
			return h, true
		}
	}
	for _, h := range headers {
		if !taken[h] && containsAny(h, rule.Patterns) {
			return h, true
		}
	}
	return "", false
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// Map builds the dataset. The four core score fields are always present in the schema;
// a core field with no matching header gets a column_missing warning and blank cells.
// Free-text columns are joined per row into the comment field.
func (m *SurveyMapper) Map(data *ExcelData, idColumn, source string) (*survey.Dataset, ColumnMapping, []core.Warning) {
	mapping := m.Resolve(data.Headers, idColumn)

	ds := &survey.Dataset{
		NumericFields:     survey.DefaultNumericFields(),
		TextFields:        []string{survey.FieldComment},
		SatisfactionField: survey.FieldOverallSatisfaction,
		Source:            source,
	}

	var warnings []core.Warning
	for _, field := range ds.NumericFields {
		if _, ok := mapping.Numeric[field]; !ok {
			warnings = append(warnings, core.NewWarning(core.WarnColumnMissing, core.StageIngest,
				"no column found for %s", field).With("field", field))
			m.logger.Warn("[SurveyMapper] no column found for %s", field)
		}
	}
	if m.config.IncludeItems {
		for _, rule := range m.config.Items {
			if _, ok := mapping.Numeric[rule.Field]; ok {
				ds.NumericFields = append(ds.NumericFields, rule.Field)
			}
		}
	}
	if len(mapping.Text) == 0 {
		warnings = append(warnings, core.NewWarning(core.WarnColumnMissing, core.StageIngest,
			"no free-text columns found").With("field", survey.FieldComment))
	}

	for i, row := range data.Rows {
		rec := survey.Record{
			ID:       fmt.Sprintf("row-%d", i+1),
			Scores:   make(map[string]interface{}, len(ds.NumericFields)),
			Comments: make(map[string]string, 1),
		}
		if mapping.ID != "" && row[mapping.ID] != "" {
			rec.ID = row[mapping.ID]
		}
		for _, field := range ds.NumericFields {
			if h, ok := mapping.Numeric[field]; ok && row[h] != "" {
				rec.Scores[field] = row[h]
			}
		}
		parts := make([]string, 0, len(mapping.Text))
		for _, h := range mapping.Text {
			if v := strings.TrimSpace(row[h]); v != "" {
				parts = append(parts, v)
			}
		}
		rec.Comments[survey.FieldComment] = strings.Join(parts, " ")
		ds.Records = append(ds.Records, rec)
	}

	m.logger.Info("[SurveyMapper] mapped %d rows: %d score columns, %d text columns",
		len(ds.Records), len(mapping.Numeric), len(mapping.Text))
	return ds, mapping, warnings
}
