package survey

import "strings"

// Canonical survey fields the core understands.
const (
	FieldRecommendScore      = "recommend_score"
	FieldOverallSatisfaction = "overall_satisfaction"
	FieldLongTermIntention   = "long_term_intention"
	FieldSenseOfContribution = "sense_of_contribution"
	FieldComment             = "comment"
	FieldIsLowSatisfaction   = "is_low_satisfaction"
)

// DefaultNumericFields is the numeric column order used for training.
func DefaultNumericFields() []string {
	return []string{
		FieldRecommendScore,
		FieldOverallSatisfaction,
		FieldLongTermIntention,
		FieldSenseOfContribution,
	}
}

// Record is one respondent's row. Scores hold raw cell values; the assembler coerces them.
type Record struct {
	ID       string                 `json:"id"`
	Scores   map[string]interface{} `json:"scores"`
	Comments map[string]string      `json:"comments"`
}

// Score returns the raw value for field, or nil when absent.
func (r Record) Score(field string) interface{} {
	if r.Scores == nil {
		return nil
	}
	return r.Scores[field]
}

// Comment returns the comment for field, "" when absent.
func (r Record) Comment(field string) string {
	if r.Comments == nil {
		return ""
	}
	return r.Comments[field]
}

// CombinedComment joins the non-empty comment fields in order with a single space.
func (r Record) CombinedComment(fields []string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if c := strings.TrimSpace(r.Comment(f)); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}

// Dataset is an ordered collection of records with the fixed schema the core requires.
type Dataset struct {
	Records           []Record `json:"records"`
	NumericFields     []string `json:"numeric_fields"`
	TextFields        []string `json:"text_fields"`
	SatisfactionField string   `json:"satisfaction_field"`
	Source            string   `json:"source"`
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Comments returns the combined comment for every record, in row order.
func (d *Dataset) Comments() []string {
	out := make([]string, len(d.Records))
	for i, r := range d.Records {
		out[i] = r.CombinedComment(d.TextFields)
	}
	return out
}

// Column returns the raw values of a numeric field, in row order.
func (d *Dataset) Column(field string) []interface{} {
	out := make([]interface{}, len(d.Records))
	for i, r := range d.Records {
		out[i] = r.Score(field)
	}
	return out
}

// LabeledDataset pairs a dataset with the derived low-satisfaction label.
type LabeledDataset struct {
	Dataset   *Dataset `json:"-"`
	Labels    []int    `json:"labels"`
	Positives int      `json:"positives"`
	Threshold float64  `json:"threshold"`
}

// ClassCounts returns the number of records per label.
func (l *LabeledDataset) ClassCounts() map[int]int {
	counts := make(map[int]int, 2)
	for _, y := range l.Labels {
		counts[y]++
	}
	return counts
}
