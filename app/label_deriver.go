package app

import (
	"math"
	"sort"

	"surveyml/adapters/datareadiness/coercer"
	"surveyml/domain/core"
	"surveyml/domain/survey"
	"surveyml/internal"
)

// LabelResult is the outcome of ranking satisfaction scores.
type LabelResult struct {
	Labels    []int          `json:"labels"`
	Positives int            `json:"positives"`
	Threshold float64        `json:"threshold"`
	Missing   int            `json:"missing"`
	Warnings  []core.Warning `json:"warnings,omitempty"`
}

// DeriveLabels flags the lowest floor(fraction*N) scores as 1. Ranking is a stable
// ascending sort, so ties keep row order; NaN scores rank after every number and are never
// flagged. Zero positives is an insufficient-data failure.
func DeriveLabels(scores []float64, fraction float64) (LabelResult, error) {
	if fraction <= 0 || fraction >= 1 {
		return LabelResult{}, core.NewConfigError("low_fraction", "must be in (0, 1)")
	}

	n := len(scores)
	positives := int(math.Floor(fraction*float64(n) + 1e-9))
	if positives == 0 {
		need := int(math.Ceil(1 / fraction))
		return LabelResult{}, core.NewInsufficientDataError("labeled records", n, need)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := scores[order[a]], scores[order[b]]
		if math.IsNaN(sa) {
			return false
		}
		return math.IsNaN(sb) || sa < sb
	})

	result := LabelResult{Labels: make([]int, n), Positives: positives}
	for _, s := range scores {
		if math.IsNaN(s) {
			result.Missing++
		}
	}
	if n-result.Missing < positives {
		return LabelResult{}, core.NewInsufficientDataError("scored records", n-result.Missing, positives)
	}

	for _, i := range order[:positives] {
		result.Labels[i] = 1
	}
	result.Threshold = scores[order[positives-1]]

	if result.Missing > 0 {
		result.Warnings = append(result.Warnings, core.NewWarning(core.WarnLabelScoreMissing, core.StageLabel,
			"%d records have no satisfaction score and were ranked last", result.Missing).
			With("missing", result.Missing))
	}
	return result, nil
}

// LabelDeriver labels a dataset from its satisfaction field
type LabelDeriver struct {
	fraction float64
	coercer  *coercer.TypeCoercer
	logger   *internal.Logger
}

// NewLabelDeriver creates a deriver flagging the given bottom fraction
func NewLabelDeriver(fraction float64, c *coercer.TypeCoercer) *LabelDeriver {
	return &LabelDeriver{fraction: fraction, coercer: c, logger: internal.DefaultLogger}
}

// Label coerces the satisfaction column and derives the binary label.
func (d *LabelDeriver) Label(ds *survey.Dataset) (*survey.LabeledDataset, []core.Warning, error) {
	if ds.Len() == 0 {
		return nil, nil, core.NewInsufficientDataError("records", 0, 1)
	}
	field := ds.SatisfactionField
	if field == "" {
		field = survey.FieldOverallSatisfaction
	}

	col := d.coercer.CoerceColumn(ds.Column(field))
	result, err := DeriveLabels(col.Values, d.fraction)
	if err != nil {
		return nil, nil, err
	}
	d.logger.Info("[LabelDeriver] %d of %d records labeled low satisfaction (threshold %.2f)",
		result.Positives, ds.Len(), result.Threshold)

	return &survey.LabeledDataset{
		Dataset:   ds,
		Labels:    result.Labels,
		Positives: result.Positives,
		Threshold: result.Threshold,
	}, result.Warnings, nil
}
