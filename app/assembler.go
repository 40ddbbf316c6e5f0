package app

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"

	"surveyml/adapters/datareadiness/coercer"
	"surveyml/domain/core"
	"surveyml/domain/model"
	"surveyml/domain/survey"
	"surveyml/internal"
)

// NumericSchema is the numeric column layout and the training means used to fill gaps.
type NumericSchema struct {
	Columns []string  `json:"columns"`
	Means   []float64 `json:"means"`
}

// NumericBlock is the coerced numeric part of a training matrix, one row per record.
type NumericBlock struct {
	Schema NumericSchema
	Rows   [][]float64
}

// Assembler coerces numeric survey columns and joins them with text features.
type Assembler struct {
	coercer *coercer.TypeCoercer
	logger  *internal.Logger
}

// NewAssembler creates an assembler using c for cell coercion
func NewAssembler(c *coercer.TypeCoercer) *Assembler {
	return &Assembler{coercer: c, logger: internal.DefaultLogger}
}

// FitNumeric coerces every numeric field of ds and fills unparsed cells with the column
// mean, or 0 when the column has no parseable value at all.
func (a *Assembler) FitNumeric(ds *survey.Dataset) (*NumericBlock, []core.Warning) {
	n := ds.Len()
	block := &NumericBlock{
		Schema: NumericSchema{
			Columns: append([]string(nil), ds.NumericFields...),
			Means:   make([]float64, len(ds.NumericFields)),
		},
		Rows: make([][]float64, n),
	}
	for i := range block.Rows {
		block.Rows[i] = make([]float64, len(ds.NumericFields))
	}

	var warnings []core.Warning
	for j, field := range ds.NumericFields {
		col := a.coercer.CoerceColumn(ds.Column(field))

		parsed := make(stats.Float64Data, 0, col.Parsed)
		for _, v := range col.Values {
			if !math.IsNaN(v) {
				parsed = append(parsed, v)
			}
		}

		fill := 0.0
		if len(parsed) == 0 {
			warnings = append(warnings, core.NewWarning(core.WarnColumnConstantFill, core.StageAssemble,
				"column %s has no numeric values, filled with 0", field).
				With("column", field).With("missing", col.Missing).With("invalid", col.Invalid))
			a.logger.Warn("[Assembler] column %s has no numeric values", field)
		} else {
			fill, _ = stats.Mean(parsed)
			if col.Unparsed() > 0 {
				warnings = append(warnings, core.NewWarning(core.WarnNumericImputed, core.StageAssemble,
					"column %s: %d cells imputed with mean %.3f", field, col.Unparsed(), fill).
					With("column", field).With("missing", col.Missing).With("invalid", col.Invalid))
			}
		}
		block.Schema.Means[j] = fill

		for i, v := range col.Values {
			if math.IsNaN(v) {
				v = fill
			}
			block.Rows[i][j] = v
		}
	}
	return block, warnings
}

// NumericVector coerces one record against a fitted schema, filling gaps with the
// training means.
func (a *Assembler) NumericVector(schema NumericSchema, rec survey.Record) ([]float64, []core.Warning) {
	out := make([]float64, len(schema.Columns))
	var warnings []core.Warning
	for j, field := range schema.Columns {
		v, err := a.coercer.CoerceValue(rec.Score(field))
		if err != nil || math.IsNaN(v) {
			v = schema.Means[j]
			w := core.NewWarning(core.WarnNumericImputed, core.StagePredict,
				"%s missing or non-numeric, using training mean %.3f", field, v).With("column", field)
			if err != nil {
				w = w.With("error", err.Error())
			}
			warnings = append(warnings, w)
		}
		out[j] = v
	}
	return out, warnings
}

// Assemble concatenates numeric and text rows into a dense matrix and checks that every
// cell is finite. Both blocks must have the same row count.
func (a *Assembler) Assemble(numeric [][]float64, numericCols []string, text [][]float64, textCols []string) (*model.FeatureMatrix, error) {
	if len(numeric) != len(text) {
		return nil, fmt.Errorf("%w: %d numeric rows, %d text rows", core.ErrRowMismatch, len(numeric), len(text))
	}
	n := len(numeric)
	if n == 0 {
		return nil, core.NewInsufficientDataError("feature rows", 0, 1)
	}
	k, v := len(numericCols), len(textCols)
	if k+v == 0 {
		return nil, core.ErrNoFeatures
	}

	data := make([]float64, 0, n*(k+v))
	for i := 0; i < n; i++ {
		if len(numeric[i]) != k || len(text[i]) != v {
			return nil, fmt.Errorf("%w: row %d has %d+%d values, want %d+%d",
				core.ErrRowMismatch, i, len(numeric[i]), len(text[i]), k, v)
		}
		data = append(data, numeric[i]...)
		data = append(data, text[i]...)
	}

	columns := make([]string, 0, k+v)
	columns = append(columns, numericCols...)
	columns = append(columns, textCols...)

	fm := &model.FeatureMatrix{
		Data:           mat.NewDense(n, k+v, data),
		Columns:        columns,
		NumericColumns: k,
	}
	if err := fm.CheckFinite(); err != nil {
		return nil, err
	}
	a.logger.Debug("[Assembler] feature matrix %dx%d (%d numeric, %d text)", n, k+v, k, v)
	return fm, nil
}
