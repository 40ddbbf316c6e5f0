package model

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"surveyml/domain/core"
)

// TextFeaturePrefix marks vocabulary columns in a feature matrix.
const TextFeaturePrefix = "word_"

// FeatureMatrix is the assembled numeric + text design matrix.
type FeatureMatrix struct {
	Data           *mat.Dense
	Columns        []string
	NumericColumns int
}

// Rows returns the number of samples.
func (m *FeatureMatrix) Rows() int {
	if m == nil || m.Data == nil {
		return 0
	}
	r, _ := m.Data.Dims()
	return r
}

// Cols returns the number of features.
func (m *FeatureMatrix) Cols() int {
	return len(m.Columns)
}

// Schema fingerprints the column layout.
func (m *FeatureMatrix) Schema() core.SchemaHash {
	return core.ComputeSchemaHash(m.Columns)
}

// Row copies one sample out of the matrix.
func (m *FeatureMatrix) Row(i int) []float64 {
	return mat.Row(nil, i, m.Data)
}

// CheckFinite returns ErrNonFinite naming the first NaN or Inf cell.
func (m *FeatureMatrix) CheckFinite() error {
	r, c := m.Data.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.Data.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return core.NewNonFiniteError(i, m.Columns[j])
			}
		}
	}
	return nil
}

// KindOf classifies a column name.
func KindOf(column string) FeatureKind {
	if strings.HasPrefix(column, TextFeaturePrefix) {
		return FeatureText
	}
	return FeatureNumeric
}
