package coercer

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"surveyml/domain/core"
)

func TestCoerceValue(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	tests := []struct {
		name string
		in   interface{}
		want float64
	}{
		{"int", 7, 7},
		{"int64", int64(3), 3},
		{"float", 4.5, 4.5},
		{"string", "8", 8},
		{"full width", "９", 9},
		{"full width decimal", "３．５", 3.5},
		{"spaces", "  6 ", 6},
		{"likert label", "10（非常にそう思う）", 10},
		{"likert ascii", "5: とても満足", 5},
		{"points suffix", "7点", 7},
		{"yen", "¥1,200", 1200},
		{"percent", "85%", 85},
		{"negative parens", "(12)", -12},
		{"european decimal", "1.234,56", 1234.56},
		{"decimal comma", "3,5", 3.5},
		{"thousands comma", "1,234", 1234},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.CoerceValue(tt.in)
			assert.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCoerceValue_MissingAndInvalid(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	for _, in := range []interface{}{nil, "", "   ", "NaN", math.NaN()} {
		v, err := c.CoerceValue(in)
		assert.NoError(t, err, "input %v", in)
		assert.True(t, math.IsNaN(v), "input %v", in)
	}

	for _, in := range []interface{}{"とても満足", true, math.Inf(1), "abc"} {
		v, err := c.CoerceValue(in)
		assert.True(t, errors.Is(err, core.ErrNonNumeric), "input %v", in)
		assert.True(t, math.IsNaN(v))
	}
}

func TestCoerceValue_StrictWithoutExtraction(t *testing.T) {
	c := NewTypeCoercer(CoercionConfig{NumericThreshold: 0.8})
	_, err := c.CoerceValue("5: とても満足")
	assert.Error(t, err)
	_, err = c.CoerceValue("９")
	assert.Error(t, err, "full-width digits need width folding")
}

func TestCoerceColumn_Counts(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())
	col := c.CoerceColumn([]interface{}{"1", nil, "x", 4.0, ""})

	assert.Equal(t, 2, col.Parsed)
	assert.Equal(t, 2, col.Missing)
	assert.Equal(t, 1, col.Invalid)
	assert.Equal(t, 3, col.Unparsed())
	assert.Equal(t, 1.0, col.Values[0])
	assert.True(t, math.IsNaN(col.Values[2]))
}

func TestAnalyzeTypeDistribution(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	numeric := c.AnalyzeTypeDistribution([]interface{}{"1", "2", "3", "4", "x", nil})
	assert.True(t, numeric.IsNumeric)
	assert.InDelta(t, 0.8, numeric.NumericRatio, 1e-9)

	text := c.AnalyzeTypeDistribution([]interface{}{"良い", "普通", "3"})
	assert.False(t, text.IsNumeric)

	empty := c.AnalyzeTypeDistribution([]interface{}{nil, ""})
	assert.False(t, empty.IsNumeric)
	assert.Zero(t, empty.ValidCount)
}
