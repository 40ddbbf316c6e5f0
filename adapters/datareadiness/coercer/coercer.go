package coercer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"surveyml/domain/core"
)

// TypeCoercer turns raw survey cells into float64 scores
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold float64 `json:"numeric_threshold"` // share of present values that must parse
	NormalizeWidth   bool    `json:"normalize_width"`   // fold full-width digits and signs
	ExtractLeading   bool    `json:"extract_leading"`   // "8（とても満足）" -> 8
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold: 0.8,
		NormalizeWidth:   true,
		ExtractLeading:   true,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

var leadingNumber = regexp.MustCompile(`^\s*([-+]?\d+(?:\.\d+)?)`)

// CoerceValue converts one cell. Missing cells (nil, blank, NaN) return NaN and no error;
// cells that hold something unparseable return NaN and an ErrNonNumeric error.
func (c *TypeCoercer) CoerceValue(rawValue interface{}) (float64, error) {
	switch v := rawValue.(type) {
	case nil:
		return math.NaN(), nil
	case float64:
		return c.finite(v, rawValue)
	case float32:
		return c.finite(float64(v), rawValue)
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case bool:
		return math.NaN(), fmt.Errorf("%w: boolean %t", core.ErrNonNumeric, v)
	case string:
		return c.parseString(v)
	default:
		return c.parseString(fmt.Sprintf("%v", v))
	}
}

func (c *TypeCoercer) finite(v float64, raw interface{}) (float64, error) {
	if math.IsNaN(v) {
		return math.NaN(), nil
	}
	if math.IsInf(v, 0) {
		return math.NaN(), fmt.Errorf("%w: %v", core.ErrNonNumeric, raw)
	}
	return v, nil
}

func (c *TypeCoercer) parseString(strVal string) (float64, error) {
	if c.config.NormalizeWidth {
		strVal = width.Narrow.String(strVal)
	}
	strVal = strings.TrimSpace(strVal)
	if strVal == "" || strings.EqualFold(strVal, "nan") || strVal == "-" {
		return math.NaN(), nil
	}

	if v, ok := tryParseNumeric(strVal); ok {
		return v, nil
	}
	if c.config.ExtractLeading {
		if m := leadingNumber.FindStringSubmatch(strVal); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return v, nil
			}
		}
	}
	return math.NaN(), fmt.Errorf("%w: %q", core.ErrNonNumeric, strVal)
}

// tryParseNumeric attempts to parse as numeric with strict rules
// Handles international formats: parentheses for negatives, European decimals, currency symbols
func tryParseNumeric(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)

	// Handle parentheses for negative numbers: (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimPrefix(cleanVal, "(")
		cleanVal = strings.TrimSuffix(cleanVal, ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "円", "USD", "EUR", "GBP", "JPY"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSuffix(strings.TrimSpace(cleanVal), "点")
	cleanVal = strings.ReplaceAll(cleanVal, "%", "")
	cleanVal = strings.TrimSpace(cleanVal)

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	// European format: period or space as thousands separator, comma as decimal
	if hasComma && (hasPeriod || hasSpace) {
		commaIdx := strings.LastIndex(cleanVal, ",")
		afterComma := cleanVal[commaIdx+1:]
		if len(afterComma) <= 2 && isAllDigits(afterComma) {
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		}
	} else if hasComma {
		// 1,234 is a thousands separator, 3,5 a decimal comma
		commaIdx := strings.LastIndex(cleanVal, ",")
		if len(cleanVal)-commaIdx-1 == 3 {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		}
	} else {
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ColumnCoercion is the outcome of coercing one column.
type ColumnCoercion struct {
	Values  []float64 `json:"-"` // NaN where missing or invalid
	Parsed  int       `json:"parsed"`
	Missing int       `json:"missing"`
	Invalid int       `json:"invalid"`
}

// Unparsed counts cells that need imputation.
func (c ColumnCoercion) Unparsed() int {
	return c.Missing + c.Invalid
}

// CoerceColumn coerces every cell of a column
func (c *TypeCoercer) CoerceColumn(values []interface{}) ColumnCoercion {
	out := ColumnCoercion{Values: make([]float64, len(values))}
	for i, raw := range values {
		v, err := c.CoerceValue(raw)
		out.Values[i] = v
		switch {
		case err != nil:
			out.Invalid++
		case math.IsNaN(v):
			out.Missing++
		default:
			out.Parsed++
		}
	}
	return out
}

// AnalyzeTypeDistribution reports whether a column is predominantly numeric
func (c *TypeCoercer) AnalyzeTypeDistribution(values []interface{}) TypeAnalysis {
	col := c.CoerceColumn(values)
	analysis := TypeAnalysis{
		TotalCount:   len(values),
		ValidCount:   col.Parsed + col.Invalid,
		NumericCount: col.Parsed,
	}
	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
	}
	analysis.IsNumeric = analysis.ValidCount > 0 && analysis.NumericRatio >= c.config.NumericThreshold
	return analysis
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount   int     `json:"total_count"`
	ValidCount   int     `json:"valid_count"`
	NumericCount int     `json:"numeric_count"`
	NumericRatio float64 `json:"numeric_ratio"`
	IsNumeric    bool    `json:"is_numeric"`
}
