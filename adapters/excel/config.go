package excel

import (
	"surveyml/adapters/datareadiness/coercer"
)

// ExcelConfig holds configuration for the spreadsheet survey source
type ExcelConfig struct {
	FilePath       string                 `json:"file_path"`
	Sheet          string                 `json:"sheet"`      // "" reads the first sheet
	HeaderRow      int                    `json:"header_row"` // 1-based
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
	Mapper         MapperConfig           `json:"mapper"`
}

// DefaultExcelConfig returns sensible defaults for survey workbooks
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		HeaderRow:      1,
		CoercionConfig: coercer.DefaultCoercionConfig(),
		Mapper:         DefaultMapperConfig(),
	}
}
