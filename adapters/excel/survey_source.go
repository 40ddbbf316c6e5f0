package excel

import (
	"context"
	"fmt"

	"surveyml/domain/core"
	"surveyml/domain/survey"
)

// Source loads survey responses from a workbook or CSV file.
type Source struct {
	config ExcelConfig
	reader *DataReader
	mapper *SurveyMapper
}

// NewSource creates a spreadsheet survey source
func NewSource(config ExcelConfig) *Source {
	return &Source{
		config: config,
		reader: NewDataReader(config.FilePath, config.Sheet, config.HeaderRow),
		mapper: NewSurveyMapper(config.Mapper),
	}
}

// Name identifies the source in run metadata
func (s *Source) Name() string {
	return "excel:" + s.config.FilePath
}

// Load reads and maps the sheet.
func (s *Source) Load(ctx context.Context) (*survey.Dataset, []core.Warning, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	data, err := s.reader.ReadData()
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", s.config.FilePath, err)
	}
	if len(data.Rows) == 0 {
		return nil, nil, core.NewInsufficientDataError("survey rows", 0, 1)
	}

	idColumn, _ := s.reader.DetectEntityColumn(data)
	ds, _, warnings := s.mapper.Map(data, idColumn, s.Name())
	return ds, warnings, nil
}
