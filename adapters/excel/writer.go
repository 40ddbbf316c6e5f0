package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"surveyml/domain/survey"
)

// WriteRows writes a header row and data rows to sheet of a new workbook at path
func WriteRows(path, sheet string, headers []string, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return fmt.Errorf("creating sheet %s: %w", sheet, err)
		}
		f.SetActiveSheet(idx)
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("removing default sheet: %w", err)
		}
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	return f.SaveAs(path)
}

// WriteDataset writes ds with canonical headers: id, the numeric fields, then comment
func WriteDataset(path, sheet string, ds *survey.Dataset) error {
	headers := append([]string{"id"}, ds.NumericFields...)
	headers = append(headers, survey.FieldComment)

	rows := make([][]interface{}, 0, ds.Len())
	for _, rec := range ds.Records {
		row := make([]interface{}, 0, len(headers))
		row = append(row, rec.ID)
		for _, f := range ds.NumericFields {
			row = append(row, rec.Score(f))
		}
		row = append(row, rec.CombinedComment(ds.TextFields))
		rows = append(rows, row)
	}
	return WriteRows(path, sheet, headers, rows)
}
