package excel

// RawRowData represents a row of raw spreadsheet data as header -> cell text
type RawRowData map[string]string

// ExcelData represents one sheet read from a workbook or CSV file
type ExcelData struct {
	Sheet   string       // sheet the rows came from, "" for CSV
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}
