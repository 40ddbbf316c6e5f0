package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"surveyml/adapters/datareadiness/coercer"
	"surveyml/internal"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath  string
	fileType  string // "xlsx" or "csv"
	sheet     string
	headerRow int
	logger    *internal.Logger
}

// NewDataReader creates a reader for path. An empty sheet reads the first sheet of a
// workbook; headerRow is 1-based and rows above it are skipped.
func NewDataReader(filePath, sheet string, headerRow int) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	if headerRow < 1 {
		headerRow = 1
	}
	return &DataReader{
		filePath:  filePath,
		fileType:  fileType,
		sheet:     sheet,
		headerRow: headerRow,
		logger:    internal.DefaultLogger,
	}
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*ExcelData, error) {
	r.logger.Info("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// readExcelData reads the configured sheet into structured format
func (r *DataReader) readExcelData() (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()
	r.logger.Debug("[DataReader] Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	sheet := r.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", r.filePath)
		}
		sheet = sheets[0]
	}

	readStart := time.Now()
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	r.logger.Debug("[DataReader] sheet %s read in %.2fms (%d rows)", sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	data, err := r.processRows(rows)
	if err != nil {
		return nil, err
	}
	data.Sheet = sheet
	return data, nil
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*ExcelData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	r.logger.Debug("[DataReader] CSV file read (%d rows)", len(rows))
	return r.processRows(rows)
}

// processRows converts raw string rows into ExcelData, taking headers from the header row.
// Blank headers are named by their column letter and duplicates get a numeric suffix.
func (r *DataReader) processRows(rows [][]string) (*ExcelData, error) {
	if len(rows) < r.headerRow {
		return nil, fmt.Errorf("%s file has %d rows, header expected on row %d",
			strings.ToUpper(r.fileType), len(rows), r.headerRow)
	}

	headerRow := rows[r.headerRow-1]
	headers := make([]string, len(headerRow))
	seen := make(map[string]int, len(headerRow))
	for i, header := range headerRow {
		header = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if header == "" {
			header, _ = excelize.ColumnNumberToName(i + 1)
		}
		if n := seen[header]; n > 0 {
			seen[header]++
			header = fmt.Sprintf("%s.%d", header, n)
		} else {
			seen[header] = 1
		}
		headers[i] = header
	}

	var dataRows []RawRowData
	for i := r.headerRow; i < len(rows); i++ {
		row := rows[i]
		rowData := make(RawRowData, len(headers))
		empty := true
		for j, cell := range row {
			if j < len(headers) {
				cell = strings.TrimSpace(cell)
				rowData[headers[j]] = cell
				if cell != "" {
					empty = false
				}
			}
		}
		if empty {
			continue
		}
		dataRows = append(dataRows, rowData)
	}

	r.logger.Info("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &ExcelData{
		Headers: headers,
		Rows:    dataRows,
	}, nil
}

// DetectEntityColumn finds a respondent id column: a common id header with mostly unique,
// non-empty values.
func (r *DataReader) DetectEntityColumn(data *ExcelData) (string, error) {
	if len(data.Rows) == 0 {
		return "", fmt.Errorf("no data rows found")
	}

	commonEntityColumns := []string{
		"id",
		"respondent_id",
		"response_id",
		"employee_id",
		"回答者id",
		"回答id",
		"社員番号",
	}

	for _, colName := range commonEntityColumns {
		for _, header := range data.Headers {
			if strings.ToLower(header) == colName && r.isValidEntityColumn(data, header) {
				return header, nil
			}
		}
	}
	return "", fmt.Errorf("could not detect a valid entity column")
}

// isValidEntityColumn checks if a column is suitable as an entity column
func (r *DataReader) isValidEntityColumn(data *ExcelData, columnName string) bool {
	values := make(map[string]bool)
	emptyCount := 0

	for _, row := range data.Rows {
		if value := row[columnName]; value != "" {
			values[value] = true
		} else {
			emptyCount++
		}
	}

	totalRows := len(data.Rows)
	emptyRatio := float64(emptyCount) / float64(totalRows)
	uniqueRatio := float64(len(values)) / float64(totalRows)
	return emptyRatio < 0.5 && uniqueRatio > 0.5
}

// InferColumnTypes labels each column "numeric" or "text" from its cell values
func (r *DataReader) InferColumnTypes(data *ExcelData, c *coercer.TypeCoercer) map[string]string {
	columnTypes := make(map[string]string, len(data.Headers))
	for _, header := range data.Headers {
		values := make([]interface{}, len(data.Rows))
		for i, row := range data.Rows {
			values[i] = row[header]
		}
		if c.AnalyzeTypeDistribution(values).IsNumeric {
			columnTypes[header] = "numeric"
		} else {
			columnTypes[header] = "text"
		}
	}
	return columnTypes
}
