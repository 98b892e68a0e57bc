package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"epmstat/domain/epm"
	"epmstat/internal"

	"github.com/xuri/excelize/v2"
)

// DataReader loads the EPM measurement table from an xlsx workbook or a csv
// export. The first column holds parameter names; every other header is a
// subject-condition label. Cells that are empty or non-numeric are treated as
// missing measurements, not errors; the strict label validation happens later
// in the dataset view.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	log      *internal.Logger
}

// NewDataReader creates a reader for the given file, dispatching on extension.
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, log: internal.DefaultLogger}
}

// ReadTable reads the measurement table.
func (r *DataReader) ReadTable() (*epm.Table, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSV()
	case "xlsx":
		return r.readExcel()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

func (r *DataReader) readExcel() (*epm.Table, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	r.log.Debug("read %d rows from %s (%s)", len(rows), r.filePath, sheets[0])
	return r.processRows(rows)
}

func (r *DataReader) readCSV() (*epm.Table, error) {
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

	r.log.Debug("read %d rows from %s", len(rows), r.filePath)
	return r.processRows(rows)
}

// processRows converts raw string rows into the parameter-keyed table.
func (r *DataReader) processRows(rows [][]string) (*epm.Table, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("input must have a header row and at least one data row")
	}

	header := rows[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("input must have a parameter column and at least one data column")
	}

	columns := make([]string, 0, len(header)-1)
	for _, label := range header[1:] {
		columns = append(columns, strings.TrimSpace(label))
	}

	table := &epm.Table{
		Columns: columns,
		Cells:   make(map[string]map[string]float64, len(rows)-1),
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 {
			continue
		}
		parameter := strings.TrimSpace(row[0])
		if parameter == "" {
			continue
		}

		cells := make(map[string]float64, len(columns))
		for j, label := range columns {
			if j+1 >= len(row) {
				break
			}
			raw := strings.TrimSpace(row[j+1])
			if raw == "" {
				continue
			}
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				r.log.Warn("non-numeric cell %s/%s: %q", parameter, label, raw)
				continue
			}
			cells[label] = value
		}

		table.Parameters = append(table.Parameters, parameter)
		table.Cells[parameter] = cells
	}

	if len(table.Parameters) == 0 {
		return nil, fmt.Errorf("no parameter rows found in %s", r.filePath)
	}
	return table, nil
}
