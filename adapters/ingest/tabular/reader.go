// Package tabular reads CSV and xlsx files into datasets. Source formats are
// this layer's concern; the core only ever sees the resulting Dataset.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"hypolab/domain/dataset"
	apperrors "hypolab/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Table is the raw parsed file: a header row plus string cells in row order
type Table struct {
	Headers []string
	Rows    [][]string
}

// Reader handles reading xlsx and CSV files
type Reader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewReader creates a reader for the given path, picking the format from the
// file extension (".csv" is CSV, everything else is treated as xlsx).
func NewReader(filePath string) *Reader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &Reader{filePath: filePath, fileType: fileType}
}

// ReadTable parses the file into headers plus data rows
func (r *Reader) ReadTable() (*Table, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, apperrors.IngestError(fmt.Sprintf("file not found: %s", r.filePath), err)
	}

	switch r.fileType {
	case "csv":
		f, err := os.Open(r.filePath)
		if err != nil {
			return nil, apperrors.IngestError("failed to open CSV file", err)
		}
		defer f.Close()
		return ParseCSV(f)
	default:
		return r.readExcel()
	}
}

// ParseCSV reads CSV content from any reader (file upload bodies included)
func ParseCSV(src io.Reader) (*Table, error) {
	reader := csv.NewReader(src)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.IngestError("failed to parse CSV", err)
	}
	return tableFromRows(rows)
}

// ParseExcel reads xlsx content from any reader (file upload bodies included)
func ParseExcel(src io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, apperrors.IngestError("failed to parse xlsx content", err)
	}
	defer f.Close()
	return tableFromExcel(f)
}

func (r *Reader) readExcel() (*Table, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, apperrors.IngestError("failed to open xlsx file", err)
	}
	defer f.Close()
	return tableFromExcel(f)
}

func tableFromExcel(f *excelize.File) (*Table, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.IngestError("xlsx file has no sheets", nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.IngestError(fmt.Sprintf("failed to read sheet %q", sheets[0]), err)
	}
	return tableFromRows(rows)
}

func tableFromRows(rows [][]string) (*Table, error) {
	if len(rows) < 2 {
		return nil, apperrors.IngestError("file must have a header row and at least one data row", nil)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]string, len(headers))
		for j := range headers {
			if j < len(row) {
				cells[j] = strings.TrimSpace(row[j])
			}
		}
		data = append(data, cells)
	}
	return &Table{Headers: headers, Rows: data}, nil
}

// Dataset builds a Dataset from the table using the user-declared column
// types. Columns without a declaration get the inferred suggestion; the
// declaration always wins when present.
func (t *Table) Dataset(declared map[string]dataset.VarType) (*dataset.Dataset, error) {
	inferred := t.InferTypes()

	columns := make([]dataset.Column, len(t.Headers))
	for j, name := range t.Headers {
		varType, ok := declared[name]
		if !ok {
			varType = inferred[name]
		}
		raw := make([]string, len(t.Rows))
		for i, row := range t.Rows {
			raw[i] = row[j]
		}
		columns[j] = dataset.Column{Name: name, Type: varType, Raw: raw}
	}

	ds, err := dataset.New(columns)
	if err != nil {
		return nil, apperrors.IngestError("invalid tabular shape", err)
	}
	return ds, nil
}

// InferTypes suggests a variable type per column: quantitative when at least
// 90% of the non-missing cells parse as numbers, qualitative otherwise. This
// is only a default for the UI; declared types override it.
func (t *Table) InferTypes() map[string]dataset.VarType {
	types := make(map[string]dataset.VarType, len(t.Headers))
	for j, name := range t.Headers {
		numeric := 0
		present := 0
		for _, row := range t.Rows {
			cell := row[j]
			if cell == "" {
				continue
			}
			present++
			if _, err := strconv.ParseFloat(cell, 64); err == nil {
				numeric++
			}
		}
		if present > 0 && float64(numeric)/float64(present) >= 0.9 {
			types[name] = dataset.TypeQuantitative
		} else {
			types[name] = dataset.TypeQualitative
		}
	}
	return types
}
