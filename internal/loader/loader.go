// Package loader reads water-quality tables from CSV and XLSX files.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/hmpi/schema"
	"github.com/xuri/excelize/v2"
)

// Loader errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyTable        = errors.New("file has no header row")
)

// Supported file extensions.
const (
	csvExt  = ".csv"
	xlsxExt = ".xlsx"
	xlsExt  = ".xls"
)

// Load reads a table from path, choosing the reader by file extension.
// Workbooks are read from their first sheet.
func Load(path string) (schema.RawTable, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case csvExt:
		f, err := os.Open(path)
		if err != nil {
			return schema.RawTable{}, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		return ReadCSV(f, path)
	case xlsxExt:
		return ReadXLSX(path)
	case xlsExt:
		return schema.RawTable{}, fmt.Errorf("%w: legacy .xls workbooks are not supported, save %s as .xlsx or .csv", ErrUnsupportedFormat, filepath.Base(path))
	default:
		return schema.RawTable{}, fmt.Errorf("%w: %q (expected .csv or .xlsx)", ErrUnsupportedFormat, ext)
	}
}

// ReadCSV reads a CSV table. Rows may have a varying number of fields.
func ReadCSV(r io.Reader, source string) (schema.RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return schema.RawTable{}, fmt.Errorf("failed to read CSV %s: %w", source, err)
	}
	return newTable(source, records)
}

// ReadXLSX reads the first sheet of an XLSX workbook.
func ReadXLSX(path string) (schema.RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return schema.RawTable{}, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return schema.RawTable{}, fmt.Errorf("%w: %s has no sheets", ErrEmptyTable, path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return schema.RawTable{}, fmt.Errorf("failed to read sheet %q of %s: %w", sheets[0], path, err)
	}
	return newTable(path, rows)
}

// newTable splits raw records into headers and rows. Rows are padded to the
// header width and blank rows are dropped.
func newTable(source string, records [][]string) (schema.RawTable, error) {
	if len(records) == 0 {
		return schema.RawTable{}, fmt.Errorf("%w: %s", ErrEmptyTable, source)
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		row := make([]string, max(len(headers), len(rec)))
		copy(row, rec)
		rows = append(rows, row)
	}

	return schema.RawTable{Source: source, Headers: headers, Rows: rows}, nil
}

// isBlank reports whether every cell of a record is empty.
func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
