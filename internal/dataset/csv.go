// Package dataset loads tabular composition lists (CSV or XLSX) and turns
// their formula columns into compositions.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Row represents a single row with column name to value mapping.
type Row map[string]string

// Table is a loaded sheet: the header row and the data rows in file order.
type Table struct {
	Headers []string
	Rows    []Row
}

// Load reads path as CSV or XLSX by extension.
func Load(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".xlsx", ".xlsm":
		return LoadXLSX(path)
	default:
		return nil, fmt.Errorf("dataset: unsupported file type %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

// LoadCSV reads a CSV file. The first row is treated as headers.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv: %s is empty (no header row)", path)
	}
	return newTable(records[0], records[1:]), nil
}

// newTable pairs records with headers. Short records are padded with empty
// cells, which spreadsheets produce for trailing blanks.
func newTable(headers []string, records [][]string) *Table {
	t := &Table{Headers: headers, Rows: make([]Row, 0, len(records))}
	for _, record := range records {
		row := make(Row, len(headers))
		for j, h := range headers {
			if j < len(record) {
				row[h] = record[j]
			} else {
				row[h] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Range returns rows in [start, end] (1-based, inclusive). Row 1 is the
// first data row; end is clamped to the table.
func (t *Table) Range(start, end int) ([]Row, error) {
	if start < 1 {
		return nil, fmt.Errorf("dataset: range start must be >= 1, got %d", start)
	}
	if end < start {
		return nil, fmt.Errorf("dataset: range end (%d) must be >= start (%d)", end, start)
	}
	if end > len(t.Rows) {
		end = len(t.Rows)
	}
	if start > len(t.Rows) {
		return []Row{}, nil
	}
	return t.Rows[start-1 : end], nil
}
