package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// CSVWriter writes an export as CSV.
type CSVWriter struct {
	path string
	f    *os.File
	w    *csv.Writer
}

// NewCSVWriter creates path, truncating any existing file.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create %s: %w", path, err)
	}
	return &CSVWriter{path: path, f: f, w: csv.NewWriter(f)}, nil
}

func (c *CSVWriter) WriteHeader(headers []string) error {
	if err := c.w.Write(headers); err != nil {
		return fmt.Errorf("csv: write %s: %w", c.path, err)
	}
	return nil
}

func (c *CSVWriter) WriteRow(cells []any) error {
	record := make([]string, len(cells))
	for i, cell := range cells {
		record[i] = formatCell(cell)
	}
	if err := c.w.Write(record); err != nil {
		return fmt.Errorf("csv: write %s: %w", c.path, err)
	}
	return nil
}

func (c *CSVWriter) Close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.f.Close() //nolint:errcheck
		return fmt.Errorf("csv: flush %s: %w", c.path, err)
	}
	if err := c.f.Close(); err != nil {
		return fmt.Errorf("csv: close %s: %w", c.path, err)
	}
	return nil
}

func formatCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
