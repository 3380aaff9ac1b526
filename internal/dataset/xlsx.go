package dataset

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads the first worksheet of an Excel workbook. The first row is
// treated as headers.
func LoadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx: %s has no worksheets", path)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("xlsx: read %s: %w", path, err)
	}
	defer rows.Close() //nolint:errcheck

	var (
		headers []string
		records [][]string
	)
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("xlsx: read %s: %w", path, err)
		}
		if headers == nil {
			headers = cols
			continue
		}
		records = append(records, cols)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("xlsx: read %s: %w", path, err)
	}
	if headers == nil {
		return nil, fmt.Errorf("xlsx: %s is empty (no header row)", path)
	}
	return newTable(headers, records), nil
}
