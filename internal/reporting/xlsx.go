package reporting

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet that holds exported results.
const SheetName = "Alloys"

// XLSXWriter streams an export into an Excel workbook. Rows are buffered by
// excelize's stream writer and the file is written on Close.
type XLSXWriter struct {
	path string
	f    *excelize.File
	sw   *excelize.StreamWriter
	row  int
}

// NewXLSXWriter prepares a workbook that Close saves to path.
func NewXLSXWriter(path string) (*XLSXWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close() //nolint:errcheck
		return nil, fmt.Errorf("xlsx: %s: %w", path, err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		f.Close() //nolint:errcheck
		return nil, fmt.Errorf("xlsx: %s: %w", path, err)
	}
	return &XLSXWriter{path: path, f: f, sw: sw}, nil
}

func (x *XLSXWriter) WriteHeader(headers []string) error {
	cells := make([]any, len(headers))
	for i, h := range headers {
		cells[i] = h
	}
	return x.WriteRow(cells)
}

func (x *XLSXWriter) WriteRow(cells []any) error {
	x.row++
	cell, err := excelize.CoordinatesToCellName(1, x.row)
	if err != nil {
		return fmt.Errorf("xlsx: %s: %w", x.path, err)
	}
	if err := x.sw.SetRow(cell, cells); err != nil {
		return fmt.Errorf("xlsx: write %s row %d: %w", x.path, x.row, err)
	}
	return nil
}

func (x *XLSXWriter) Close() error {
	defer x.f.Close() //nolint:errcheck
	if err := x.sw.Flush(); err != nil {
		return fmt.Errorf("xlsx: flush %s: %w", x.path, err)
	}
	if err := x.f.SaveAs(x.path); err != nil {
		return fmt.Errorf("xlsx: save %s: %w", x.path, err)
	}
	return nil
}
