package dataset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mdlhea/heapp/internal/composition"
)

// FormulaKeywords are matched, case-insensitively, against header names to
// find the columns holding alloy formulas.
var FormulaKeywords = []string{"FORMULA", "IDENTIFIER", "ALLOY", "COMPOSITION"}

// Imported is one composition read from a table.
type Imported struct {
	Row         int // 1-based data row
	Formula     string
	Composition composition.Composition
}

// FormulaColumns returns the headers that look like formula columns, in
// table order.
func (t *Table) FormulaColumns() []string {
	var cols []string
	for _, h := range t.Headers {
		upper := strings.ToUpper(h)
		for _, kw := range FormulaKeywords {
			if strings.Contains(upper, kw) {
				cols = append(cols, h)
				break
			}
		}
	}
	return cols
}

// Compositions parses the first non-empty formula cell of every row and
// normalizes it to 100 atomic percent. Rows without a formula are skipped;
// unparseable formulas are all reported together.
func (t *Table) Compositions() ([]Imported, error) {
	cols := t.FormulaColumns()
	if len(cols) == 0 {
		return nil, fmt.Errorf("dataset: no formula column (headers containing %s)", strings.Join(FormulaKeywords, ", "))
	}

	var (
		out  []Imported
		errs []error
	)
	for i, row := range t.Rows {
		formula := ""
		for _, col := range cols {
			if v := strings.TrimSpace(row[col]); v != "" {
				formula = v
				break
			}
		}
		if formula == "" {
			continue
		}
		c, err := composition.ParseFormula(formula)
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", i+1, err))
			continue
		}
		out = append(out, Imported{Row: i + 1, Formula: formula, Composition: c})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// LoadCompositions loads path and parses its formula column.
func LoadCompositions(path string) ([]composition.Composition, error) {
	t, err := Load(path)
	if err != nil {
		return nil, err
	}
	imported, err := t.Compositions()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	out := make([]composition.Composition, len(imported))
	for i, im := range imported {
		out[i] = im.Composition
	}
	return out, nil
}
