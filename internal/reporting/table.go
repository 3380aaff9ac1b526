package reporting

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/mdlhea/heapp/internal/descriptor"
	"github.com/mdlhea/heapp/internal/store"
)

// ErrTooManyRows is returned by LoadTable when a store exceeds its limit.
var ErrTooManyRows = errors.New("reporting: too many results for a table")

// Cells formats r for the terminal table: six decimals, two for VEC and Tm.
func Cells(r descriptor.AlloyResult) []string {
	d := r.Descriptors
	cells := []string{
		r.Name,
		fmt.Sprintf("%.6f", d.Density),
		fmt.Sprintf("%.6f", d.Delta),
		fmt.Sprintf("%.6f", d.Gamma),
		fmt.Sprintf("%.6f", d.EnthalpyOfMixing),
		fmt.Sprintf("%.2f", d.VEC),
		fmt.Sprintf("%.6f", d.MixingEntropy),
		fmt.Sprintf("%.2f", d.MeltingTemp),
		fmt.Sprintf("%.6f", d.Omega),
		d.CrystalStructure,
	}
	for _, m := range d.Models() {
		cells = append(cells, m.String())
	}
	return cells
}

// PrintTable writes results as an aligned table. Widths are measured in
// terminal cells so subscripts and Greek headers line up.
func PrintTable(w io.Writer, results []descriptor.AlloyResult) error {
	rows := make([][]string, 0, len(results)+1)
	rows = append(rows, Headers())
	for _, r := range results {
		rows = append(rows, Cells(r))
	}

	widths := make([]int, len(headers))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var b strings.Builder
	for i, row := range rows {
		for j, cell := range row {
			if j > 0 {
				b.WriteString("  ")
			}
			if j == len(row)-1 {
				b.WriteString(cell)
			} else {
				b.WriteString(padRight(cell, widths[j]))
			}
		}
		b.WriteByte('\n')
		if i == 0 {
			for j, width := range widths {
				if j > 0 {
					b.WriteString("  ")
				}
				b.WriteString(strings.Repeat("─", width))
			}
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

// LoadTable reads a closed store into memory and deletes it. It refuses
// stores holding more than limit results and leaves them in place.
func LoadTable(storePath string, limit int) ([]descriptor.AlloyResult, error) {
	r, err := store.Open(storePath)
	if err != nil {
		return nil, err
	}

	var results []descriptor.AlloyResult
	for chunk, err := range r.Chunks(DefaultChunkSize) {
		if err != nil {
			r.Close() //nolint:errcheck
			return nil, err
		}
		results = append(results, chunk...)
		if len(results) > limit {
			r.Close() //nolint:errcheck
			return nil, fmt.Errorf("%w: more than %d", ErrTooManyRows, limit)
		}
	}
	if err := r.Close(); err != nil {
		return nil, err
	}
	if err := store.Remove(storePath); err != nil {
		return nil, err
	}
	return results, nil
}

// DefaultChunkSize is how many results are read from a store at once.
const DefaultChunkSize = 100
