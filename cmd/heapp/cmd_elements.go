package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/mdlhea/heapp/internal/composition"
	"github.com/mdlhea/heapp/internal/refdata"
)

func newElementsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "elements [symbol ...]",
		Short: "List the elements in the reference data",
		Long: `List the elemental properties in the reference data. When two or more
symbols are given, the pairwise mixing enthalpies between them are printed
as well.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := a.reference()
			if err != nil {
				return err
			}
			elements := ref.Elements()
			if len(args) > 0 {
				elements = elements[:0:0]
				var missing []string
				for _, s := range args {
					e, ok := ref.Element(s)
					if !ok {
						missing = append(missing, s)
						continue
					}
					elements = append(elements, e)
				}
				if len(missing) > 0 {
					return &composition.InputError{Element: strings.Join(missing, ", "), Reason: "not in the reference data"}
				}
			}

			out := cmd.OutOrStdout()
			printElements(out, elements)
			if len(elements) > 1 && len(args) > 0 {
				fmt.Fprintln(out) //nolint:errcheck
				printPairs(out, "ΔHmix (kJ/mol)", elements, ref.Mixing())
			}
			return nil
		},
	}
}

func printElements(w io.Writer, elements []refdata.Element) {
	headers := []string{"Symbol", "Z", "Weight (g/mol)", "Radius (Å)", "Volume (cm³/mol)", "Tm (K)", "VEC"}
	rows := make([][]string, len(elements))
	for i, e := range elements {
		rows[i] = []string{
			e.Symbol,
			fmt.Sprintf("%d", e.AtomicNumber),
			formatProperty(e.AtomicWeight, 3),
			formatProperty(e.AtomicRadius, 3),
			formatProperty(e.AtomicVolume, 2),
			formatProperty(e.MeltingPoint, 1),
			formatProperty(e.NValence, 0),
		}
	}
	printGrid(w, headers, rows)
}

func printPairs(w io.Writer, title string, elements []refdata.Element, table *refdata.PairwiseTable) {
	headers := make([]string, 0, len(elements)+1)
	headers = append(headers, title)
	for _, e := range elements {
		headers = append(headers, e.Symbol)
	}
	rows := make([][]string, len(elements))
	for i, a := range elements {
		row := []string{a.Symbol}
		for _, b := range elements {
			v, ok := table.Lookup(a.Symbol, b.Symbol)
			switch {
			case a.Symbol == b.Symbol:
				row = append(row, "·")
			case ok:
				row = append(row, fmt.Sprintf("%.0f", v))
			default:
				row = append(row, "N/A")
			}
		}
		rows[i] = row
	}
	printGrid(w, headers, rows)
}

func formatProperty(v float64, prec int) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return fmt.Sprintf("%.*f", prec, v)
}

// printGrid writes left-aligned columns sized by display width.
func printGrid(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, c := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}
	line := func(cells []string) {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = runewidth.FillRight(c, widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " ")) //nolint:errcheck
	}
	line(headers)
	sep := make([]string, len(headers))
	for i := range headers {
		sep[i] = strings.Repeat("─", widths[i])
	}
	line(sep)
	for _, row := range rows {
		line(row)
	}
}
