package reporting

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/mdlhea/heapp/internal/descriptor"
)

// solidSolutionLabels are the model labels that predict a single solid
// solution phase.
var solidSolutionLabels = map[string]bool{
	descriptor.PhaseSS:       true,
	descriptor.PhaseCoarseSS: true,
}

// InterpretConsensus summarizes how many applicable models predict a solid
// solution.
func InterpretConsensus(ds descriptor.DescriptorSet) string {
	applicable, ss := 0, 0
	for _, m := range ds.Models() {
		if !m.Applicable() {
			continue
		}
		applicable++
		if solidSolutionLabels[m.Class()] {
			ss++
		}
	}
	switch {
	case applicable == 0:
		return "No model could be applied."
	case ss == applicable:
		return fmt.Sprintf("All %d applicable models predict a solid solution.", applicable)
	case ss == 0:
		return fmt.Sprintf("None of the %d applicable models predicts a solid solution.", applicable)
	case 2*ss > applicable:
		return fmt.Sprintf("Most models (%d of %d) predict a solid solution.", ss, applicable)
	default:
		return fmt.Sprintf("Only %d of %d applicable models predict a solid solution.", ss, applicable)
	}
}

// InterpretAcceptance explains how many compositions passed the restrictions.
func InterpretAcceptance(accepted, processed int) string {
	if processed == 0 {
		return "No compositions were processed."
	}
	pct := 100 * float64(accepted) / float64(processed)
	switch {
	case accepted == processed:
		return fmt.Sprintf("All %d compositions met the restrictions.", processed)
	case accepted == 0:
		return fmt.Sprintf("None of the %d compositions met the restrictions.", processed)
	default:
		return fmt.Sprintf("%d of %d compositions (%.1f%%) met the restrictions.", accepted, processed, pct)
	}
}

// FormatDescriptorReport renders one alloy's descriptors as aligned
// "name: value" lines followed by the consensus line.
func FormatDescriptorReport(r descriptor.AlloyResult) string {
	var b strings.Builder
	cells := Cells(r)
	hs := Headers()
	width := 0
	for _, h := range hs[1:] {
		width = max(width, runewidth.StringWidth(h))
	}
	fmt.Fprintf(&b, "%s\n", r.Name)
	for i := 1; i < len(hs); i++ {
		fmt.Fprintf(&b, "  %s  %s\n", padRight(hs[i], width), cells[i])
	}
	fmt.Fprintf(&b, "\n%s\n", InterpretConsensus(r.Descriptors))
	return b.String()
}
