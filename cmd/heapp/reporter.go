package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mdlhea/heapp/internal/composition"
	"github.com/mdlhea/heapp/internal/orchestration"
	"github.com/mdlhea/heapp/internal/reporting"
)

// progressReporter prints pipeline events for a human. On a terminal,
// progress lines overwrite each other; otherwise each is printed on its own
// line.
type progressReporter struct {
	w        io.Writer
	p        *message.Printer
	tty      bool
	inLine   bool
	lastWide int
}

func newProgressReporter(w io.Writer) *progressReporter {
	return &progressReporter{
		w:   w,
		p:   message.NewPrinter(language.English),
		tty: isTerminal(w),
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (r *progressReporter) onProgress(e orchestration.ProgressEvent) {
	switch e.EventType {
	case orchestration.EventGenerationComplete:
		r.println(r.p.Sprintf("Generated %d compositions", e.Total))
	case orchestration.EventCalculationStart:
		r.println(r.p.Sprintf("Calculating %d compositions...", e.Total))
	case orchestration.EventCalculationProgress:
		r.progress(r.p.Sprintf("  %d/%d processed, %d accepted, ETA %s",
			e.Processed, e.Total, e.Accepted, formatETA(e.ETASeconds)))
	case orchestration.EventCalculationDone:
		if e.State == orchestration.StateCancelled {
			r.println(r.p.Sprintf("Cancelled after %d of %d compositions", e.Processed, e.Total))
		}
	case orchestration.EventExportStart:
		r.println(fmt.Sprintf("Exporting to %s...", e.Path))
	case orchestration.EventExportProgress:
		r.progress(r.p.Sprintf("  %d/%d rows written", e.Processed, e.Total))
	case orchestration.EventExportComplete:
		r.println(r.p.Sprintf("Exported %d rows to %s", e.Processed, e.Path))
	case orchestration.EventStageFailed:
		r.println(fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err))
	}
}

func (r *progressReporter) progress(line string) {
	if !r.tty {
		fmt.Fprintln(r.w, line) //nolint:errcheck
		return
	}
	pad := ""
	if n := len(line); n < r.lastWide {
		pad = strings.Repeat(" ", r.lastWide-n)
	}
	fmt.Fprintf(r.w, "\r%s%s", line, pad) //nolint:errcheck
	r.lastWide = len(line)
	r.inLine = true
}

func (r *progressReporter) println(line string) {
	if r.inLine {
		fmt.Fprintln(r.w) //nolint:errcheck
		r.inLine = false
		r.lastWide = 0
	}
	fmt.Fprintln(r.w, line) //nolint:errcheck
}

// printOutcome summarizes a finished calculation run.
func (r *progressReporter) printOutcome(o *orchestration.BatchOutcome) {
	r.println(r.p.Sprintf("Processed %d compositions in %s: %d accepted, %d excluded for missing data",
		o.Processed, formatDuration(o.Duration), o.Accepted, o.Excluded))
	r.println(reporting.InterpretAcceptance(o.Accepted, o.Processed))
}

// formatDuration formats a duration in a consistent, human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(100 * time.Millisecond).String()
}

func formatETA(seconds float64) string {
	return (time.Duration(seconds * float64(time.Second))).Round(time.Second).String()
}

// formatComposition lists each element in atomic and, when weights are
// known, weight percent.
func formatComposition(at, wt composition.Composition) string {
	var b strings.Builder
	for i, c := range at {
		if wt != nil {
			fmt.Fprintf(&b, "  %-2s  %7.3f at.%%  %7.3f wt.%%\n", c.Symbol, c.Percent, wt[i].Percent)
		} else {
			fmt.Fprintf(&b, "  %-2s  %7.3f at.%%\n", c.Symbol, c.Percent)
		}
	}
	return b.String()
}
