package reporting

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mdlhea/heapp/internal/descriptor"
	"github.com/mdlhea/heapp/internal/statistics"
	"github.com/mdlhea/heapp/internal/store"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Summary digests the accepted results of one run.
type Summary struct {
	RunID       string                        `json:"run_id"`
	Results     int                           `json:"results"`
	Processed   int                           `json:"processed,omitempty"`
	Descriptors map[string]statistics.Summary `json:"descriptors"`
	// Labels counts label classes per categorical descriptor.
	Labels map[string]map[string]int `json:"labels"`
}

// Summarize streams the store once. Cancellation is checked between chunks.
func Summarize(ctx context.Context, storePath string) (*Summary, error) {
	r, err := store.Open(storePath)
	if err != nil {
		return nil, err
	}
	defer r.Close() //nolint:errcheck

	numeric := descriptor.NumericFields()
	running := make(map[string]*statistics.Running, len(numeric))
	for _, name := range numeric {
		running[name] = statistics.NewRunning()
	}
	s := &Summary{
		RunID:       r.RunID(),
		Descriptors: make(map[string]statistics.Summary, len(numeric)),
		Labels:      make(map[string]map[string]int),
	}
	for _, name := range descriptor.CategoricalFields() {
		s.Labels[name] = make(map[string]int)
	}

	for chunk, err := range r.Chunks(DefaultChunkSize) {
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, res := range chunk {
			s.Results++
			for _, name := range numeric {
				v, _ := res.Descriptors.Field(name)
				x, _ := v.Float()
				running[name].Add(x)
			}
			for name, counts := range s.Labels {
				v, _ := res.Descriptors.Field(name)
				counts[v.Class()]++
			}
		}
	}
	for name, acc := range running {
		s.Descriptors[name] = acc.Summary()
	}
	return s, nil
}

// FormatSummaryMarkdown renders s as a Markdown report.
func FormatSummaryMarkdown(s *Summary, title string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if s.RunID != "" {
		fmt.Fprintf(&b, "Run `%s`\n\n", s.RunID)
	}
	if s.Processed > 0 {
		fmt.Fprintf(&b, "%s\n\n", InterpretAcceptance(s.Results, s.Processed))
	} else {
		fmt.Fprintf(&b, "%d accepted alloys.\n\n", s.Results)
	}
	if s.Results == 0 {
		return b.String()
	}

	b.WriteString("## Descriptors\n\n")
	b.WriteString("| Descriptor | Mean | Std dev | Min | Median | Max |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|\n")
	for _, name := range descriptor.NumericFields() {
		st := s.Descriptors[name]
		fmt.Fprintf(&b, "| %s | %.4g | %.4g | %.4g | %.4g | %.4g |\n",
			name, st.Mean, st.StdDev, st.Min, st.Median, st.Max)
	}

	b.WriteString("\n## Classifications\n\n")
	b.WriteString("| Descriptor | Label | Count | Share |\n")
	b.WriteString("|---|---|---:|---:|\n")
	for _, name := range descriptor.CategoricalFields() {
		counts := s.Labels[name]
		labels := make([]string, 0, len(counts))
		for label := range counts {
			labels = append(labels, label)
		}
		// Most frequent first, ties by name.
		slices.SortFunc(labels, func(a, b string) int {
			if counts[a] != counts[b] {
				return counts[b] - counts[a]
			}
			return strings.Compare(a, b)
		})
		for _, label := range labels {
			fmt.Fprintf(&b, "| %s | %s | %d | %.1f%% |\n",
				name, escapeCell(label), counts[label], 100*float64(counts[label])/float64(s.Results))
		}
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "[", `\[`, "]", `\]`).Replace(s)
}

// RenderHTML converts Markdown (with GFM tables) to a standalone HTML page.
func RenderHTML(markdown, title string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("reporting: render html: %w", err)
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", htmlEscape(title))
	b.WriteString("</head>\n<body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

func htmlEscape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;").Replace(s)
}

// WriteSummary writes s to path as Markdown, or as HTML when path ends in
// .html or .htm.
func WriteSummary(path string, s *Summary, title string) error {
	out := FormatSummaryMarkdown(s, title)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		html, err := RenderHTML(out, title)
		if err != nil {
			return err
		}
		out = html
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("reporting: write summary: %w", err)
	}
	return nil
}
