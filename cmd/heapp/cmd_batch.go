package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mdlhea/heapp/internal/composition"
	"github.com/mdlhea/heapp/internal/dataset"
	"github.com/mdlhea/heapp/internal/descriptor"
	"github.com/mdlhea/heapp/internal/generate"
	"github.com/mdlhea/heapp/internal/orchestration"
	"github.com/mdlhea/heapp/internal/refdata"
	"github.com/mdlhea/heapp/internal/reporting"
	"github.com/mdlhea/heapp/internal/spinner"
	"github.com/mdlhea/heapp/internal/utils"
)

type batchOptions struct {
	ranges     []string
	step       int
	from       []string
	restrict   string
	output     string
	workers    int
	storeDir   string
	summary    string
	title      string
	keepStore  bool
	tableLimit int
}

func newBatchCommand(a *app) *cobra.Command {
	opts := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Calculate a composition space or an imported list of alloys",
		Long: `Calculate descriptors for many compositions and keep those that meet the
restrictions.

Compositions come either from element ranges (--range, one per element, with
--step in atomic percent) or from CSV/Excel files with a formula column
(--from). Results are streamed to an intermediate store, then printed as a
table when there are few of them, or exported to a file when there are many
or when --output is given. Press Ctrl+C to stop early and keep the partial
results.`,
		Example: `  heapp batch --range Fe=10:40 --range Ni=10:40 --range Co=10:40 --range Cr=10:40 --step 5
  heapp batch --range Al=0:20 --range Co=20 --range Cr=20 --range Fe=20 --range Ni=20:40 --restrict fcc.yaml -o alloys.xlsx
  heapp batch --from alloys.xlsx --summary report.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, a, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.ranges, "range", "r", nil, "Element range Symbol=start:end or Symbol=value in at.% (repeat per element)")
	cmd.Flags().IntVar(&opts.step, "step", 0, "Step in at.% between compositions (default from config, else 5)")
	cmd.Flags().StringArrayVar(&opts.from, "from", nil, "CSV or XLSX file with a formula column (can be repeated)")
	cmd.Flags().StringVar(&opts.restrict, "restrict", "", "Restriction file (YAML or JSON)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Export accepted results to this .csv or .xlsx file")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Number of concurrent workers (default from config, else 1)")
	cmd.Flags().StringVar(&opts.storeDir, "store-dir", "", "Directory for the intermediate result store (default: system temp dir)")
	cmd.Flags().StringVar(&opts.summary, "summary", "", "Write a batch summary to this .md or .html file")
	cmd.Flags().StringVar(&opts.title, "title", "Batch summary", "Title of the summary report")
	cmd.Flags().BoolVar(&opts.keepStore, "keep-store", false, "Keep the intermediate store after exporting")
	cmd.Flags().IntVar(&opts.tableLimit, "table-limit", 0, "Print at most this many results as a table before exporting instead (default from config, else 20000)")

	return cmd
}

func runBatch(cmd *cobra.Command, a *app, opts *batchOptions) error {
	cfg := a.cfg
	if opts.step == 0 {
		opts.step = cfg.Batch.Step
	}
	if opts.workers == 0 {
		opts.workers = cfg.Batch.Workers
	}
	if opts.tableLimit == 0 {
		opts.tableLimit = cfg.Batch.TableThreshold
	}
	if opts.storeDir == "" {
		opts.storeDir = cfg.Resolve(cfg.Paths.StoreDir)
	}

	ref, err := a.reference()
	if err != nil {
		return err
	}
	spec, err := a.restriction(opts.restrict)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	rep := newProgressReporter(out)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	batch, symbols, err := buildBatch(ctx, out, rep, opts, ref)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Restrictions: %s\n", spec.String()) //nolint:errcheck

	runner := orchestration.NewBatchRunner(descriptor.NewEngine(ref),
		orchestration.WithRestriction(spec),
		orchestration.WithStoreDir(opts.storeDir),
		orchestration.WithWorkers(opts.workers),
		orchestration.WithProgressInterval(cfg.Batch.ProgressInterval))
	runner.OnProgress(utils.ProgressToSlog)
	runner.OnProgress(rep.onProgress)

	outcome, err := runner.Run(ctx, batch)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}
	stop()
	rep.printOutcome(outcome)

	if opts.summary != "" {
		if err := writeSummary(cmd.Context(), outcome.StorePath, opts.summary, opts.title); err != nil {
			return err
		}
		fmt.Fprintf(out, "Summary written to %s\n", opts.summary) //nolint:errcheck
	}

	dest := opts.output
	if dest == "" && outcome.Accepted > opts.tableLimit {
		format := autoExportFormat(outcome.Accepted)
		dest = filepath.Join(cfg.Resolve(cfg.Paths.ExportDir), utils.ExportFileName(symbols, time.Now(), format.Extension))
	}
	if dest == "" {
		results, err := reporting.LoadTable(outcome.StorePath, opts.tableLimit)
		if err != nil {
			return fmt.Errorf("loading results: %w", err)
		}
		if len(results) == 0 {
			return nil
		}
		fmt.Fprintln(out) //nolint:errcheck
		return reporting.PrintTable(out, results)
	}

	consume := !opts.keepStore && cfg.Batch.ConsumeStore != nil && *cfg.Batch.ConsumeStore
	return exportStore(cmd.Context(), rep, outcome.StorePath, dest, cfg.Batch.ChunkSize, consume)
}

// buildBatch assembles the compositions to calculate from --from files or
// --range flags, and returns the elements involved in first-seen order.
func buildBatch(ctx context.Context, out io.Writer, rep *progressReporter, opts *batchOptions, ref *refdata.Store) (orchestration.Batch, []string, error) {
	switch {
	case len(opts.from) > 0 && len(opts.ranges) > 0:
		return nil, nil, errors.New("use either --range or --from, not both")

	case len(opts.from) > 0:
		wd, err := os.Getwd()
		if err != nil {
			return nil, nil, err
		}
		var comps []composition.Composition
		for _, path := range utils.ResolvePaths(opts.from, wd) {
			loaded, err := dataset.LoadCompositions(path)
			if err != nil {
				return nil, nil, err
			}
			fmt.Fprintf(out, "Imported %d compositions from %s\n", len(loaded), path) //nolint:errcheck
			comps = append(comps, loaded...)
		}
		return orchestration.FromSlice(comps), symbolsOf(comps), nil

	case len(opts.ranges) > 0:
		ranges := make([]generate.ElementRange, 0, len(opts.ranges))
		var errs []error
		for _, s := range opts.ranges {
			r, err := generate.ParseRange(s)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if !ref.Has(r.Symbol) {
				errs = append(errs, &composition.InputError{Element: r.Symbol, Reason: "not in the reference data"})
				continue
			}
			ranges = append(ranges, r)
		}
		if err := errors.Join(errs...); err != nil {
			return nil, nil, err
		}
		space, err := generate.NewSpace(ranges, opts.step)
		if err != nil {
			return nil, nil, err
		}

		gen := orchestration.NewGenerationStage()
		gen.OnProgress(utils.ProgressToSlog)
		gen.OnProgress(rep.onProgress)

		stopSpinner := func() {}
		if rep.tty {
			stopSpinner = spinner.Start(out, "Counting compositions")
		}
		batch, err := gen.Run(ctx, space)
		stopSpinner()
		if err != nil {
			return nil, nil, err
		}
		return batch, space.Symbols(), nil

	default:
		return nil, nil, errors.New("specify the compositions with --range or --from")
	}
}

// autoExportFormat picks the format of an automatic export: Excel, unless
// the results exceed its row limit.
func autoExportFormat(rows int) reporting.FormatInfo {
	if info, ok := reporting.GetFormatInfo(reporting.FormatXLSX); ok && info.Fits(rows) {
		return info
	}
	info, _ := reporting.GetFormatInfo(reporting.FormatCSV)
	return info
}

func symbolsOf(comps []composition.Composition) []string {
	seen := make(map[string]bool)
	var symbols []string
	for _, c := range comps {
		for _, s := range c.Symbols() {
			if !seen[s] {
				seen[s] = true
				symbols = append(symbols, s)
			}
		}
	}
	return symbols
}

func writeSummary(ctx context.Context, storePath, path, title string) error {
	s, err := reporting.Summarize(ctx, storePath)
	if err != nil {
		return fmt.Errorf("summarizing results: %w", err)
	}
	if err := reporting.WriteSummary(path, s, title); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// exportStore runs the export stage with its own interrupt handling so a
// cancelled calculation can still export its partial results.
func exportStore(parent context.Context, rep *progressReporter, storePath, dest string, chunkSize int, consume bool) error {
	if dir := filepath.Dir(dest); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	opts := []orchestration.ExportOption{orchestration.WithChunkSize(chunkSize)}
	if consume {
		opts = append(opts, orchestration.WithConsumeStore())
	}
	stage := orchestration.NewExportStage(opts...)
	stage.OnProgress(utils.ProgressToSlog)
	stage.OnProgress(rep.onProgress)

	if _, err := stage.Export(ctx, storePath, dest, reporting.Headers()); err != nil {
		return fmt.Errorf("export failed, results kept in %s: %w", storePath, err)
	}
	if !consume {
		rep.println(fmt.Sprintf("Intermediate results kept in %s", storePath))
	}
	return nil
}
