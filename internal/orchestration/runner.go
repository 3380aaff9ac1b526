package orchestration

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mdlhea/heapp/internal/composition"
	"github.com/mdlhea/heapp/internal/descriptor"
	"github.com/mdlhea/heapp/internal/restriction"
	"github.com/mdlhea/heapp/internal/store"
)

// DefaultProgressInterval is the number of compositions between
// calculation_progress events.
const DefaultProgressInterval = 100

// BatchOutcome is the result of one calculation run.
type BatchOutcome struct {
	RunID     string
	StorePath string
	State     State
	Total     int
	Processed int
	Accepted  int
	Excluded  int
	Duration  time.Duration
}

// BatchRunner calculates descriptors for a batch of compositions and
// streams the accepted ones into an intermediate store.
type BatchRunner struct {
	notifier
	lifecycle

	calc     restriction.Calculator
	spec     restriction.Spec
	storeDir string
	interval int
	workers  int
	now      func() time.Time
}

// RunnerOption configures a BatchRunner.
type RunnerOption func(*BatchRunner)

// WithRestriction keeps only results matching spec.
func WithRestriction(spec restriction.Spec) RunnerOption {
	return func(r *BatchRunner) { r.spec = spec }
}

// WithStoreDir sets the directory intermediate stores are created in.
func WithStoreDir(dir string) RunnerOption {
	return func(r *BatchRunner) { r.storeDir = dir }
}

// WithProgressInterval sets how many compositions pass between progress
// events. Values below 1 are ignored.
func WithProgressInterval(n int) RunnerOption {
	return func(r *BatchRunner) {
		if n > 0 {
			r.interval = n
		}
	}
}

// WithWorkers computes up to n compositions concurrently. Results are still
// written in input order.
func WithWorkers(n int) RunnerOption {
	return func(r *BatchRunner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func withClock(now func() time.Time) RunnerOption {
	return func(r *BatchRunner) { r.now = now }
}

// NewBatchRunner creates a runner that calculates with calc.
func NewBatchRunner(calc restriction.Calculator, opts ...RunnerOption) *BatchRunner {
	r := &BatchRunner{
		calc:     calc,
		interval: DefaultProgressInterval,
		workers:  1,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes batch in order until it is exhausted or ctx is cancelled.
// A cancelled run is not an error: the outcome carries the partial counts
// and the store holds every result accepted before cancellation.
func (r *BatchRunner) Run(ctx context.Context, batch Batch) (*BatchOutcome, error) {
	if err := r.begin(); err != nil {
		return nil, err
	}
	out := &BatchOutcome{
		RunID: uuid.NewString(),
		State: StateRunning,
		Total: batch.Len(),
	}
	defer func() { r.end(out.State) }()

	start := r.now()
	w, err := store.Create(r.storeDir, out.RunID)
	if err != nil {
		return out, r.fail(out, store.PathFor(r.storeDir, out.RunID), err)
	}
	out.StorePath = w.Path()

	slog.Debug("calculation started", "run_id", out.RunID, "total", out.Total, "workers", r.workers, "restriction", r.spec.String())
	r.notifyProgress(ProgressEvent{
		EventType: EventCalculationStart,
		Stage:     StageCalculation,
		Total:     out.Total,
		Path:      out.StorePath,
		State:     StateRunning,
	})

	if r.workers > 1 {
		err = r.runConcurrent(ctx, batch, w, out, start)
	} else {
		err = r.runSequential(ctx, batch, w, out, start)
	}
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	out.Accepted = w.Count()
	out.Duration = r.now().Sub(start)
	if err != nil {
		return out, r.fail(out, out.StorePath, err)
	}
	if out.State == StateRunning {
		out.State = StateCompleted
	}

	r.notifyProgress(ProgressEvent{
		EventType: EventResultsReady,
		Stage:     StageCalculation,
		Processed: out.Processed,
		Total:     out.Total,
		Accepted:  out.Accepted,
		Path:      out.StorePath,
		State:     out.State,
	})
	r.notifyProgress(ProgressEvent{
		EventType: EventCalculationDone,
		Stage:     StageCalculation,
		Processed: out.Processed,
		Total:     out.Total,
		Accepted:  out.Accepted,
		Path:      out.StorePath,
		State:     out.State,
	})
	return out, nil
}

func (r *BatchRunner) runSequential(ctx context.Context, batch Batch, w *store.Writer, out *BatchOutcome, start time.Time) error {
	for comp := range batch.All() {
		if ctx.Err() != nil {
			out.State = StateCancelled
			return nil
		}
		c := calculation{comp: comp, done: true}
		c.ds, c.ok, c.err = restriction.Apply(r.calc, comp.Fractions(), r.spec)
		if err := r.record(w, out, start, c); err != nil {
			return err
		}
	}
	return nil
}

type calculation struct {
	comp composition.Composition
	ds   descriptor.DescriptorSet
	ok   bool
	err  error
	done bool
}

// runConcurrent calculates windows of workers*interval compositions in
// parallel and records each window in input order before starting the next.
func (r *BatchRunner) runConcurrent(ctx context.Context, batch Batch, w *store.Writer, out *BatchOutcome, start time.Time) error {
	window := make([]calculation, 0, r.workers*r.interval)

	flush := func() (bool, error) {
		var g errgroup.Group
		g.SetLimit(r.workers)
		for i := range window {
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				c := &window[i]
				c.ds, c.ok, c.err = restriction.Apply(r.calc, c.comp.Fractions(), r.spec)
				c.done = true
				return nil
			})
		}
		_ = g.Wait()

		for _, c := range window {
			if !c.done {
				out.State = StateCancelled
				return false, nil
			}
			if err := r.record(w, out, start, c); err != nil {
				return false, err
			}
		}
		window = window[:0]
		return true, nil
	}

	for comp := range batch.All() {
		if ctx.Err() != nil {
			out.State = StateCancelled
			return nil
		}
		window = append(window, calculation{comp: comp})
		if len(window) == cap(window) {
			if more, err := flush(); err != nil || !more {
				return err
			}
		}
	}
	if len(window) > 0 {
		_, err := flush()
		return err
	}
	return nil
}

// record stores an accepted result and emits progress on interval
// boundaries and on the last item.
func (r *BatchRunner) record(w *store.Writer, out *BatchOutcome, start time.Time, c calculation) error {
	out.Processed++
	switch {
	case c.err != nil:
		out.Excluded++
		slog.Debug("composition excluded", "alloy", c.comp.Name(), "error", c.err)
	case c.ok:
		if err := w.Append(descriptor.NewAlloyResult(c.comp, c.ds)); err != nil {
			return err
		}
	}

	if out.Processed%r.interval == 0 || out.Processed == out.Total {
		r.notifyProgress(ProgressEvent{
			EventType:  EventCalculationProgress,
			Stage:      StageCalculation,
			Processed:  out.Processed,
			Total:      out.Total,
			Accepted:   w.Count(),
			ETASeconds: eta(r.now().Sub(start), out.Processed, out.Total),
			Path:       out.StorePath,
			State:      StateRunning,
		})
	}
	return nil
}

// eta extrapolates the remaining time from the mean time per item so far.
func eta(elapsed time.Duration, processed, total int) float64 {
	if processed <= 0 || total <= processed {
		return 0
	}
	return elapsed.Seconds() / float64(processed) * float64(total-processed)
}

func (r *BatchRunner) fail(out *BatchOutcome, path string, err error) error {
	out.State = StateFailed
	serr := &StageError{Stage: StageCalculation, Path: path, Err: err}
	r.notifyProgress(ProgressEvent{
		EventType: EventStageFailed,
		Stage:     StageCalculation,
		Processed: out.Processed,
		Total:     out.Total,
		Path:      path,
		State:     StateFailed,
		Err:       serr,
	})
	return serr
}
