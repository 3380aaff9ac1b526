package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mdlhea/heapp/internal/reporting"
	"github.com/mdlhea/heapp/internal/store"
)

// DefaultChunkSize is the number of results read from the store per chunk.
const DefaultChunkSize = 100

// ExportStage writes an intermediate store to a tabular file chunk by chunk.
type ExportStage struct {
	notifier
	lifecycle

	chunkSize int
	consume   bool
}

// ExportOption configures an ExportStage.
type ExportOption func(*ExportStage)

// WithChunkSize sets the number of results read per chunk.
func WithChunkSize(n int) ExportOption {
	return func(e *ExportStage) {
		if n > 0 {
			e.chunkSize = n
		}
	}
}

// WithConsumeStore deletes the store after a successful export.
func WithConsumeStore() ExportOption {
	return func(e *ExportStage) { e.consume = true }
}

// NewExportStage creates an idle export stage.
func NewExportStage(opts ...ExportOption) *ExportStage {
	e := &ExportStage{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes the results in storePath to dest, choosing the format from
// the extension of dest. It returns the written path. On failure dest is
// removed and the store is left in place.
func (e *ExportStage) Export(ctx context.Context, storePath, dest string, headers []string) (string, error) {
	if err := e.begin(); err != nil {
		return "", err
	}
	state := StateFailed
	defer func() { e.end(state) }()

	info, err := reporting.FormatForPath(dest)
	if err != nil {
		return "", e.fail(dest, 0, 0, StateFailed, err)
	}
	tw, err := info.Create(dest)
	if err != nil {
		return "", e.fail(dest, 0, 0, StateFailed, err)
	}
	if _, state, err = e.run(ctx, storePath, dest, tw, headers); err != nil {
		if rmErr := os.Remove(dest); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			slog.Warn("failed to remove partial export", "path", dest, "error", rmErr)
		}
		return "", err
	}
	return dest, nil
}

// ExportTo writes the results in storePath to an already open writer and
// closes it. It returns the number of rows written.
func (e *ExportStage) ExportTo(ctx context.Context, storePath string, tw reporting.TableWriter, headers []string) (int, error) {
	if err := e.begin(); err != nil {
		return 0, err
	}
	state := StateFailed
	defer func() { e.end(state) }()

	written, state, err := e.run(ctx, storePath, "", tw, headers)
	return written, err
}

// run performs one export. tw is always closed on return.
func (e *ExportStage) run(ctx context.Context, storePath, dest string, tw reporting.TableWriter, headers []string) (int, State, error) {
	written := 0
	abort := func(total int, state State, err error) (int, State, error) {
		_ = tw.Close()
		return written, state, e.fail(dest, written, total, state, err)
	}

	if want := len(reporting.Headers()); len(headers) != want {
		return abort(0, StateFailed, fmt.Errorf("expected %d headers, got %d", want, len(headers)))
	}

	e.notifyProgress(ProgressEvent{EventType: EventExportStart, Stage: StageExport, Path: dest, State: StateRunning})

	total, err := store.CountRecords(storePath, e.chunkSize)
	if err != nil {
		return abort(0, StateFailed, err)
	}
	rd, err := store.Open(storePath)
	if err != nil {
		return abort(total, StateFailed, err)
	}
	defer rd.Close()

	if err := tw.WriteHeader(headers); err != nil {
		return abort(total, StateFailed, err)
	}
	for {
		if err := ctx.Err(); err != nil {
			return abort(total, StateCancelled, err)
		}
		chunk, err := rd.Next(e.chunkSize)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return abort(total, StateFailed, err)
		}
		for _, res := range chunk {
			if err := tw.WriteRow(reporting.Row(res)); err != nil {
				return abort(total, StateFailed, err)
			}
		}
		written += len(chunk)
		e.notifyProgress(ProgressEvent{
			EventType: EventExportProgress,
			Stage:     StageExport,
			Processed: written,
			Total:     total,
			Path:      dest,
			State:     StateRunning,
		})
	}
	if err := tw.Close(); err != nil {
		return written, StateFailed, e.fail(dest, written, total, StateFailed, err)
	}

	if e.consume {
		if err := store.Remove(storePath); err != nil {
			slog.Warn("failed to remove store after export", "path", storePath, "error", err)
		}
	}
	slog.Debug("export complete", "path", dest, "rows", written)
	e.notifyProgress(ProgressEvent{
		EventType: EventExportComplete,
		Stage:     StageExport,
		Processed: written,
		Total:     total,
		Path:      dest,
		State:     StateCompleted,
	})
	return written, StateCompleted, nil
}

func (e *ExportStage) fail(dest string, written, total int, state State, err error) error {
	serr := &StageError{Stage: StageExport, Path: dest, Err: err}
	e.notifyProgress(ProgressEvent{
		EventType: EventStageFailed,
		Stage:     StageExport,
		Processed: written,
		Total:     total,
		Path:      dest,
		State:     state,
		Err:       serr,
	})
	return serr
}
