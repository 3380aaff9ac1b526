package orchestration

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mdlhea/heapp/internal/generate"
)

// GenerationStage sizes a composition space so the calculation stage can
// report progress against an exact total.
type GenerationStage struct {
	notifier
	lifecycle
}

// NewGenerationStage creates an idle generation stage.
func NewGenerationStage() *GenerationStage {
	return &GenerationStage{}
}

// Run counts the valid compositions of space and returns them as a Batch.
// The compositions themselves are produced lazily by the calculation stage.
func (g *GenerationStage) Run(ctx context.Context, space *generate.Space) (Batch, error) {
	if err := g.begin(); err != nil {
		return nil, err
	}
	start := time.Now()
	g.notifyProgress(ProgressEvent{EventType: EventGenerationStart, Stage: StageGeneration, State: StateRunning})

	total, err := space.Count(ctx)
	if err != nil {
		state := StateFailed
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			state = StateCancelled
		}
		serr := &StageError{Stage: StageGeneration, Err: err}
		g.notifyProgress(ProgressEvent{EventType: EventStageFailed, Stage: StageGeneration, Processed: total, State: state, Err: serr})
		g.end(state)
		return nil, serr
	}

	slog.Debug("composition space counted",
		"elements", space.Symbols(),
		"step", space.Step(),
		"candidates", space.Candidates(),
		"valid", total,
		"elapsed", time.Since(start))
	g.end(StateCompleted)
	g.notifyProgress(ProgressEvent{EventType: EventGenerationComplete, Stage: StageGeneration, Total: total, State: StateCompleted})
	return FromSpace(space, total), nil
}
