// Package orchestration runs the three pipeline stages (generation,
// calculation, export) and reports their progress to listeners.
package orchestration

import (
	"errors"
	"fmt"
	"sync"
)

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventGenerationStart     EventType = "generation_start"
	EventGenerationComplete  EventType = "generation_complete"
	EventCalculationStart    EventType = "calculation_start"
	EventCalculationProgress EventType = "calculation_progress"
	EventResultsReady        EventType = "results_ready"
	EventCalculationDone     EventType = "calculation_done"
	EventExportStart         EventType = "export_start"
	EventExportProgress      EventType = "export_progress"
	EventExportComplete      EventType = "export_complete"
	EventStageFailed         EventType = "stage_failed"
)

// Stage names a pipeline stage.
type Stage string

const (
	StageGeneration  Stage = "generation"
	StageCalculation Stage = "calculation"
	StageExport      Stage = "export"
)

// State is a stage's lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
	StateFailed    State = "failed"
)

// ProgressEvent represents a progress update. Processed and Total count
// compositions during calculation and rows during export.
type ProgressEvent struct {
	EventType  EventType
	Stage      Stage
	Processed  int
	Total      int
	Accepted   int
	ETASeconds float64
	Path       string
	State      State
	Err        error
}

// ErrStageBusy is returned when a stage is started while it is running.
var ErrStageBusy = errors.New("orchestration: stage already running")

// StageError is the typed failure of a stage run.
type StageError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("orchestration: %s stage failed (%s): %v", e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("orchestration: %s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// notifier fans events out to registered listeners.
type notifier struct {
	progressMu sync.Mutex
	listeners  []ProgressListener
}

// OnProgress registers a progress listener
func (n *notifier) OnProgress(listener ProgressListener) {
	n.progressMu.Lock()
	defer n.progressMu.Unlock()
	n.listeners = append(n.listeners, listener)
}

func (n *notifier) notifyProgress(event ProgressEvent) {
	n.progressMu.Lock()
	listeners := make([]ProgressListener, len(n.listeners))
	copy(listeners, n.listeners)
	n.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// lifecycle guards a stage against re-entry and tracks its state.
type lifecycle struct {
	mu      sync.Mutex
	running bool
	state   State
}

func (l *lifecycle) begin() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return ErrStageBusy
	}
	l.running = true
	l.state = StateRunning
	return nil
}

func (l *lifecycle) end(s State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.running = false
	l.state = s
}

// State returns the state of the last (or current) run.
func (l *lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == "" {
		return StateIdle
	}
	return l.state
}
