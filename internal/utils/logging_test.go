package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdlhea/heapp/internal/orchestration"
)

func TestProgressToSlogDebugDisabled(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(old)
	})

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ProgressToSlog(orchestration.ProgressEvent{EventType: orchestration.EventCalculationProgress})
	assert.Equal(t, 0, buf.Len())
}

func TestProgressToSlogDebugEnabled(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(old)
	})

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	ProgressToSlog(orchestration.ProgressEvent{
		EventType:  orchestration.EventCalculationProgress,
		Stage:      orchestration.StageCalculation,
		Processed:  200,
		Total:      250,
		ETASeconds: 1.5,
		State:      orchestration.StateRunning,
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Event received", entry["msg"])
	assert.Equal(t, "calculation_progress", entry["type"])
	assert.Equal(t, "calculation", entry["stage"])
	assert.Equal(t, float64(200), entry["processed"])
	assert.Equal(t, float64(250), entry["total"])
	assert.Equal(t, 1.5, entry["etaSeconds"])
	assert.Equal(t, "running", entry["state"])
	assert.NotContains(t, entry, "accepted")
	assert.NotContains(t, entry, "path")
	assert.NotContains(t, entry, "error")
}

func TestProgressToSlogError(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(old)
	})

	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	ProgressToSlog(orchestration.ProgressEvent{
		EventType: orchestration.EventStageFailed,
		Stage:     orchestration.StageExport,
		Err:       errors.New("disk full"),
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "disk full", entry["error"])
}
