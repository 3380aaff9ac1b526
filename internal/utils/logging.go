package utils

import (
	"context"
	"log/slog"

	"github.com/mdlhea/heapp/internal/orchestration"
)

// ProgressToSlog mirrors a pipeline event to the default logger at debug
// level. Zero-valued fields are left out.
func ProgressToSlog(event orchestration.ProgressEvent) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	attrs := []any{
		"type", event.EventType,
		"stage", event.Stage,
	}

	attrs = addIf(attrs, "processed", event.Processed)
	attrs = addIf(attrs, "total", event.Total)
	attrs = addIf(attrs, "accepted", event.Accepted)
	attrs = addIf(attrs, "etaSeconds", event.ETASeconds)
	attrs = addIf(attrs, "path", event.Path)
	attrs = addIf(attrs, "state", event.State)
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
	}

	slog.Debug("Event received", attrs...)
}

func addIf[T comparable](attrs []any, name string, v T) []any {
	var zero T
	if v != zero {
		attrs = append(attrs, name)
		attrs = append(attrs, v)
	}

	return attrs
}
