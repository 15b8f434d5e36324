package logging

import (
	"context"
	"log/slog"

	"karaoke/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized key for the per-invocation run identifier.
	FieldRunID = "run_id"
	// FieldStep is the standardized key for the pipeline step (transcribe, build).
	FieldStep = "step"
	// FieldTranscript is the standardized key for the transcript stem being processed.
	FieldTranscript = "transcript"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to check next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if step, ok := services.StepFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStep, step))
	}
	if stem, ok := services.TranscriptFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldTranscript, stem))
	}
	return fields
}
