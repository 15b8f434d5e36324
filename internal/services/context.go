package services

import "context"

type contextKey string

const (
	runIDKey      contextKey = "run_id"
	stepKey       contextKey = "step"
	transcriptKey contextKey = "transcript"
)

// WithRunID annotates context with the per-invocation run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext returns the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(runIDKey).(string)
	return v, ok && v != ""
}

// WithStep annotates context with the pipeline step name (transcribe, build).
func WithStep(ctx context.Context, step string) context.Context {
	if step == "" {
		return ctx
	}
	return context.WithValue(ctx, stepKey, step)
}

// StepFromContext returns the step name if present.
func StepFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(stepKey).(string)
	return v, ok && v != ""
}

// WithTranscript annotates context with the stem of the transcript being processed.
func WithTranscript(ctx context.Context, stem string) context.Context {
	if stem == "" {
		return ctx
	}
	return context.WithValue(ctx, transcriptKey, stem)
}

// TranscriptFromContext returns the transcript stem if present.
func TranscriptFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(transcriptKey).(string)
	return v, ok && v != ""
}
