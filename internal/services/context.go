package services

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	decadeKey  contextKey = "decade"
	segmentKey contextKey = "segment"
	stageKey   contextKey = "stage"
)

// WithRunID annotates context with the pipeline run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run correlation identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithDecade annotates context with the episode decade being rendered.
func WithDecade(ctx context.Context, decade string) context.Context {
	if decade == "" {
		return ctx
	}
	return context.WithValue(ctx, decadeKey, decade)
}

// DecadeFromContext returns the episode decade if present.
func DecadeFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(decadeKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSegment annotates context with the dialogue segment name.
func WithSegment(ctx context.Context, segment string) context.Context {
	if segment == "" {
		return ctx
	}
	return context.WithValue(ctx, segmentKey, segment)
}

// SegmentFromContext returns the dialogue segment name if present.
func SegmentFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(segmentKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
