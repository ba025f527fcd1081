package logging

import (
	"context"
	"log/slog"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for run correlation identifiers.
	FieldRunID = "run_id"
	// FieldDecade is the standardized structured logging key for the episode decade.
	FieldDecade = "decade"
	// FieldSegment is the standardized structured logging key for dialogue segment names.
	FieldSegment = "segment"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldSpeaker is the standardized structured logging key for the speaking host.
	FieldSpeaker = "speaker"
	// FieldEncoder is the standardized structured logging key for the active video encoder.
	FieldEncoder = "encoder"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if decade, ok := services.DecadeFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldDecade, decade))
	}
	if segment, ok := services.SegmentFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSegment, segment))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
