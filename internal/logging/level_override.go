package logging

import (
	"context"
	"log/slog"
)

// minLevelHandler drops records below a floor before delegating to the
// wrapped handler, which keeps whatever verbosity it was built with.
type minLevelHandler struct {
	floor slog.Level
	next  slog.Handler
}

// WithLevelOverride returns a logger that suppresses records below level
// while keeping the original handler wiring and attributes. Overriding an
// already-overridden logger replaces the floor instead of stacking wrappers.
func WithLevelOverride(logger *slog.Logger, level slog.Level) *slog.Logger {
	if logger == nil {
		return slog.New(NoopHandler{})
	}
	next := logger.Handler()
	if clamped, ok := next.(*minLevelHandler); ok {
		next = clamped.next
	}
	return slog.New(&minLevelHandler{floor: level, next: next})
}

func (h *minLevelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.floor && h.next.Enabled(ctx, level)
}

func (h *minLevelHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < h.floor {
		return nil
	}
	return h.next.Handle(ctx, record)
}

func (h *minLevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &minLevelHandler{floor: h.floor, next: h.next.WithAttrs(attrs)}
}

func (h *minLevelHandler) WithGroup(name string) slog.Handler {
	return &minLevelHandler{floor: h.floor, next: h.next.WithGroup(name)}
}
