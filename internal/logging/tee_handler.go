package logging

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler forwards each record to every child whose level admits it.
type teeHandler struct {
	children []slog.Handler
}

// TeeHandler combines handlers into one. Nil entries are dropped, a single
// survivor is returned unwrapped, and no survivors yield a silent handler.
func TeeHandler(handlers ...slog.Handler) slog.Handler {
	children := make([]slog.Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			children = append(children, h)
		}
	}
	switch len(children) {
	case 0:
		return NoopHandler{}
	case 1:
		return children[0]
	}
	return &teeHandler{children: children}
}

// TeeLogger returns a logger that writes through base's handler and every
// extra handler. A nil base tees only the extras.
func TeeLogger(base *slog.Logger, extras ...slog.Handler) *slog.Logger {
	if base == nil {
		return slog.New(TeeHandler(extras...))
	}
	return slog.New(TeeHandler(append([]slog.Handler{base.Handler()}, extras...)...))
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, child := range h.children {
		if child.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle delivers the record to each child that accepts its level. The first
// recipient gets the original record; later ones get clones, since a handler
// may retain or mutate what it is given.
func (h *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	delivered := false
	for _, child := range h.children {
		if !child.Enabled(ctx, record.Level) {
			continue
		}
		rec := record
		if delivered {
			rec = record.Clone()
		}
		delivered = true
		if err := child.Handle(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	children := make([]slog.Handler, len(h.children))
	for i, child := range h.children {
		children[i] = child.WithAttrs(attrs)
	}
	return &teeHandler{children: children}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	children := make([]slog.Handler, len(h.children))
	for i, child := range h.children {
		children[i] = child.WithGroup(name)
	}
	return &teeHandler{children: children}
}
