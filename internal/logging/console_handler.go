package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler renders each record as a single human-readable line:
//
//	2026-01-02T15:04:05Z INFO workflow: render starting decade=1950s
//
// A top-level attribute keyed by FieldComponent becomes the "workflow:"
// prefix instead of a k=v pair; the first one wins. Handler-bound
// attributes are flattened once at WithAttrs time so Handle only has to
// format the record's own attributes. Every clone shares the same mutex,
// keeping lines from interleaving on a shared sink.
type consoleHandler struct {
	out       io.Writer
	level     *slog.LevelVar
	addSource bool

	mu        *sync.Mutex
	component string
	prefix    []attrPair
	groups    []string
}

type attrPair struct {
	key   string
	value string
}

func newConsoleHandler(out io.Writer, level *slog.LevelVar, addSource bool) *consoleHandler {
	return &consoleHandler{out: out, level: level, addSource: addSource, mu: new(sync.Mutex)}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.prefix = clone.prefix[:len(clone.prefix):len(clone.prefix)]
	for _, attr := range attrs {
		if len(clone.groups) == 0 && attr.Key == FieldComponent {
			if clone.component == "" {
				clone.component = componentText(attr.Value)
			}
			continue
		}
		clone.prefix = appendFlattened(clone.prefix, clone.groups, attr)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(clone.groups[:len(clone.groups):len(clone.groups)], name)
	return &clone
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	component := h.component
	pairs := make([]attrPair, 0, record.NumAttrs())
	record.Attrs(func(attr slog.Attr) bool {
		if len(h.groups) == 0 && attr.Key == FieldComponent {
			if component == "" {
				component = componentText(attr.Value)
			}
			return true
		}
		pairs = appendFlattened(pairs, h.groups, attr)
		return true
	})

	var line strings.Builder
	line.Grow(96 + 24*(len(h.prefix)+len(pairs)))

	line.WriteString(ts.UTC().Format(time.RFC3339))
	line.WriteByte(' ')
	line.WriteString(levelLabel(record.Level))
	line.WriteByte(' ')
	if component != "" {
		line.WriteString(component)
		line.WriteString(": ")
	}
	if msg := strings.TrimSpace(record.Message); msg != "" {
		line.WriteString(msg)
	} else {
		line.WriteString("(no message)")
	}
	if h.addSource && record.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{record.PC})
		if frame, _ := frames.Next(); frame.File != "" {
			fmt.Fprintf(&line, " [%s:%d]", filepath.Base(frame.File), frame.Line)
		}
	}
	writePairs(&line, h.prefix)
	writePairs(&line, pairs)
	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, line.String())
	return err
}

func writePairs(line *strings.Builder, pairs []attrPair) {
	for _, pair := range pairs {
		line.WriteByte(' ')
		line.WriteString(pair.key)
		line.WriteByte('=')
		line.WriteString(pair.value)
	}
}

// appendFlattened turns attr into rendered key=value pairs, expanding
// groups into dotted keys. Empty attrs and empty keys are dropped.
func appendFlattened(dst []attrPair, groups []string, attr slog.Attr) []attrPair {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		scope := groups
		if attr.Key != "" {
			scope = append(append(make([]string, 0, len(groups)+1), groups...), attr.Key)
		}
		for _, nested := range attr.Value.Group() {
			dst = appendFlattened(dst, scope, nested)
		}
		return dst
	}
	if attr.Key == "" {
		return dst
	}
	key := attr.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	return append(dst, attrPair{key: key, value: renderValue(attr.Value)})
}

func componentText(v slog.Value) string {
	v = v.Resolve()
	if v.Kind() == slog.KindString {
		return v.String()
	}
	return fmt.Sprint(v.Any())
}

func renderValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return quoteIfNeeded(v.String())
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	default:
		if err, ok := v.Any().(error); ok {
			return quoteIfNeeded(err.Error())
		}
		return quoteIfNeeded(fmt.Sprint(v.Any()))
	}
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return strconv.Quote(s)
		}
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
