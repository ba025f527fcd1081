package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level            string
	Format           string
	OutputPaths      []string
	ErrorOutputPaths []string
	Development      bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))

	sink, err := newSinkWriter(opts.OutputPaths, opts.ErrorOutputPaths)
	if err != nil {
		return nil, err
	}

	addSource := opts.Development || levelVar.Level() <= slog.LevelDebug

	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "json":
		return slog.New(newJSONHandler(sink, levelVar, addSource)), nil
	case "console", "":
		return slog.New(newConsoleHandler(sink, levelVar, addSource)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewFromConfig creates a logger using application config defaults. The log
// file mirrors console output so a run leaves a reviewable trace.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", OutputPaths: []string{"stdout"}, ErrorOutputPaths: []string{"stderr"}})
	}

	outputPaths := []string{"stdout"}
	errorOutputs := []string{"stderr"}
	if cfg.Paths.LogDir != "" {
		if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		logPath := filepath.Join(cfg.Paths.LogDir, "melodymind.log")
		outputPaths = append(outputPaths, logPath)
		errorOutputs = append(errorOutputs, logPath)
	}

	opts := Options{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: errorOutputs,
		Development:      false,
	}
	return New(opts)
}

// NewRunLogger builds the logger for a single render run. On top of the
// standard config logger it tees a full-detail JSON trace into
// run-<timestamp>.log under the log directory, and prunes traces older than
// the retention window. The returned path is empty when no log directory is
// configured.
func NewRunLogger(cfg *config.Config) (*slog.Logger, string, error) {
	base, err := NewFromConfig(cfg)
	if err != nil {
		return nil, "", err
	}
	if cfg == nil || cfg.Paths.LogDir == "" {
		return base, "", nil
	}

	runPath := filepath.Join(cfg.Paths.LogDir, "run-"+time.Now().UTC().Format("20060102-150405")+".log")
	file, err := os.OpenFile(runPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, "", fmt.Errorf("open run log %s: %w", runPath, err)
	}

	// The run trace always captures debug detail, independent of the
	// console level.
	traceLevel := new(slog.LevelVar)
	traceLevel.Set(slog.LevelDebug)
	logger := TeeLogger(base, newJSONHandler(file, traceLevel, false))

	CleanupOldLogs(logger, cfg.Logging.RetentionDays, RetentionTarget{
		Dir:     cfg.Paths.LogDir,
		Pattern: "run-*.log",
		Exclude: []string{runPath},
	})

	return logger, runPath, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newSinkWriter opens every distinct output path once and fans writes out to
// all of them. "stdout" and "stderr" name the process streams; anything else
// is opened for append, creating parent directories as needed.
func newSinkWriter(outputPaths, errorPaths []string) (io.Writer, error) {
	if len(outputPaths) == 0 {
		outputPaths = []string{"stdout"}
	}
	if len(errorPaths) == 0 {
		errorPaths = []string{"stderr"}
	}

	seen := make(map[string]struct{}, len(outputPaths)+len(errorPaths))
	var writers []io.Writer
	for _, path := range append(append([]string{}, outputPaths...), errorPaths...) {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}

		w, err := openSink(path)
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	}

	switch len(writers) {
	case 0:
		return os.Stdout, nil
	case 1:
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}

func openSink(path string) (io.Writer, error) {
	switch path {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory for %s: %w", path, err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

func newJSONHandler(w io.Writer, level *slog.LevelVar, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		AddSource:   addSource,
		ReplaceAttr: normalizeJSONAttr,
	})
}

// normalizeJSONAttr renames slog's built-in record keys to the compact
// spellings the run traces use and formats timestamps as UTC RFC3339.
// Attributes inside groups pass through untouched.
func normalizeJSONAttr(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return attr
	}
	switch attr.Key {
	case slog.TimeKey:
		attr.Key = "ts"
		if attr.Value.Kind() == slog.KindTime {
			attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
		}
	case slog.LevelKey:
		attr.Key = "level"
		attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
	case slog.MessageKey:
		attr.Key = "msg"
	case slog.SourceKey:
		if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
			attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
		}
	}
	return attr
}
