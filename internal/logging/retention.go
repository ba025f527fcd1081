package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RetentionTarget specifies a directory and filename pattern to prune.
type RetentionTarget struct {
	Dir     string
	Pattern string
	Exclude []string
}

// CleanupOldLogs removes files matching the provided targets that are older
// than retentionDays. A retentionDays value of 0 disables pruning.
func CleanupOldLogs(logger *slog.Logger, retentionDays int, targets ...RetentionTarget) {
	if retentionDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	for _, target := range targets {
		pruneTarget(logger, target, cutoff)
	}
}

func pruneTarget(logger *slog.Logger, target RetentionTarget, cutoff time.Time) {
	dir := strings.TrimSpace(target.Dir)
	if dir == "" {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	keep := make(map[string]struct{}, len(target.Exclude))
	for _, path := range target.Exclude {
		if abs := absOrSame(strings.TrimSpace(path)); abs != "" {
			keep[abs] = struct{}{}
		}
	}

	pattern := strings.TrimSpace(target.Pattern)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if pattern != "" {
			if ok, err := filepath.Match(pattern, entry.Name()); err != nil || !ok {
				continue
			}
		}
		path := absOrSame(filepath.Join(dir, entry.Name()))
		if _, skip := keep[path]; skip {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			if logger != nil {
				logger.Warn("log retention remove failed", Path(path), Error(err))
			}
			continue
		}
		if logger != nil {
			logger.Info("log pruned", Path(path))
		}
	}
}

func absOrSame(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
