package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestWithLevelOverrideSuppressesBelowFloor(t *testing.T) {
	var out bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger := WithLevelOverride(base.With("component", "probe"), slog.LevelError)

	logger.Info("capability listing")
	if out.Len() != 0 {
		t.Fatalf("info record should be suppressed: %q", out.String())
	}

	logger.Error("listing failed")
	if !strings.Contains(out.String(), "listing failed") {
		t.Fatalf("error record missing: %q", out.String())
	}
	if !strings.Contains(out.String(), `"component":"probe"`) {
		t.Fatalf("existing attrs should survive the clamp: %q", out.String())
	}
}

func TestWithLevelOverrideReplacesExistingFloor(t *testing.T) {
	var out bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	clamped := WithLevelOverride(base, slog.LevelError)
	relaxed := WithLevelOverride(clamped, slog.LevelInfo)

	relaxed.Info("back to info")
	if !strings.Contains(out.String(), "back to info") {
		t.Fatalf("second override should replace the floor, not stack: %q", out.String())
	}
}

func TestWithLevelOverrideNilLogger(t *testing.T) {
	logger := WithLevelOverride(nil, slog.LevelInfo)
	// Must be safe to use and stay silent.
	logger.Info("nowhere to go")
}
