package logging_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/logging"
)

func writeAgedFile(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	stamp := time.Now().Add(-age)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("chtimes %s: %v", name, err)
	}
	return path
}

func TestCleanupOldLogsRemovesExpiredRunLogs(t *testing.T) {
	dir := t.TempDir()

	old := writeAgedFile(t, dir, "run-20260101-000000.log", 40*24*time.Hour)
	fresh := writeAgedFile(t, dir, "run-20260820-000000.log", 24*time.Hour)
	unrelated := writeAgedFile(t, dir, "notes.txt", 40*24*time.Hour)
	current := writeAgedFile(t, dir, "run-20260825-000000.log", 40*24*time.Hour)

	logging.CleanupOldLogs(logging.NewNop(), 30, logging.RetentionTarget{
		Dir:     dir,
		Pattern: "run-*.log",
		Exclude: []string{current},
	})

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Errorf("expected %s to be pruned", filepath.Base(old))
	}
	for _, path := range []string{fresh, unrelated, current} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s to survive: %v", filepath.Base(path), err)
		}
	}
}

func TestCleanupOldLogsZeroDaysDisabled(t *testing.T) {
	dir := t.TempDir()
	old := writeAgedFile(t, dir, "run-20250101-000000.log", 400*24*time.Hour)

	logging.CleanupOldLogs(logging.NewNop(), 0, logging.RetentionTarget{Dir: dir, Pattern: "run-*.log"})

	if _, err := os.Stat(old); err != nil {
		t.Errorf("expected file to survive with retention disabled: %v", err)
	}
}
