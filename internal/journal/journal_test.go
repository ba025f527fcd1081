package journal_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/journal"
)

func openStore(t *testing.T) *journal.Store {
	t.Helper()
	store, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	id, err := store.StartRun(ctx, "key-1", "1950s", "The 1950s — MelodyMind", "libx264")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if id == 0 {
		t.Fatal("expected run ID to be assigned")
	}

	run, err := store.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run == nil || run.Status != journal.StatusRunning {
		t.Fatalf("unexpected run after start: %#v", run)
	}
	if run.FinishedAt != nil {
		t.Fatalf("running run should have no finish time, got %v", run.FinishedAt)
	}

	counters := journal.Counters{SegmentsTotal: 4, SegmentsSkipped: 1, Fallbacks: 1, CoversBuilt: 2}
	if err := store.CompleteRun(ctx, id, "/out/1950s/finished/1950s.mp4", counters); err != nil {
		t.Fatalf("CompleteRun failed: %v", err)
	}

	run, err = store.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun after completion failed: %v", err)
	}
	if run.Status != journal.StatusCompleted {
		t.Errorf("status = %s, want %s", run.Status, journal.StatusCompleted)
	}
	if run.EpisodePath != "/out/1950s/finished/1950s.mp4" {
		t.Errorf("episode path = %q", run.EpisodePath)
	}
	if run.SegmentsTotal != 4 || run.SegmentsSkipped != 1 || run.Fallbacks != 1 || run.CoversBuilt != 2 {
		t.Errorf("counters not persisted: %#v", run)
	}
	if run.FinishedAt == nil {
		t.Error("completed run should carry a finish time")
	}
}

func TestFailRunKeepsMessage(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	id, err := store.StartRun(ctx, "key-2", "1960s", "", "copy")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if err := store.FailRun(ctx, id, "compose: degraded retry with mpeg4 failed", journal.Counters{SegmentsTotal: 2}); err != nil {
		t.Fatalf("FailRun failed: %v", err)
	}

	run, err := store.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Status != journal.StatusFailed {
		t.Errorf("status = %s, want %s", run.Status, journal.StatusFailed)
	}
	if run.ErrorMessage == "" {
		t.Error("failed run should keep its error message")
	}
	if run.EpisodePath != "" {
		t.Errorf("failed run should have no episode path, got %q", run.EpisodePath)
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for _, decade := range []string{"1950s", "1960s", "1970s"} {
		if _, err := store.StartRun(ctx, "key-"+decade, decade, "", "libx264"); err != nil {
			t.Fatalf("StartRun %s failed: %v", decade, err)
		}
	}

	runs, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Decade != "1970s" || runs[1].Decade != "1960s" {
		t.Errorf("unexpected order: %s, %s", runs[0].Decade, runs[1].Decade)
	}
}

func TestSegmentsRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	id, err := store.StartRun(ctx, "key-3", "1950s", "", "libx264")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}

	records := []journal.SegmentRecord{
		{Name: "1955_intro", Speaker: "daniel", Skipped: true},
		{Name: "1955_oldies", Speaker: "annabelle", Fallback: true, Encoder: "libopenh264", Degraded: "ducking,loudnorm,fps-lock"},
	}
	for _, rec := range records {
		if err := store.RecordSegment(ctx, id, rec); err != nil {
			t.Fatalf("RecordSegment %s failed: %v", rec.Name, err)
		}
	}

	got, err := store.Segments(ctx, id)
	if err != nil {
		t.Fatalf("Segments failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 segment rows, got %d", len(got))
	}
	if !got[0].Skipped || got[0].Name != "1955_intro" {
		t.Errorf("first row mismatch: %#v", got[0])
	}
	if !got[1].Fallback || got[1].Encoder != "libopenh264" || got[1].Degraded != "ducking,loudnorm,fps-lock" {
		t.Errorf("second row mismatch: %#v", got[1])
	}
}

func TestReopenExistingDatabase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.db")

	first, err := journal.Open(path)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	ctx := context.Background()
	if _, err := first.StartRun(ctx, "key-4", "1980s", "", ""); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second, err := journal.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	runs, err := second.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Decade != "1980s" {
		t.Fatalf("history not preserved across reopen: %#v", runs)
	}
}
