package preflight

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/config"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/segments"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDirectoryCreatable_Existing(t *testing.T) {
	result := CheckDirectoryCreatable("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for existing dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryCreatable_MissingUnderWritableParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outputs", "1950s")
	result := CheckDirectoryCreatable("test", path)
	if !result.Passed {
		t.Fatalf("expected pass for creatable dir, got: %s", result.Detail)
	}
}

func TestCheckFileReadable(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "daniel.png")
	if err := os.WriteFile(file, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	if result := CheckFileReadable("portrait", file); !result.Passed {
		t.Fatalf("expected pass for readable file, got: %s", result.Detail)
	}
	if result := CheckFileReadable("portrait", filepath.Join(dir, "missing.png")); result.Passed {
		t.Fatal("expected failure for missing file")
	}
	if result := CheckFileReadable("portrait", dir); result.Passed {
		t.Fatal("expected failure for directory path")
	}
	if result := CheckFileReadable("portrait", ""); result.Passed {
		t.Fatal("expected failure for unconfigured path")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(nil, segments.Layout{})
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_DecadeScopedChecks(t *testing.T) {
	inputs := t.TempDir()
	cfg := config.Default()
	cfg.Paths.InputsDir = inputs
	cfg.Paths.OutputsDir = filepath.Join(t.TempDir(), "outputs")

	layout := segments.NewLayout(inputs, cfg.Paths.OutputsDir, "1950s")
	if err := os.MkdirAll(layout.SourceAudioDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(layout.ImagesDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, p := range segments.Participants() {
		if err := os.WriteFile(layout.Portrait(p), []byte("png"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	results := RunAll(&cfg, layout)
	names := map[string]Result{}
	for _, r := range results {
		names[r.Name] = r
	}
	for _, want := range []string{"FFmpeg", "FFprobe", "Python", "Generator", "Outputs directory", "Audio directory", "Daniel portrait", "Annabelle portrait"} {
		if _, ok := names[want]; !ok {
			t.Errorf("missing check %q in results", want)
		}
	}
	if !names["Audio directory"].Passed {
		t.Errorf("audio directory check failed: %s", names["Audio directory"].Detail)
	}
	if !names["Daniel portrait"].Passed {
		t.Errorf("portrait check failed: %s", names["Daniel portrait"].Detail)
	}
}

func TestRunAll_SkipsDecadeChecksWithoutDecade(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.OutputsDir = t.TempDir()

	results := RunAll(&cfg, segments.Layout{})
	for _, r := range results {
		if r.Name == "Audio directory" {
			t.Fatal("audio directory check should be decade-scoped")
		}
	}
}

func TestRunAll_CoverChecksAreOptional(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.OutputsDir = t.TempDir()
	cfg.Covers.IntroImage = filepath.Join(t.TempDir(), "missing-intro.png")

	results := RunAll(&cfg, segments.Layout{})
	found := false
	for _, r := range results {
		if r.Name == "Intro cover image" {
			found = true
			if r.Passed {
				t.Error("missing cover image should fail its check")
			}
			if !r.Optional {
				t.Error("cover asset checks must be optional")
			}
		}
	}
	if !found {
		t.Fatal("expected intro cover image check in results")
	}
}

func TestFatal(t *testing.T) {
	results := []Result{
		{Name: "FFmpeg", Passed: true},
		{Name: "Intro cover image", Passed: false, Optional: true, Detail: "does not exist"},
	}
	if err := Fatal(results); err != nil {
		t.Fatalf("optional failures must not be fatal: %v", err)
	}

	results = append(results, Result{Name: "Audio directory", Passed: false, Detail: "does not exist"})
	err := Fatal(results)
	if err == nil {
		t.Fatal("expected error for failed required check")
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("Fatal error = %v, want services.ErrNotFound", err)
	}
}
