package audio

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/segments"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services/ffmpeg"
)

type fakeRunner struct {
	calls [][]string
}

func (f *fakeRunner) Run(_ context.Context, binary string, args []string) (string, error) {
	f.calls = append(f.calls, append([]string{binary}, args...))
	return "", nil
}

func testLayout(t *testing.T) (segments.Layout, segments.Segment) {
	t.Helper()
	dir := t.TempDir()
	layout := segments.NewLayout(filepath.Join(dir, "in"), filepath.Join(dir, "out"), "1950s")
	layout.AudioDir = filepath.Join(dir, "audio")
	seg := segments.Segment{
		Name:       "1955_intro",
		Speaker:    segments.Daniel,
		SourcePath: filepath.Join(layout.AudioDir, "1955_intro_daniel.mp3"),
	}
	if err := os.MkdirAll(layout.WAVDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	return layout, seg
}

func TestPrepareConvertsThenMutes(t *testing.T) {
	layout, seg := testLayout(t)
	runner := &fakeRunner{}
	prep := NewPreparer(ffmpeg.New("ffmpeg", ffmpeg.WithRunner(runner)))

	if err := prep.Prepare(context.Background(), layout, seg); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("Prepare() issued %d invocations, want 2", len(runner.calls))
	}

	convert := strings.Join(runner.calls[0], " ")
	if !strings.Contains(convert, seg.SourcePath) || !strings.Contains(convert, layout.CanonicalWAV(seg)) {
		t.Fatalf("conversion call mismatch: %q", convert)
	}
	if !strings.Contains(convert, "-ar 16000 -ac 1") {
		t.Fatalf("conversion should target 16 kHz mono: %q", convert)
	}

	mute := strings.Join(runner.calls[1], " ")
	if !strings.Contains(mute, "-af volume=0") {
		t.Fatalf("silence should be synthesized by muting, got %q", mute)
	}
	if !strings.Contains(mute, layout.CanonicalWAV(seg)) {
		t.Fatalf("silence should mute the canonical track for exact duration, got %q", mute)
	}
	if strings.Contains(mute, "anullsrc") {
		t.Fatalf("silence must not come from a generated source, got %q", mute)
	}
}

func TestPrepareSkipsExistingArtifacts(t *testing.T) {
	layout, seg := testLayout(t)
	for _, path := range []string{layout.CanonicalWAV(seg), layout.SilentWAV(seg)} {
		if err := os.WriteFile(path, []byte("wav"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	runner := &fakeRunner{}
	prep := NewPreparer(ffmpeg.New("ffmpeg", ffmpeg.WithRunner(runner)))
	if err := prep.Prepare(context.Background(), layout, seg); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("Prepare() issued %d invocations on cached artifacts, want 0", len(runner.calls))
	}
}

func TestSilentPartnerNameMarksSilence(t *testing.T) {
	layout, seg := testLayout(t)
	runner := &fakeRunner{}
	prep := NewPreparer(ffmpeg.New("ffmpeg", ffmpeg.WithRunner(runner)))

	path, err := prep.EnsureSilentPartner(context.Background(), layout, seg, layout.CanonicalWAV(seg))
	if err != nil {
		t.Fatalf("EnsureSilentPartner() error = %v", err)
	}
	if !segments.IsSilenceTrack(path) {
		t.Fatalf("silent partner path %q should read as a silence track", path)
	}
	if filepath.Base(path) != "1955_intro_daniel_silent_partner.wav" {
		t.Fatalf("silent partner name = %q", filepath.Base(path))
	}
}
