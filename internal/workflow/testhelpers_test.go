package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/config"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/journal"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/segments"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services/ffmpeg"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services/sadtalker"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/workflow"
)

// capabilityListing is an engine encoder listing carrying a primary
// candidate and a fallback candidate.
const capabilityListing = "Encoders:\n" +
	" V....D libx264              H.264 / AVC (codec h264)\n" +
	" V....D libopenh264          OpenH264 (codec h264)\n" +
	" A....D aac                  AAC (Advanced Audio Coding)"

// renderRunner fakes engine execution. It serves the capability listing,
// writes whatever output artifact a render call names last, and can be
// told to fail specific call shapes. Calls are told apart by their
// distinguishing flags: -encoders for the capability probe,
// -filter_complex for composition, -vf for covers, -safe for the final
// concat, and -loop without -vf for still-image loops.
type renderRunner struct {
	listing string
	calls   [][]string

	failListing     bool
	failCovers      bool
	composeFailures int
}

func (r *renderRunner) Run(_ context.Context, _ string, args []string) (string, error) {
	r.calls = append(r.calls, append([]string(nil), args...))

	if hasArg(args, "-encoders") {
		if r.failListing {
			return "", errors.New("listing unavailable")
		}
		return r.listing, nil
	}
	if hasArg(args, "-filter_complex") && r.composeFailures > 0 {
		r.composeFailures--
		return "", errors.New("composition crashed")
	}
	if hasArg(args, "-vf") && r.failCovers {
		return "", errors.New("cover render crashed")
	}

	out := args[len(args)-1]
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(out, []byte("rendered"), 0o644); err != nil {
		return "", err
	}
	return "", nil
}

// countCalls returns how many recorded calls carry the given flag.
func (r *renderRunner) countCalls(flag string) int {
	n := 0
	for _, call := range r.calls {
		if hasArg(call, flag) {
			n++
		}
	}
	return n
}

func hasArg(args []string, want string) bool {
	for _, arg := range args {
		if arg == want {
			return true
		}
	}
	return false
}

func argValue(args []string, flag string) string {
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// stubNotifier records notification deliveries.
type stubNotifier struct {
	finished []string
	failed   []string
}

func (s *stubNotifier) NotifyEpisodeFinished(_ context.Context, title, episodePath string, _ time.Duration) error {
	s.finished = append(s.finished, title+" "+episodePath)
	return nil
}

func (s *stubNotifier) NotifyRunFailed(_ context.Context, title string, _ error) error {
	s.failed = append(s.failed, title)
	return nil
}

func (s *stubNotifier) TestNotification(context.Context) error { return nil }

// pipelineEnv is a complete on-disk environment for one render run: source
// audio and portraits for the 1950s decade, a generator install, stub
// binaries on PATH so preflight passes, and a config pointing at all of it.
type pipelineEnv struct {
	tmp      string
	cfg      *config.Config
	layout   segments.Layout
	runner   *renderRunner
	client   *ffmpeg.Client
	gen      *sadtalker.Service
	genCalls int
	notifier *stubNotifier
}

func newPipelineEnv(t *testing.T) *pipelineEnv {
	t.Helper()
	tmp := t.TempDir()

	binDir := filepath.Join(tmp, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("create bin dir: %v", err)
	}
	for _, name := range []string{"ffmpeg", "ffprobe", "python3"} {
		writeExecutable(t, binDir, name)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	inputs := filepath.Join(tmp, "inputs")
	outputs := filepath.Join(tmp, "outputs")
	audioDir := filepath.Join(inputs, "1950s", "audio")
	imagesDir := filepath.Join(inputs, "1950s", "images")
	for _, dir := range []string{audioDir, imagesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("create %s: %v", dir, err)
		}
	}
	writeFixture(t, filepath.Join(audioDir, "01_interview_daniel.mp3"))
	writeFixture(t, filepath.Join(audioDir, "02_reaction_annabelle.mp3"))
	writeFixture(t, filepath.Join(imagesDir, "daniel.png"))
	writeFixture(t, filepath.Join(imagesDir, "annabelle.png"))

	genDir := filepath.Join(tmp, "SadTalker")
	if err := os.MkdirAll(genDir, 0o755); err != nil {
		t.Fatalf("create generator dir: %v", err)
	}
	writeFixture(t, filepath.Join(genDir, "inference.py"))

	cfg := config.Default()
	cfg.Paths.InputsDir = inputs
	cfg.Paths.OutputsDir = outputs
	cfg.Paths.LogDir = filepath.Join(tmp, "logs")
	cfg.Generator.Dir = genDir
	cfg.Journal.Path = filepath.Join(tmp, "journal.db")

	env := &pipelineEnv{
		tmp:      tmp,
		cfg:      &cfg,
		layout:   segments.NewLayout(inputs, outputs, "1950s"),
		runner:   &renderRunner{listing: capabilityListing},
		notifier: &stubNotifier{},
	}
	env.client = ffmpeg.New(cfg.FFmpegBinary(), ffmpeg.WithRunner(env.runner))

	// The generator stub drops a clip into the requested result directory,
	// exactly like a successful inference run. No enhancers, so the
	// pipeline never probes the python environment.
	env.gen = sadtalker.NewService(sadtalker.Config{
		Dir:        genDir,
		Python:     "python3",
		Preprocess: "full",
		Still:      true,
	})
	env.gen.WithCommandRunner(func(_ context.Context, _, _ string, args ...string) error {
		env.genCalls++
		resultDir := argValue(args, "--result_dir")
		if resultDir == "" {
			return errors.New("missing --result_dir")
		}
		return os.WriteFile(filepath.Join(resultDir, "generated.mp4"), []byte("clip"), 0o644)
	})

	return env
}

func (e *pipelineEnv) pipeline(t *testing.T, store *journal.Store) *workflow.Pipeline {
	t.Helper()
	pipeline, err := workflow.New(workflow.Options{
		Config:    e.cfg,
		Layout:    e.layout,
		FFmpeg:    e.client,
		Generator: e.gen,
		Notifier:  e.notifier,
		Journal:   store,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return pipeline
}

func (e *pipelineEnv) openJournal(t *testing.T) *journal.Store {
	t.Helper()
	store, err := journal.Open(e.cfg.Journal.Path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func writeExecutable(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write executable %s: %v", name, err)
	}
}

func writeFixture(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("fixture"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func assertFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected artifact %s: %v", path, err)
	}
}

func assertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be absent, stat err: %v", path, err)
	}
}
