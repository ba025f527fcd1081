package sadtalker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/config"
)

// Service drives the external animation generator.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, dir, name string, args ...string) error
	probeRunner   func(ctx context.Context, name string, args ...string) (string, error)
}

// NewService creates a generator service with the given configuration.
func NewService(cfg Config) *Service {
	if cfg.Python == "" {
		cfg.Python = DefaultPython
	}
	if cfg.Preprocess == "" {
		cfg.Preprocess = PreprocessFull
	}
	return &Service{cfg: cfg}
}

// FromConfig builds a generator service from application configuration.
// Enhancer names are only carried over while the enhancer stack is enabled.
func FromConfig(cfg *config.Config) *Service {
	sc := Config{
		Dir:        cfg.Generator.Dir,
		Python:     cfg.Generator.PythonBinary,
		Preprocess: cfg.Generator.Preprocess,
		Still:      cfg.Generator.Style != "pose",
	}
	if cfg.Enhancers.Enabled {
		sc.FaceEnhancer = cfg.Enhancers.Face
		sc.BackgroundEnhancer = cfg.Enhancers.Background
	}
	return NewService(sc)
}

// WithCommandRunner sets a custom generator runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, dir, name string, args ...string) error) {
	s.commandRunner = runner
}

// WithProbeRunner sets a custom probe runner (for testing).
func (s *Service) WithProbeRunner(runner func(ctx context.Context, name string, args ...string) (string, error)) {
	s.probeRunner = runner
}

// Dir returns the generator installation root.
func (s *Service) Dir() string {
	return s.cfg.Dir
}

// EnhancersEnabled reports whether any enhancer flag would be passed.
func (s *Service) EnhancersEnabled() bool {
	return s.cfg.FaceEnhancer != "" || s.cfg.BackgroundEnhancer != ""
}

// DisableEnhancers drops all enhancer flags for the rest of the run. Used
// when the dependency probe finds the enhancer stack broken.
func (s *Service) DisableEnhancers() {
	s.cfg.FaceEnhancer = ""
	s.cfg.BackgroundEnhancer = ""
}

// Request describes one generator invocation.
type Request struct {
	// Audio is the driven speech track.
	Audio string
	// Image is the host portrait.
	Image string
	// ResultDir is an empty directory the generator writes its clip into.
	ResultDir string
}

// Generate runs the animation generator for one request. The generator's
// own output streams through to the console; these renders run for minutes
// and hiding their progress makes the pipeline look hung.
func (s *Service) Generate(ctx context.Context, req Request) error {
	args := s.buildArgs(req)
	if s.commandRunner != nil {
		return s.commandRunner(ctx, s.cfg.Dir, s.cfg.Python, args...)
	}
	cmd := exec.CommandContext(ctx, s.cfg.Python, args...) //nolint:gosec
	cmd.Dir = s.cfg.Dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", s.cfg.Python, InferenceScript, err)
	}
	return nil
}

// buildArgs constructs the inference command arguments.
func (s *Service) buildArgs(req Request) []string {
	args := []string{
		InferenceScript,
		"--driven_audio", req.Audio,
		"--source_image", req.Image,
		"--result_dir", req.ResultDir,
		"--preprocess", s.cfg.Preprocess,
	}
	if s.cfg.Still {
		args = append(args, "--still")
	} else {
		args = append(args, "--pose")
	}
	if s.cfg.FaceEnhancer != "" {
		args = append(args, "--enhancer", s.cfg.FaceEnhancer)
	}
	if s.cfg.BackgroundEnhancer != "" {
		args = append(args, "--background_enhancer", s.cfg.BackgroundEnhancer)
	}
	return args
}

// ProbeResult reports the health of the optional enhancer stack.
type ProbeResult struct {
	OK          bool              `json:"ok"`
	Errors      map[string]string `json:"errors"`
	MissingAttr bool              `json:"missing_attr"`
}

// Healthy reports whether enhancers can run without crashing the generator.
func (r ProbeResult) Healthy() bool {
	return r.OK && !r.MissingAttr
}

// probeScript import-tests the enhancer stack in a throwaway interpreter.
// basicsr still expects torchvision.transforms.functional_tensor, which
// newer torchvision releases removed; running enhancers on such an
// environment crashes mid-render, so it is detected up front.
const probeScript = "import importlib, json, sys;\n" +
	"mods=['basicsr','gfpgan','realesrgan'];\n" +
	"ok=True;\n" +
	"errors={};\n" +
	"import torch, torchvision;\n" +
	"missing_attr=not hasattr(__import__('torchvision').transforms,'functional_tensor');\n" +
	"for m in mods:\n" +
	"  try: importlib.import_module(m)\n" +
	"  except Exception as e: ok=False; errors[m]=str(e)\n" +
	"print(json.dumps({'ok':ok,'errors':errors,'missing_attr':missing_attr}))"

// ProbeEnhancers checks the enhancer dependency chain. Any probe failure
// is reported as unhealthy rather than an error, so callers degrade to
// enhancer-free rendering instead of aborting.
func (s *Service) ProbeEnhancers(ctx context.Context) ProbeResult {
	output, err := s.runProbe(ctx, s.cfg.Python, "-c", probeScript)
	if err != nil {
		return ProbeResult{}
	}
	var result ProbeResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(output)), &result); err != nil {
		return ProbeResult{}
	}
	return result
}

func (s *Service) runProbe(ctx context.Context, name string, args ...string) (string, error) {
	if s.probeRunner != nil {
		return s.probeRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return string(output), nil
}
