package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/config"
)

// chdirTemp moves the test into a fresh temp directory and restores the
// original working directory during cleanup, mirroring testing.T.Chdir.
func chdirTemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			panic("restore working directory: " + err.Error())
		}
	})
}

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	chdirTemp(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogDir := filepath.Join(tempHome, ".local", "share", "melodymind", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	if !filepath.IsAbs(cfg.Paths.InputsDir) {
		t.Fatalf("expected absolute inputs dir, got %q", cfg.Paths.InputsDir)
	}
	if !filepath.IsAbs(cfg.Paths.OutputsDir) {
		t.Fatalf("expected absolute outputs dir, got %q", cfg.Paths.OutputsDir)
	}
	if cfg.Render.FPS != 25 {
		t.Fatalf("unexpected default fps: %d", cfg.Render.FPS)
	}
	if !cfg.Render.Loudnorm {
		t.Fatal("expected loudnorm enabled by default")
	}
	if !cfg.Render.StaticSilent {
		t.Fatal("expected static silent partner enabled by default")
	}
	if cfg.Render.Ducking {
		t.Fatal("expected ducking disabled by default")
	}
	if cfg.Generator.Style != "still" {
		t.Fatalf("unexpected default style: %q", cfg.Generator.Style)
	}
	if cfg.Generator.Preprocess != "full" {
		t.Fatalf("unexpected default preprocess: %q", cfg.Generator.Preprocess)
	}
	if cfg.Enhancers.Face != "gfpgan" {
		t.Fatalf("unexpected default face enhancer: %q", cfg.Enhancers.Face)
	}
	if cfg.Covers.IntroDuration != "5.0" {
		t.Fatalf("unexpected default intro duration: %q", cfg.Covers.IntroDuration)
	}
	if !cfg.Journal.Enabled {
		t.Fatal("expected journal enabled by default")
	}
	if want := filepath.Join(tempHome, ".local", "share", "melodymind", "journal.db"); cfg.Journal.Path != want {
		t.Fatalf("unexpected journal path: got %q want %q", cfg.Journal.Path, want)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputsDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "melodymind.toml")

	type payload struct {
		Render struct {
			FPS     int  `toml:"fps"`
			Ducking bool `toml:"ducking"`
		} `toml:"render"`
		Generator struct {
			Preprocess string `toml:"preprocess"`
		} `toml:"generator"`
		Covers struct {
			IntroImage    string `toml:"intro_image"`
			IntroDuration string `toml:"intro_duration"`
		} `toml:"covers"`
		Logging struct {
			Level string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Render.FPS = 30
	custom.Render.Ducking = true
	custom.Generator.Preprocess = "crop"
	custom.Covers.IntroImage = filepath.Join(tempDir, "intro.png")
	custom.Covers.IntroDuration = "auto"
	custom.Logging.Level = "debug"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Render.FPS != 30 {
		t.Fatalf("expected fps 30, got %d", cfg.Render.FPS)
	}
	if !cfg.Render.Ducking {
		t.Fatal("expected ducking enabled from file")
	}
	if cfg.Generator.Preprocess != "crop" {
		t.Fatalf("expected preprocess crop, got %q", cfg.Generator.Preprocess)
	}
	if cfg.Covers.IntroImage != filepath.Join(tempDir, "intro.png") {
		t.Fatalf("unexpected intro image: %q", cfg.Covers.IntroImage)
	}
	if cfg.Covers.IntroDuration != "auto" {
		t.Fatalf("expected auto intro duration, got %q", cfg.Covers.IntroDuration)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug log level, got %q", cfg.Logging.Level)
	}
}

func TestNtfyTopicEnvFallback(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("MELODYMIND_NTFY_TOPIC", "https://ntfy.sh/melodymind-test")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.sh/melodymind-test" {
		t.Fatalf("expected topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	for _, fragment := range []string{"[render]", "[generator]", "ntfy_topic"} {
		if !strings.Contains(string(contents), fragment) {
			t.Fatalf("sample config missing %q: %s", fragment, contents)
		}
	}

	// Validate it decodes
	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Generator.Preprocess = "weird"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown preprocess mode")
	}

	cfg = config.Default()
	cfg.Generator.Style = "shake"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown style")
	}

	cfg = config.Default()
	cfg.Enhancers.Face = "vaseline"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown face enhancer")
	}

	cfg = config.Default()
	cfg.Covers.IntroDuration = "abc"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unparsable cover duration")
	}

	cfg = config.Default()
	cfg.Covers.OutroDuration = "-2"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative cover duration")
	}

	cfg = config.Default()
	cfg.Covers.FadeSeconds = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative fade")
	}

	cfg = config.Default()
	cfg.Render.FPS = -5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative fps")
	}
}
