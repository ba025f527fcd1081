package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	InputsDir  string `toml:"inputs_dir"`
	OutputsDir string `toml:"outputs_dir"`
	LogDir     string `toml:"log_dir"`
}

// Render contains composition and encoding settings.
type Render struct {
	FPS               int    `toml:"fps"`
	Ducking           bool   `toml:"ducking"`
	Loudnorm          bool   `toml:"loudnorm"`
	StaticSilent      bool   `toml:"static_silent"`
	SkipExisting      bool   `toml:"skip_existing"`
	DanielPortrait    string `toml:"daniel_portrait"`
	AnnabellePortrait string `toml:"annabelle_portrait"`
}

// Generator contains configuration for the talking-head animation generator.
type Generator struct {
	Dir          string `toml:"dir"`
	PythonBinary string `toml:"python_binary"`
	Preprocess   string `toml:"preprocess"`
	Style        string `toml:"style"`
}

// Enhancers contains optional generator enhancer settings.
type Enhancers struct {
	Enabled    bool   `toml:"enabled"`
	Face       string `toml:"face"`
	Background string `toml:"background"`
}

// Covers contains intro/outro cover clip settings. Durations accept a second
// count or "auto" to match the cover audio length.
type Covers struct {
	IntroImage    string  `toml:"intro_image"`
	IntroAudio    string  `toml:"intro_audio"`
	IntroDuration string  `toml:"intro_duration"`
	OutroImage    string  `toml:"outro_image"`
	OutroAudio    string  `toml:"outro_audio"`
	OutroDuration string  `toml:"outro_duration"`
	FadeSeconds   float64 `toml:"fade_seconds"`
}

// Journal contains configuration for the run history store.
type Journal struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	EpisodeDone    bool   `toml:"episode_done"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output. RetentionDays limits how
// long per-run log files are kept; zero disables pruning.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for the pipeline.
//
// Configuration sections by subsystem:
//   - Paths: inputs/outputs trees and log directory
//   - Render: frame rate, ducking, loudness, skip gating, portraits
//   - Generator: animation generator install dir and invocation style
//   - Enhancers: optional face/background enhancer selection
//   - Covers: intro/outro clip settings
//   - Journal: run history store
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Render        Render        `toml:"render"`
	Generator     Generator     `toml:"generator"`
	Enhancers     Enhancers     `toml:"enhancers"`
	Covers        Covers        `toml:"covers"`
	Journal       Journal       `toml:"journal"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/melodymind/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("melodymind.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputsDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) != "" {
		if err := os.MkdirAll(filepath.Dir(c.Journal.Path), 0o755); err != nil {
			return fmt.Errorf("create journal directory %q: %w", filepath.Dir(c.Journal.Path), err)
		}
	}
	return nil
}

// FFmpegBinary returns the rendering engine executable name.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the media probing executable name.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
