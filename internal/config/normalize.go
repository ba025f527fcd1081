package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeRender(); err != nil {
		return err
	}
	if err := c.normalizeGenerator(); err != nil {
		return err
	}
	c.normalizeEnhancers()
	if err := c.normalizeCovers(); err != nil {
		return err
	}
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.InputsDir) == "" {
		c.Paths.InputsDir = defaultInputsDir
	}
	if c.Paths.InputsDir, err = expandPath(c.Paths.InputsDir); err != nil {
		return fmt.Errorf("paths.inputs_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputsDir) == "" {
		c.Paths.OutputsDir = defaultOutputsDir
	}
	if c.Paths.OutputsDir, err = expandPath(c.Paths.OutputsDir); err != nil {
		return fmt.Errorf("paths.outputs_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRender() error {
	var err error
	if c.Render.FPS <= 0 {
		c.Render.FPS = defaultFPS
	}
	c.Render.DanielPortrait = strings.TrimSpace(c.Render.DanielPortrait)
	if c.Render.DanielPortrait != "" {
		if c.Render.DanielPortrait, err = expandPath(c.Render.DanielPortrait); err != nil {
			return fmt.Errorf("render.daniel_portrait: %w", err)
		}
	}
	c.Render.AnnabellePortrait = strings.TrimSpace(c.Render.AnnabellePortrait)
	if c.Render.AnnabellePortrait != "" {
		if c.Render.AnnabellePortrait, err = expandPath(c.Render.AnnabellePortrait); err != nil {
			return fmt.Errorf("render.annabelle_portrait: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeGenerator() error {
	var err error
	if strings.TrimSpace(c.Generator.Dir) == "" {
		c.Generator.Dir = defaultGeneratorDir
	}
	if c.Generator.Dir, err = expandPath(c.Generator.Dir); err != nil {
		return fmt.Errorf("generator.dir: %w", err)
	}
	c.Generator.PythonBinary = strings.TrimSpace(c.Generator.PythonBinary)
	if c.Generator.PythonBinary == "" {
		c.Generator.PythonBinary = defaultPythonBinary
	}
	c.Generator.Preprocess = strings.ToLower(strings.TrimSpace(c.Generator.Preprocess))
	if c.Generator.Preprocess == "" {
		c.Generator.Preprocess = defaultPreprocess
	}
	c.Generator.Style = strings.ToLower(strings.TrimSpace(c.Generator.Style))
	if c.Generator.Style == "" {
		c.Generator.Style = defaultStyle
	}
	return nil
}

func (c *Config) normalizeEnhancers() {
	c.Enhancers.Face = strings.TrimSpace(c.Enhancers.Face)
	if c.Enhancers.Face == "" {
		c.Enhancers.Face = defaultFaceEnhancer
	}
	// The generator's CLI is case-sensitive about enhancer names.
	switch {
	case strings.EqualFold(c.Enhancers.Face, "none"):
		c.Enhancers.Face = ""
	case strings.EqualFold(c.Enhancers.Face, "gfpgan"):
		c.Enhancers.Face = "gfpgan"
	case strings.EqualFold(c.Enhancers.Face, "restoreformer"):
		c.Enhancers.Face = "RestoreFormer"
	}
	c.Enhancers.Background = strings.TrimSpace(c.Enhancers.Background)
	switch {
	case strings.EqualFold(c.Enhancers.Background, "none"):
		c.Enhancers.Background = ""
	case strings.EqualFold(c.Enhancers.Background, "realesrgan"):
		c.Enhancers.Background = "realesrgan"
	}
}

func (c *Config) normalizeCovers() error {
	var err error
	for name, field := range map[string]*string{
		"covers.intro_image": &c.Covers.IntroImage,
		"covers.intro_audio": &c.Covers.IntroAudio,
		"covers.outro_image": &c.Covers.OutroImage,
		"covers.outro_audio": &c.Covers.OutroAudio,
	} {
		*field = strings.TrimSpace(*field)
		if *field == "" {
			continue
		}
		if *field, err = expandPath(*field); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	c.Covers.IntroDuration = strings.ToLower(strings.TrimSpace(c.Covers.IntroDuration))
	if c.Covers.IntroDuration == "" {
		c.Covers.IntroDuration = defaultCoverDuration
	}
	c.Covers.OutroDuration = strings.ToLower(strings.TrimSpace(c.Covers.OutroDuration))
	if c.Covers.OutroDuration == "" {
		c.Covers.OutroDuration = defaultCoverDuration
	}
	return nil
}

func (c *Config) normalizeJournal() error {
	var err error
	if strings.TrimSpace(c.Journal.Path) == "" {
		c.Journal.Path = defaultJournalPath
	}
	if c.Journal.Path, err = expandPath(c.Journal.Path); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("MELODYMIND_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
