package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateGenerator(); err != nil {
		return err
	}
	if err := c.validateEnhancers(); err != nil {
		return err
	}
	if err := c.validateCovers(); err != nil {
		return err
	}
	if err := c.validateJournal(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.FPS <= 0 {
		return errors.New("render.fps must be positive")
	}
	if c.Render.FPS > 240 {
		return errors.New("render.fps is unreasonably high (max 240)")
	}
	return nil
}

func (c *Config) validateGenerator() error {
	switch c.Generator.Preprocess {
	case "crop", "resize", "full":
	default:
		return fmt.Errorf("generator.preprocess must be one of crop, resize, full (got %q)", c.Generator.Preprocess)
	}
	switch c.Generator.Style {
	case "still", "pose":
	default:
		return fmt.Errorf("generator.style must be still or pose (got %q)", c.Generator.Style)
	}
	if strings.TrimSpace(c.Generator.PythonBinary) == "" {
		return errors.New("generator.python_binary must be set")
	}
	return nil
}

func (c *Config) validateEnhancers() error {
	switch strings.ToLower(c.Enhancers.Face) {
	case "", "gfpgan", "restoreformer":
	default:
		return fmt.Errorf("enhancers.face must be gfpgan, RestoreFormer, or none (got %q)", c.Enhancers.Face)
	}
	switch strings.ToLower(c.Enhancers.Background) {
	case "", "realesrgan":
	default:
		return fmt.Errorf("enhancers.background must be realesrgan or none (got %q)", c.Enhancers.Background)
	}
	return nil
}

func (c *Config) validateCovers() error {
	if err := validateCoverDuration("covers.intro_duration", c.Covers.IntroDuration); err != nil {
		return err
	}
	if err := validateCoverDuration("covers.outro_duration", c.Covers.OutroDuration); err != nil {
		return err
	}
	if c.Covers.FadeSeconds < 0 {
		return errors.New("covers.fade_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateJournal() error {
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) == "" {
		return errors.New("journal.path must be set when journal.enabled is true")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	return nil
}

func validateCoverDuration(key, value string) error {
	if value == "auto" {
		return nil
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%s must be a second count or \"auto\" (got %q)", key, value)
	}
	if seconds <= 0 {
		return fmt.Errorf("%s must be positive (got %s)", key, value)
	}
	return nil
}
