package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/config"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/segments"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/textutil"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// layoutForDecade derives the artifact layout for a decade, applying the
// portrait overrides from configuration. Flag-level overrides are layered
// on top by the run command.
func layoutForDecade(cfg *config.Config, decade string) segments.Layout {
	layout := segments.NewLayout(cfg.Paths.InputsDir, cfg.Paths.OutputsDir, decade)
	portraits := map[segments.Participant]string{}
	if cfg.Render.DanielPortrait != "" {
		portraits[segments.Daniel] = cfg.Render.DanielPortrait
	}
	if cfg.Render.AnnabellePortrait != "" {
		portraits[segments.Annabelle] = cfg.Render.AnnabellePortrait
	}
	if len(portraits) > 0 {
		layout.Portraits = portraits
	}
	return layout
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	return textutil.Ternary(value, "yes", "no")
}
