package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/config"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/logging"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/media/encoders"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/preflight"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services/ffmpeg"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services/sadtalker"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status [decade]",
		Short: "Check the rendering environment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			decade := ""
			if len(args) == 1 {
				decade = strings.TrimSpace(args[0])
			}
			layout := layoutForDecade(cfg, decade)

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			results := preflight.RunAll(cfg, layout)
			rows := make([][]string, 0, len(results))
			for _, result := range results {
				rows = append(rows, []string{result.Name, statusCell(result, colorize), result.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil))

			// Probe output goes through a clamped logger so only real
			// errors interleave with the report.
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			probeLogger := logging.WithLevelOverride(logger, slog.LevelError)

			fmt.Fprintf(out, "Encoder:   %s\n", detectEncoder(cmd, cfg, probeLogger))
			fmt.Fprintf(out, "Enhancers: %s\n", detectEnhancers(cmd, cfg))
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable([]string{"Option", "Value"}, optionRows(cfg), nil))

			if err := preflight.Fatal(results); err != nil {
				return err
			}
			fmt.Fprintln(out, "Environment ready.")
			return nil
		},
	}
}

func statusCell(result preflight.Result, colorize bool) string {
	switch {
	case result.Passed:
		return colorizeCell("OK", ansiGreen, colorize)
	case result.Optional:
		return colorizeCell("WARN", ansiYellow, colorize)
	default:
		return colorizeCell("FAIL", ansiRed, colorize)
	}
}

// detectEncoder runs the capability listing the same way a render would and
// reports which encoder a run started now would use.
func detectEncoder(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) string {
	client := ffmpeg.New(cfg.FFmpegBinary())
	client.SetLogger(logger)

	listing, err := client.EncoderList(cmd.Context())
	if err != nil {
		return "stream copy (capability listing unavailable)"
	}
	sel := encoders.Select(listing)
	if sel.IsCopy() {
		return "stream copy (no known encoder in listing)"
	}
	return sel.Name
}

func detectEnhancers(cmd *cobra.Command, cfg *config.Config) string {
	gen := sadtalker.FromConfig(cfg)
	if !gen.EnhancersEnabled() {
		return "disabled"
	}

	names := make([]string, 0, 2)
	if cfg.Enhancers.Face != "" {
		names = append(names, cfg.Enhancers.Face)
	}
	if cfg.Enhancers.Background != "" {
		names = append(names, cfg.Enhancers.Background)
	}
	label := strings.Join(names, ", ")

	if gen.ProbeEnhancers(cmd.Context()).Healthy() {
		return label + " (healthy)"
	}
	return label + " (unhealthy, runs degrade to plain rendering)"
}

func optionRows(cfg *config.Config) [][]string {
	return [][]string{
		{"FPS", strconv.Itoa(cfg.Render.FPS)},
		{"Ducking", yesNo(cfg.Render.Ducking)},
		{"Loudnorm", yesNo(cfg.Render.Loudnorm)},
		{"Static silent partner", yesNo(cfg.Render.StaticSilent)},
		{"Skip existing", yesNo(cfg.Render.SkipExisting)},
		{"Journal", yesNo(cfg.Journal.Enabled)},
		{"Notifications", yesNo(strings.TrimSpace(cfg.Notifications.NtfyTopic) != "")},
	}
}
