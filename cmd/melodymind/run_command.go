package main

import (
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/config"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/journal"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/logging"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/notifications"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/segments"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services/ffmpeg"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services/sadtalker"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/workflow"
)

type runFlags struct {
	decade string

	audioDir       string
	danielImage    string
	annabelleImage string

	still        bool
	pose         bool
	preprocess   string
	sadtalkerDir string
	fps          int

	noEnhancers        bool
	enhancer           string
	backgroundEnhancer string

	ducking        bool
	noLoudnorm     bool
	noStaticSilent bool
	skipExisting   bool

	introImage    string
	introAudio    string
	introDuration string
	outroImage    string
	outroAudio    string
	outroDuration string
	fade          float64
	noIntro       bool
	noOutro       bool

	quiet   bool
	verbose bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Render a decade's dialogue episode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runPipeline(cmd, cfg, flags)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&flags.decade, "decade", "", "Decade to render (e.g. 1950s)")
	fs.StringVar(&flags.audioDir, "audio-dir", "", "Override the segment audio directory")
	fs.StringVar(&flags.danielImage, "daniel-image", "", "Override daniel's portrait image")
	fs.StringVar(&flags.annabelleImage, "annabelle-image", "", "Override annabelle's portrait image")
	fs.BoolVar(&flags.still, "still", false, "Animate with a still head pose")
	fs.BoolVar(&flags.pose, "pose", false, "Animate with free head movement")
	fs.StringVar(&flags.preprocess, "preprocess", "", "Generator preprocess mode (crop, resize, full)")
	fs.StringVar(&flags.sadtalkerDir, "sadtalker-dir", "", "Talking-head generator install directory")
	fs.IntVar(&flags.fps, "fps", 0, "Output frame rate")
	fs.BoolVar(&flags.noEnhancers, "no-enhancers", false, "Render without face/background enhancers")
	fs.StringVar(&flags.enhancer, "enhancer", "", "Face enhancer (gfpgan, RestoreFormer)")
	fs.StringVar(&flags.backgroundEnhancer, "background-enhancer", "", "Background enhancer (realesrgan)")
	fs.BoolVar(&flags.ducking, "ducking", false, "Duck the partner track under the speaker")
	fs.BoolVar(&flags.noLoudnorm, "no-loudnorm", false, "Skip loudness normalization")
	fs.BoolVar(&flags.noStaticSilent, "no-static-silent", false, "Animate silent partners instead of looping their portrait")
	fs.BoolVar(&flags.skipExisting, "skip-existing", false, "Skip segments whose artifacts already exist")
	fs.StringVar(&flags.introImage, "intro-image", "", "Intro cover image")
	fs.StringVar(&flags.introAudio, "intro-audio", "", "Intro cover audio")
	fs.StringVar(&flags.introDuration, "intro-duration", "", "Intro cover duration in seconds, or auto")
	fs.StringVar(&flags.outroImage, "outro-image", "", "Outro cover image")
	fs.StringVar(&flags.outroAudio, "outro-audio", "", "Outro cover audio")
	fs.StringVar(&flags.outroDuration, "outro-duration", "", "Outro cover duration in seconds, or auto")
	fs.Float64Var(&flags.fade, "fade", 0, "Cover fade-in/out length in seconds")
	fs.BoolVar(&flags.noIntro, "no-intro", false, "Render without an intro cover")
	fs.BoolVar(&flags.noOutro, "no-outro", false, "Render without an outro cover")
	fs.BoolVarP(&flags.quiet, "quiet", "q", false, "Only log warnings and errors to the console")
	fs.BoolVarP(&flags.verbose, "verbose", "v", false, "Log debug detail and pass engine output through")

	_ = cmd.MarkFlagRequired("decade")

	return cmd
}

// applyRunFlags folds explicitly set flags into the loaded configuration.
// Flags always win over the file for the current run.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config, flags *runFlags) error {
	if flags.still && flags.pose {
		return errors.New("--still and --pose are mutually exclusive")
	}
	if flags.quiet && flags.verbose {
		return errors.New("--quiet and --verbose are mutually exclusive")
	}

	changed := cmd.Flags().Changed

	if flags.still {
		cfg.Generator.Style = "still"
	}
	if flags.pose {
		cfg.Generator.Style = "pose"
	}
	if changed("preprocess") {
		cfg.Generator.Preprocess = flags.preprocess
	}
	if changed("sadtalker-dir") {
		dir, err := config.ExpandPath(flags.sadtalkerDir)
		if err != nil {
			return fmt.Errorf("resolve --sadtalker-dir: %w", err)
		}
		cfg.Generator.Dir = dir
	}
	if changed("fps") {
		cfg.Render.FPS = flags.fps
	}

	if changed("enhancer") {
		cfg.Enhancers.Face = flags.enhancer
		cfg.Enhancers.Enabled = true
	}
	if changed("background-enhancer") {
		cfg.Enhancers.Background = flags.backgroundEnhancer
		cfg.Enhancers.Enabled = true
	}
	if flags.noEnhancers {
		cfg.Enhancers.Enabled = false
	}

	if flags.ducking {
		cfg.Render.Ducking = true
	}
	if flags.noLoudnorm {
		cfg.Render.Loudnorm = false
	}
	if flags.noStaticSilent {
		cfg.Render.StaticSilent = false
	}
	if flags.skipExisting {
		cfg.Render.SkipExisting = true
	}

	coverPaths := map[string]struct {
		flag  string
		value string
		field *string
	}{
		"intro-image": {"--intro-image", flags.introImage, &cfg.Covers.IntroImage},
		"intro-audio": {"--intro-audio", flags.introAudio, &cfg.Covers.IntroAudio},
		"outro-image": {"--outro-image", flags.outroImage, &cfg.Covers.OutroImage},
		"outro-audio": {"--outro-audio", flags.outroAudio, &cfg.Covers.OutroAudio},
	}
	for name, entry := range coverPaths {
		if !changed(name) {
			continue
		}
		path, err := config.ExpandPath(entry.value)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", entry.flag, err)
		}
		*entry.field = path
	}
	if changed("intro-duration") {
		cfg.Covers.IntroDuration = flags.introDuration
	}
	if changed("outro-duration") {
		cfg.Covers.OutroDuration = flags.outroDuration
	}
	if changed("fade") {
		cfg.Covers.FadeSeconds = flags.fade
	}
	if flags.noIntro {
		cfg.Covers.IntroImage = ""
		cfg.Covers.IntroAudio = ""
	}
	if flags.noOutro {
		cfg.Covers.OutroImage = ""
		cfg.Covers.OutroAudio = ""
	}

	if flags.quiet {
		cfg.Logging.Level = "warn"
	}
	if flags.verbose {
		cfg.Logging.Level = "debug"
	}

	return nil
}

// buildRunLayout layers the run command's path overrides on top of the
// config-derived layout.
func buildRunLayout(cfg *config.Config, flags *runFlags) (segments.Layout, error) {
	layout := layoutForDecade(cfg, flags.decade)

	if flags.audioDir != "" {
		dir, err := config.ExpandPath(flags.audioDir)
		if err != nil {
			return layout, fmt.Errorf("resolve --audio-dir: %w", err)
		}
		layout.AudioDir = dir
	}

	portraits := layout.Portraits
	if portraits == nil {
		portraits = map[segments.Participant]string{}
	}
	for participant, value := range map[segments.Participant]string{
		segments.Daniel:    flags.danielImage,
		segments.Annabelle: flags.annabelleImage,
	} {
		if value == "" {
			continue
		}
		path, err := config.ExpandPath(value)
		if err != nil {
			return layout, fmt.Errorf("resolve portrait override for %s: %w", participant, err)
		}
		portraits[participant] = path
	}
	if len(portraits) > 0 {
		layout.Portraits = portraits
	}

	return layout, nil
}

func runPipeline(cmd *cobra.Command, cfg *config.Config, flags *runFlags) error {
	if err := applyRunFlags(cmd, cfg, flags); err != nil {
		return err
	}

	layout, err := buildRunLayout(cfg, flags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, runLog, err := logging.NewRunLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	client := ffmpeg.New(cfg.FFmpegBinary(), ffmpeg.WithVerbose(flags.verbose))
	client.SetLogger(logger)

	var store *journal.Store
	if cfg.Journal.Enabled {
		store, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			logger.Warn("journal unavailable, run history disabled", logging.Error(err))
			store = nil
		} else {
			defer store.Close()
		}
	}

	pipeline, err := workflow.New(workflow.Options{
		Config:    cfg,
		Layout:    layout,
		FFmpeg:    client,
		Generator: sadtalker.FromConfig(cfg),
		Notifier:  notifications.NewService(cfg),
		Journal:   store,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	outcome, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	printRunSummary(cmd.OutOrStdout(), outcome, runLog)
	return nil
}

func printRunSummary(out io.Writer, outcome *workflow.Outcome, runLog string) {
	if outcome.NoSegments {
		fmt.Fprintf(out, "No dialogue segments found for %s; nothing to render.\n", outcome.Decade)
		return
	}

	fmt.Fprintf(out, "Episode ready: %s\n", outcome.EpisodePath)
	row := []string{
		strconv.Itoa(outcome.SegmentsTotal),
		strconv.Itoa(outcome.Skipped),
		strconv.Itoa(outcome.Fallbacks),
		fmt.Sprintf("%d/%d", outcome.CoversBuilt, outcome.CoversBuilt+outcome.CoversDropped),
		outcome.Encoder,
		outcome.Elapsed.Round(time.Second).String(),
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Segments", "Skipped", "Fallbacks", "Covers", "Encoder", "Elapsed"},
		[][]string{row},
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft, alignRight},
	))
	if runLog != "" {
		fmt.Fprintf(out, "Run log: %s\n", runLog)
	}
}
