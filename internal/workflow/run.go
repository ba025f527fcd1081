package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/clips"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/compose"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/covers"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/episode"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/logging"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/media/audio"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/media/encoders"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/preflight"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/segments"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/textutil"
)

// Run renders the configured decade and returns a summary of what was done.
func (p *Pipeline) Run(ctx context.Context) (*Outcome, error) {
	started := time.Now()
	runKey := uuid.NewString()
	ctx = services.WithRunID(ctx, runKey)
	ctx = services.WithDecade(ctx, p.layout.Decade)

	outcome := &Outcome{
		Decade: p.layout.Decade,
		Title:  textutil.DisplayTitle(p.layout.Decade),
	}
	logger := logging.WithContext(ctx, p.logger)
	var runID int64

	fail := func(err error) (*Outcome, error) {
		outcome.Elapsed = time.Since(started)
		logger.Error("run failed",
			logging.Error(err),
			logging.Duration("elapsed", outcome.Elapsed))
		p.journalFail(ctx, runID, outcome, err)
		p.notifyFailure(ctx, outcome.Title, err)
		return outcome, err
	}

	logger.Info("run started", logging.String("title", outcome.Title))

	if err := p.runPreflight(logger); err != nil {
		return fail(err)
	}

	// Unsatisfiable cover specs abort before any rendering; a cover that
	// merely fails to render later is dropped instead.
	specs := p.coverSpecs()
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return fail(err)
		}
	}

	segs, err := segments.Scan(p.layout.SourceAudioDir())
	if err != nil {
		return fail(services.Wrap(services.ErrTransient, "workflow", "scan", "discover segments", err))
	}
	if len(segs) == 0 {
		outcome.NoSegments = true
		outcome.Elapsed = time.Since(started)
		logger.Info("no segments found, nothing to render",
			logging.Path(p.layout.SourceAudioDir()))
		return outcome, nil
	}
	outcome.SegmentsTotal = len(segs)
	logger.Info("segments discovered", logging.Int("count", len(segs)))

	if err := p.layout.EnsureDirectories(); err != nil {
		return fail(services.Wrap(services.ErrTransient, "workflow", "prepare", "create output tree", err))
	}

	sel := p.selectEncoder(ctx, logger)
	outcome.Encoder = sel.Name

	if p.generator.EnhancersEnabled() {
		if probe := p.generator.ProbeEnhancers(ctx); !probe.Healthy() {
			logger.Warn("enhancer stack unhealthy, rendering without enhancers")
			p.generator.DisableEnhancers()
		}
	}

	runID = p.journalStart(ctx, runKey, outcome)

	preparer := audio.NewPreparer(p.ffmpeg)
	preparer.SetLogger(logger)
	acquirer := clips.NewAcquirer(clips.Options{
		FFmpeg:       p.ffmpeg,
		Generator:    p.generator,
		Encoder:      sel,
		FPS:          p.cfg.Render.FPS,
		StaticSilent: p.cfg.Render.StaticSilent,
	})
	acquirer.SetLogger(logger)
	composer := compose.New(compose.Options{
		FFmpeg:   p.ffmpeg,
		Encoder:  sel,
		FPS:      p.cfg.Render.FPS,
		Ducking:  p.cfg.Render.Ducking,
		Loudnorm: p.cfg.Render.Loudnorm,
	})
	composer.SetLogger(logger)

	for idx, seg := range segs {
		segCtx := services.WithSegment(ctx, seg.Name)
		result, segErr := p.processSegment(segCtx, preparer, acquirer, composer, sel, seg, idx, len(segs))
		if segErr != nil {
			return fail(segErr)
		}
		outcome.Segments = append(outcome.Segments, result)
		if result.Skipped {
			outcome.Skipped++
		}
		if result.Fallback {
			outcome.Fallbacks++
		}
		p.journalSegment(segCtx, runID, result)
	}

	intro, outro := p.buildCovers(ctx, logger, sel, specs, outcome)

	concatenator := episode.NewConcatenator(p.ffmpeg, sel)
	concatenator.SetLogger(logger)
	episodePath, err := concatenator.Assemble(ctx, p.layout, intro, outro)
	if err != nil {
		return fail(err)
	}
	outcome.EpisodePath = episodePath
	outcome.Elapsed = time.Since(started)

	p.journalComplete(ctx, runID, outcome)
	p.notifyFinished(ctx, outcome)
	logger.Info("episode finished",
		logging.Path(episodePath),
		logging.Int("segments", outcome.SegmentsTotal),
		logging.Int("skipped", outcome.Skipped),
		logging.Int("fallbacks", outcome.Fallbacks),
		logging.Int("covers", outcome.CoversBuilt),
		logging.Duration("elapsed", outcome.Elapsed))
	return outcome, nil
}

func (p *Pipeline) runPreflight(logger *slog.Logger) error {
	results := preflight.RunAll(p.cfg, p.layout)
	for _, result := range results {
		switch {
		case result.Passed:
			logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail))
		case result.Optional:
			logger.Warn("optional preflight check failed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail))
		default:
			logger.Error("preflight check failed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail))
		}
	}
	return preflight.Fatal(results)
}

// selectEncoder probes the engine's capability listing once for the run.
// A failed probe degrades to stream copy instead of aborting before any
// work has happened.
func (p *Pipeline) selectEncoder(ctx context.Context, logger *slog.Logger) encoders.Selection {
	listing, err := p.ffmpeg.EncoderList(ctx)
	if err != nil {
		logger.Warn("encoder listing unavailable, selecting stream copy", logging.Error(err))
		listing = ""
	}
	sel := encoders.Select(listing)
	logger.Info("encoder selected", logging.String(logging.FieldEncoder, sel.Name))
	return sel
}

func (p *Pipeline) processSegment(ctx context.Context, preparer *audio.Preparer, acquirer *clips.Acquirer, composer *compose.Engine, sel encoders.Selection, seg segments.Segment, idx, total int) (SegmentOutcome, error) {
	logger := logging.WithContext(ctx, p.logger)
	result := SegmentOutcome{Name: seg.Name, Speaker: seg.Speaker, Encoder: sel.Name}

	if p.cfg.Render.SkipExisting && p.layout.SegmentComplete(seg) {
		logger.Info("segment artifacts cached, skipping",
			logging.Int("index", idx+1),
			logging.Int("total", total))
		result.Skipped = true
		return result, nil
	}

	segStart := time.Now()
	logger.Info("segment started",
		logging.Int("index", idx+1),
		logging.Int("total", total),
		logging.String(logging.FieldSpeaker, string(seg.Speaker)))

	if err := preparer.Prepare(ctx, p.layout, seg); err != nil {
		return result, err
	}
	for _, participant := range segments.Participants() {
		if _, err := acquirer.Acquire(ctx, p.layout, seg, participant); err != nil {
			return result, err
		}
	}
	composed, err := composer.Compose(ctx, p.layout, seg)
	if err != nil {
		return result, err
	}
	if composed.Fallback {
		result.Fallback = true
		result.Encoder = composed.FallbackEncoder
		result.Degraded = composed.Degraded
	}

	logger.Info("segment completed",
		logging.Int("index", idx+1),
		logging.Int("total", total),
		logging.Duration("segment_duration", time.Since(segStart)))
	return result, nil
}

// buildCovers renders the requested covers. A cover that fails to render is
// dropped with a warning and the episode ships without it.
func (p *Pipeline) buildCovers(ctx context.Context, logger *slog.Logger, sel encoders.Selection, specs []covers.Spec, outcome *Outcome) (intro, outro string) {
	if len(specs) == 0 {
		return "", ""
	}
	builder := covers.NewBuilder(covers.Options{
		FFmpeg:      p.ffmpeg,
		ProbeBinary: p.cfg.FFprobeBinary(),
		Encoder:     sel,
		FPS:         p.cfg.Render.FPS,
	})
	builder.SetLogger(logger)

	for _, spec := range specs {
		path, err := builder.Build(ctx, p.layout, spec)
		if err != nil {
			logger.Warn("cover build failed, episode continues without it",
				logging.String("kind", string(spec.Kind)),
				logging.Error(err))
			outcome.CoversDropped++
			continue
		}
		outcome.CoversBuilt++
		if spec.Kind == covers.Outro {
			outro = path
		} else {
			intro = path
		}
	}
	return intro, outro
}
