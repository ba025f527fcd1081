package compose

import (
	"context"
	"log/slog"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/fileutil"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/logging"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/media/encoders"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/media/filtergraph"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/segments"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services/ffmpeg"
)

// Engine composes both participant clips into a segment's core clip:
// primary attempt with the full graph, at most one degraded retry with a
// simplified graph and an alternative encoder, then fatal.
type Engine struct {
	client   *ffmpeg.Client
	encoder  encoders.Selection
	fps      int
	ducking  bool
	loudnorm bool
	logger   *slog.Logger
}

// Options configures an Engine for one run.
type Options struct {
	FFmpeg   *ffmpeg.Client
	Encoder  encoders.Selection
	FPS      int
	Ducking  bool
	Loudnorm bool
}

// New builds an Engine.
func New(opts Options) *Engine {
	return &Engine{
		client:   opts.FFmpeg,
		encoder:  opts.Encoder,
		fps:      opts.FPS,
		ducking:  opts.Ducking,
		loudnorm: opts.Loudnorm,
		logger:   logging.NewNop(),
	}
}

// SetLogger attaches a component logger.
func (e *Engine) SetLogger(logger *slog.Logger) {
	if logger == nil {
		e.logger = logging.NewNop()
		return
	}
	e.logger = logging.NewComponentLogger(logger, "compose")
}

// Outcome describes how a segment composition finished.
type Outcome struct {
	CorePath string
	// Fallback reports that the degraded retry produced the clip.
	Fallback bool
	// FallbackEncoder names the encoder the retry used.
	FallbackEncoder string
	// Degraded lists requested features the retry dropped, so callers can
	// report what the clip is missing instead of silently shipping it.
	Degraded []string
}

// Compose renders the split-screen core clip for seg. Daniel sits on the
// left, Annabelle on the right.
func (e *Engine) Compose(ctx context.Context, layout segments.Layout, seg segments.Segment) (Outcome, error) {
	left := layout.ClipPath(segments.Daniel, seg.Name)
	right := layout.ClipPath(segments.Annabelle, seg.Name)
	out := layout.CorePath(seg.Name)

	for _, clip := range []string{left, right} {
		if !fileutil.FileExists(clip) {
			return Outcome{}, services.Wrap(services.ErrNotFound, "compose", "precondition",
				"missing clip "+clip, nil)
		}
	}

	primaryErr := e.client.Compose(ctx, ffmpeg.ComposeRequest{
		LeftInput:   left,
		RightInput:  right,
		FilterGraph: filtergraph.Composition(e.ducking, e.loudnorm, e.fps).Render(),
		VideoLabel:  "[v2]",
		AudioLabel:  "[aL]",
		VideoArgs:   e.encoder.ComposeArgs(),
		FPS:         e.fps,
		Output:      out,
	})
	if primaryErr == nil {
		return Outcome{CorePath: out}, nil
	}

	e.logger.Warn("composition failed, retrying with fallback encoder",
		logging.String(logging.FieldSegment, seg.Name),
		logging.String(logging.FieldEncoder, e.encoder.Name),
		logging.Error(primaryErr))

	fallback, err := e.encoder.Fallback()
	if err != nil {
		return Outcome{}, services.Wrap(services.ErrConfiguration, "compose", "fallback",
			"no alternative encoder for degraded retry", err)
	}

	err = e.client.Compose(ctx, ffmpeg.ComposeRequest{
		LeftInput:   left,
		RightInput:  right,
		FilterGraph: filtergraph.FallbackComposition().Render(),
		VideoLabel:  "[v]",
		AudioLabel:  "[a]",
		VideoArgs:   []string{"-c:v", fallback.Name},
		AudioArgs:   []string{"-c:a", "aac"},
		Output:      out,
	})
	if err != nil {
		return Outcome{}, services.Wrap(services.ErrExternalTool, "compose", "fallback",
			"degraded retry with "+fallback.Name+" failed", err)
	}

	outcome := Outcome{
		CorePath:        out,
		Fallback:        true,
		FallbackEncoder: fallback.Name,
		Degraded:        e.degradedFeatures(),
	}
	e.logger.Warn("segment composed via degraded retry",
		logging.String(logging.FieldSegment, seg.Name),
		logging.String(logging.FieldEncoder, fallback.Name),
		logging.Any("dropped", outcome.Degraded))
	return outcome, nil
}

// degradedFeatures lists what the simplified retry graph loses relative to
// the requested settings.
func (e *Engine) degradedFeatures() []string {
	features := make([]string, 0, 3)
	if e.ducking {
		features = append(features, "ducking")
	}
	if e.loudnorm {
		features = append(features, "loudnorm")
	}
	features = append(features, "fps-lock")
	return features
}
