package covers

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/fileutil"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/logging"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/media/encoders"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/media/ffprobe"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/media/filtergraph"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/segments"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services/ffmpeg"
)

// Kind distinguishes the two cover positions.
type Kind string

// Cover positions.
const (
	Intro Kind = "intro"
	Outro Kind = "outro"
)

// DurationAuto resolves the clip duration from the cover audio's length.
const DurationAuto = "auto"

// Spec describes one requested cover clip.
type Spec struct {
	Kind  Kind
	Image string
	// Audio is optional backing music; without it a silent stereo track
	// is synthesized.
	Audio string
	// Duration is a second count or DurationAuto.
	Duration string
	// Fade is the symmetric fade-in/out length in seconds.
	Fade float64
}

// Validate rejects specs that can never synthesize. Auto duration without
// audio is a configuration error: there is nothing to resolve it from.
func (s Spec) Validate() error {
	if s.Duration == DurationAuto {
		if s.Audio == "" {
			return services.Wrap(services.ErrConfiguration, "covers", string(s.Kind),
				"duration \"auto\" requires cover audio", nil)
		}
		return nil
	}
	seconds, err := strconv.ParseFloat(s.Duration, 64)
	if err != nil {
		return services.Wrap(services.ErrValidation, "covers", string(s.Kind),
			"duration must be a second count or \"auto\" (got "+s.Duration+")", err)
	}
	if seconds <= 0 {
		return services.Wrap(services.ErrValidation, "covers", string(s.Kind),
			"duration must be positive (got "+s.Duration+")", nil)
	}
	return nil
}

// Builder synthesizes intro/outro cover clips.
type Builder struct {
	client  *ffmpeg.Client
	encoder encoders.Selection
	fps     int
	probe   func(ctx context.Context, path string) (float64, error)
	logger  *slog.Logger
}

// Options configures a Builder for one run.
type Options struct {
	FFmpeg      *ffmpeg.Client
	ProbeBinary string
	Encoder     encoders.Selection
	FPS         int
}

// NewBuilder builds a Builder.
func NewBuilder(opts Options) *Builder {
	probeBinary := opts.ProbeBinary
	if probeBinary == "" {
		probeBinary = "ffprobe"
	}
	return &Builder{
		client:  opts.FFmpeg,
		encoder: opts.Encoder,
		fps:     opts.FPS,
		probe: func(ctx context.Context, path string) (float64, error) {
			return ffprobe.Duration(ctx, probeBinary, path)
		},
		logger: logging.NewNop(),
	}
}

// WithProbe sets a custom duration probe (for testing).
func (b *Builder) WithProbe(probe func(ctx context.Context, path string) (float64, error)) {
	if probe != nil {
		b.probe = probe
	}
}

// SetLogger attaches a component logger.
func (b *Builder) SetLogger(logger *slog.Logger) {
	if logger == nil {
		b.logger = logging.NewNop()
		return
	}
	b.logger = logging.NewComponentLogger(logger, "covers")
}

// Build synthesizes the cover clip for spec and returns its path. Callers
// treat any error as "run without this cover"; only spec validation errors
// should abort a run, and those are checked before any rendering starts.
func (b *Builder) Build(ctx context.Context, layout segments.Layout, spec Spec) (string, error) {
	out := b.outPath(layout, spec.Kind)
	if fileutil.FileExists(out) {
		b.logger.Debug("cover cached", logging.String("kind", string(spec.Kind)), logging.Path(out))
		return out, nil
	}
	if err := spec.Validate(); err != nil {
		return "", err
	}
	if !fileutil.FileExists(spec.Image) {
		return "", services.Wrap(services.ErrNotFound, "covers", string(spec.Kind),
			"cover image not found: "+spec.Image, nil)
	}
	if spec.Audio != "" && !fileutil.FileExists(spec.Audio) {
		return "", services.Wrap(services.ErrNotFound, "covers", string(spec.Kind),
			"cover audio not found: "+spec.Audio, nil)
	}

	duration, err := b.resolveDuration(ctx, spec)
	if err != nil {
		return "", err
	}

	err = b.client.RenderCover(ctx, ffmpeg.CoverRequest{
		Image:       spec.Image,
		Audio:       spec.Audio,
		VideoFilter: filtergraph.CoverVideo(duration, spec.Fade, b.fps).Render(),
		AudioFilter: filtergraph.CoverAudio(duration, spec.Fade).Render(),
		VideoArgs:   b.encoder.StillArgs(),
		Duration:    duration,
		Output:      out,
	})
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "covers", string(spec.Kind),
			"render cover clip", err)
	}
	b.logger.Debug("cover rendered",
		logging.String("kind", string(spec.Kind)),
		logging.Float64("seconds", duration),
		logging.Path(out))
	return out, nil
}

func (b *Builder) outPath(layout segments.Layout, kind Kind) string {
	if kind == Outro {
		return layout.OutroCoverPath()
	}
	return layout.IntroCoverPath()
}

func (b *Builder) resolveDuration(ctx context.Context, spec Spec) (float64, error) {
	if spec.Duration == DurationAuto {
		seconds, err := b.probe(ctx, spec.Audio)
		if err != nil {
			return 0, services.Wrap(services.ErrExternalTool, "covers", string(spec.Kind),
				"resolve duration from "+spec.Audio, err)
		}
		return seconds, nil
	}
	seconds, err := strconv.ParseFloat(spec.Duration, 64)
	if err != nil || seconds <= 0 {
		return 0, services.Wrap(services.ErrValidation, "covers", string(spec.Kind),
			"unusable duration "+spec.Duration, err)
	}
	return seconds, nil
}
