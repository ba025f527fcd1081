package clips

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/fileutil"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/logging"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/media/encoders"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/segments"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services/ffmpeg"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services/sadtalker"
)

// Acquirer produces one canonical clip per (segment, participant): a
// still-image loop for silent partners, an animation-generator render for
// speakers. Clips are cached by existence, independent of any skip policy.
type Acquirer struct {
	ffmpeg       *ffmpeg.Client
	generator    *sadtalker.Service
	encoder      encoders.Selection
	fps          int
	staticSilent bool
	logger       *slog.Logger
}

// Options configures an Acquirer for one run.
type Options struct {
	FFmpeg    *ffmpeg.Client
	Generator *sadtalker.Service
	Encoder   encoders.Selection
	FPS       int
	// StaticSilent shortcuts silent partners to a still-image loop
	// instead of running the generator on a silence track.
	StaticSilent bool
}

// NewAcquirer builds an Acquirer.
func NewAcquirer(opts Options) *Acquirer {
	return &Acquirer{
		ffmpeg:       opts.FFmpeg,
		generator:    opts.Generator,
		encoder:      opts.Encoder,
		fps:          opts.FPS,
		staticSilent: opts.StaticSilent,
		logger:       logging.NewNop(),
	}
}

// SetLogger attaches a component logger.
func (a *Acquirer) SetLogger(logger *slog.Logger) {
	if logger == nil {
		a.logger = logging.NewNop()
		return
	}
	a.logger = logging.NewComponentLogger(logger, "clips")
}

// Acquire ensures participant p's clip for seg exists and returns its
// canonical path. When the generator yields nothing the path is returned
// without a file behind it; composition reports the missing clip, which
// keeps the failure close to the artifact that matters.
func (a *Acquirer) Acquire(ctx context.Context, layout segments.Layout, seg segments.Segment, p segments.Participant) (string, error) {
	out := layout.ClipPath(p, seg.Name)
	if fileutil.FileExists(out) {
		a.logger.Debug("clip cached",
			logging.String(logging.FieldSegment, seg.Name),
			logging.String(logging.FieldSpeaker, string(p)),
			logging.Path(out))
		return out, nil
	}

	wav := layout.WAVFor(seg, p)
	if a.staticSilent && segments.IsSilenceTrack(wav) {
		return a.renderStill(ctx, layout, seg, p, wav, out)
	}
	return a.renderAnimated(ctx, layout, seg, p, wav, out)
}

func (a *Acquirer) renderStill(ctx context.Context, layout segments.Layout, seg segments.Segment, p segments.Participant, wav, out string) (string, error) {
	a.logger.Debug("silent partner, using still-image loop",
		logging.String(logging.FieldSegment, seg.Name),
		logging.String(logging.FieldSpeaker, string(p)))
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", services.Wrap(services.ErrTransient, "clips", "still", "create clip directory", err)
	}
	err := a.ffmpeg.StillLoop(ctx, ffmpeg.StillRequest{
		Image:     layout.Portrait(p),
		Audio:     wav,
		VideoArgs: a.encoder.StillArgs(),
		FPS:       a.fps,
		Output:    out,
	})
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "clips", "still",
			"render still clip for "+seg.Name+"/"+string(p), err)
	}
	return out, nil
}

func (a *Acquirer) renderAnimated(ctx context.Context, layout segments.Layout, seg segments.Segment, p segments.Participant, wav, out string) (string, error) {
	// Each invocation gets a fresh scratch directory, so whatever single
	// clip appears there is unambiguously this invocation's result.
	scratch := filepath.Join(layout.ClipDir(p, seg.Name), "gen-"+uuid.NewString())
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return "", services.Wrap(services.ErrTransient, "clips", "generate", "create result directory", err)
	}
	defer os.RemoveAll(scratch)

	err := a.generator.Generate(ctx, sadtalker.Request{
		Audio:     wav,
		Image:     layout.Portrait(p),
		ResultDir: scratch,
	})
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "clips", "generate",
			"animate "+seg.Name+"/"+string(p), err)
	}

	result, err := newestClip(scratch)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "clips", "generate", "inspect result directory", err)
	}
	if result == "" {
		a.logger.Warn("generator produced no clip",
			logging.String(logging.FieldSegment, seg.Name),
			logging.String(logging.FieldSpeaker, string(p)),
			logging.Path(scratch))
		return out, nil
	}
	if err := fileutil.MoveFile(result, out); err != nil {
		return "", services.Wrap(services.ErrTransient, "clips", "generate", "move generator result", err)
	}
	a.logger.Debug("clip generated",
		logging.String(logging.FieldSegment, seg.Name),
		logging.String(logging.FieldSpeaker, string(p)),
		logging.Path(out))
	return out, nil
}

// newestClip returns the most recently modified .mp4 in dir, or "" when
// none exist.
func newestClip(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var best string
	var bestMod int64
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".mp4") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); best == "" || mod >= bestMod {
			best = filepath.Join(dir, entry.Name())
			bestMod = mod
		}
	}
	return best, nil
}
