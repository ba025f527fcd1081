package audio

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/fileutil"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/logging"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/segments"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services/ffmpeg"
)

// Preparer converts segment source audio into the canonical 16 kHz mono
// track and a matched-duration silent partner track. Every operation is
// existence-gated, so reruns never touch finished artifacts.
type Preparer struct {
	client *ffmpeg.Client
	logger *slog.Logger
}

// NewPreparer builds a Preparer on top of the rendering engine client.
func NewPreparer(client *ffmpeg.Client) *Preparer {
	return &Preparer{client: client, logger: logging.NewNop()}
}

// SetLogger attaches a component logger.
func (p *Preparer) SetLogger(logger *slog.Logger) {
	if logger == nil {
		p.logger = logging.NewNop()
		return
	}
	p.logger = logging.NewComponentLogger(logger, "audio")
}

// Prepare ensures both segment tracks exist. Role assignment (who gets the
// speech track, who the silence) is derived from the layout.
func (p *Preparer) Prepare(ctx context.Context, layout segments.Layout, seg segments.Segment) error {
	speech, err := p.EnsureCanonical(ctx, layout, seg)
	if err != nil {
		return err
	}
	_, err = p.EnsureSilentPartner(ctx, layout, seg, speech)
	return err
}

// EnsureCanonical converts the segment's source audio to 16 kHz mono WAV,
// returning the cached path when it already exists.
func (p *Preparer) EnsureCanonical(ctx context.Context, layout segments.Layout, seg segments.Segment) (string, error) {
	dest := layout.CanonicalWAV(seg)
	if fileutil.FileExists(dest) {
		p.logger.Debug("canonical WAV cached", logging.String(logging.FieldSegment, seg.Name), logging.Path(dest))
		return dest, nil
	}
	if err := p.client.ConvertToWAV(ctx, seg.SourcePath, dest); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "audio", "convert",
			"convert "+filepath.Base(seg.SourcePath)+" to canonical WAV", err)
	}
	p.logger.Debug("canonical WAV written", logging.String(logging.FieldSegment, seg.Name), logging.Path(dest))
	return dest, nil
}

// EnsureSilentPartner writes the partner's silence track by muting the
// reference speech track, which guarantees an exact duration match.
func (p *Preparer) EnsureSilentPartner(ctx context.Context, layout segments.Layout, seg segments.Segment, reference string) (string, error) {
	dest := layout.SilentWAV(seg)
	if fileutil.FileExists(dest) {
		p.logger.Debug("silent partner cached", logging.String(logging.FieldSegment, seg.Name), logging.Path(dest))
		return dest, nil
	}
	if err := p.client.WriteSilence(ctx, reference, dest); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "audio", "silence",
			"write silent partner for "+seg.Name, err)
	}
	p.logger.Debug("silent partner written", logging.String(logging.FieldSegment, seg.Name), logging.Path(dest))
	return dest, nil
}
