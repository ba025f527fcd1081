package episode

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/fileutil"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/logging"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/media/encoders"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/segments"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services/ffmpeg"
)

// ErrNoCoreClips reports that no composed segment clips exist to
// concatenate. Covers alone never make an episode.
var ErrNoCoreClips = errors.New("no segment core clips found")

// coreClipPattern matches composed segment clips in the final directory.
const coreClipPattern = "*_split_core.mp4"

// Concatenator assembles the finished episode from the composed core
// clips plus optional covers.
type Concatenator struct {
	client  *ffmpeg.Client
	encoder encoders.Selection
	logger  *slog.Logger
}

// NewConcatenator builds a Concatenator.
func NewConcatenator(client *ffmpeg.Client, encoder encoders.Selection) *Concatenator {
	return &Concatenator{client: client, encoder: encoder, logger: logging.NewNop()}
}

// SetLogger attaches a component logger.
func (c *Concatenator) SetLogger(logger *slog.Logger) {
	if logger == nil {
		c.logger = logging.NewNop()
		return
	}
	c.logger = logging.NewComponentLogger(logger, "episode")
}

// Manifest returns the ordered clip list: intro when present, core clips
// sorted by name, outro when present. Cover paths that do not exist are
// silently skipped; an episode without core clips is an error.
func (c *Concatenator) Manifest(layout segments.Layout, intro, outro string) ([]string, error) {
	cores, err := filepath.Glob(filepath.Join(layout.FinalDir(), coreClipPattern))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "episode", "collect", "glob core clips", err)
	}
	if len(cores) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "episode", "collect",
			"nothing to concatenate in "+layout.FinalDir(), ErrNoCoreClips)
	}
	sort.Strings(cores)

	ordered := make([]string, 0, len(cores)+2)
	if intro != "" && fileutil.FileExists(intro) {
		ordered = append(ordered, intro)
	}
	ordered = append(ordered, cores...)
	if outro != "" && fileutil.FileExists(outro) {
		ordered = append(ordered, outro)
	}
	return ordered, nil
}

// Assemble writes the concat manifest, issues one re-encode concatenation,
// and returns the finished episode path. The manifest is removed afterward
// whether or not the encode succeeded.
func (c *Concatenator) Assemble(ctx context.Context, layout segments.Layout, intro, outro string) (string, error) {
	ordered, err := c.Manifest(layout, intro, outro)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(layout.FinishedDir(), 0o755); err != nil {
		return "", services.Wrap(services.ErrTransient, "episode", "assemble", "create finished directory", err)
	}

	listFile := layout.ConcatListPath()
	if err := writeManifest(listFile, ordered); err != nil {
		return "", services.Wrap(services.ErrTransient, "episode", "assemble", "write concat manifest", err)
	}
	defer os.Remove(listFile)

	out := layout.EpisodePath()
	c.logger.Debug("concatenating episode",
		logging.Int("clips", len(ordered)),
		logging.String(logging.FieldEncoder, c.encoder.Name),
		logging.Path(out))
	err = c.client.Concat(ctx, ffmpeg.ConcatRequest{
		ListFile:  listFile,
		VideoArgs: c.encoder.ConcatArgs(),
		Output:    out,
	})
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "episode", "assemble", "concatenate episode", err)
	}
	return out, nil
}

func writeManifest(path string, clips []string) error {
	var b strings.Builder
	for _, clip := range clips {
		b.WriteString("file '" + filepath.ToSlash(clip) + "'\n")
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
