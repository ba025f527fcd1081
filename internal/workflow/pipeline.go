package workflow

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/config"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/covers"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/journal"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/logging"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/notifications"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/segments"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services/ffmpeg"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services/sadtalker"
)

// Pipeline renders one decade end to end. Stages run strictly in sequence;
// nothing here is concurrent.
type Pipeline struct {
	cfg       *config.Config
	layout    segments.Layout
	ffmpeg    *ffmpeg.Client
	generator *sadtalker.Service
	notifier  notifications.Service
	journal   *journal.Store
	logger    *slog.Logger
}

// Options wires a Pipeline's collaborators. Journal and Notifier are
// optional; everything else is required.
type Options struct {
	Config    *config.Config
	Layout    segments.Layout
	FFmpeg    *ffmpeg.Client
	Generator *sadtalker.Service
	Notifier  notifications.Service
	Journal   *journal.Store
	Logger    *slog.Logger
}

// New validates the wiring and constructs a Pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.Config == nil {
		return nil, errors.New("workflow: config is required")
	}
	if strings.TrimSpace(opts.Layout.Decade) == "" {
		return nil, errors.New("workflow: layout must carry a decade")
	}
	if opts.FFmpeg == nil {
		return nil, errors.New("workflow: rendering engine client is required")
	}
	if opts.Generator == nil {
		return nil, errors.New("workflow: generator service is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		cfg:       opts.Config,
		layout:    opts.Layout,
		ffmpeg:    opts.FFmpeg,
		generator: opts.Generator,
		notifier:  opts.Notifier,
		journal:   opts.Journal,
		logger:    logger,
	}, nil
}

// coverSpecs derives the requested cover clips from configuration. A cover
// is requested exactly when its image is configured.
func (p *Pipeline) coverSpecs() []covers.Spec {
	var specs []covers.Spec
	cc := p.cfg.Covers
	if strings.TrimSpace(cc.IntroImage) != "" {
		specs = append(specs, covers.Spec{
			Kind:     covers.Intro,
			Image:    cc.IntroImage,
			Audio:    cc.IntroAudio,
			Duration: cc.IntroDuration,
			Fade:     cc.FadeSeconds,
		})
	}
	if strings.TrimSpace(cc.OutroImage) != "" {
		specs = append(specs, covers.Spec{
			Kind:     covers.Outro,
			Image:    cc.OutroImage,
			Audio:    cc.OutroAudio,
			Duration: cc.OutroDuration,
			Fade:     cc.FadeSeconds,
		})
	}
	return specs
}
