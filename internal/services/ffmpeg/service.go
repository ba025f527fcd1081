package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/logging"
)

// Runner abstracts rendering engine process execution so tests can intercept
// invocations without spawning ffmpeg.
type Runner interface {
	// Run executes binary with args and returns its combined output.
	Run(ctx context.Context, binary string, args []string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	trimmed := strings.TrimSpace(string(output))
	if err != nil {
		if trimmed != "" {
			return trimmed, fmt.Errorf("%s: %w: %s", binary, err, trimmed)
		}
		return trimmed, fmt.Errorf("%s: %w", binary, err)
	}
	return trimmed, nil
}

// Client invokes the rendering engine with a deterministic, quiet-by-default
// argument style. Every operation is safe to repeat; callers gate on artifact
// existence before invoking.
type Client struct {
	binary  string
	verbose bool
	logger  *slog.Logger
	runner  Runner
}

// Option adjusts optional Client behaviour.
type Option func(*Client)

// WithRunner overrides process execution, primarily for tests.
func WithRunner(runner Runner) Option {
	return func(c *Client) {
		if runner != nil {
			c.runner = runner
		}
	}
}

// WithVerbose leaves the engine's banner and default log level intact so its
// full output reaches the console.
func WithVerbose(verbose bool) Option {
	return func(c *Client) {
		c.verbose = verbose
	}
}

// New constructs a Client for the given engine binary.
func New(binary string, opts ...Option) *Client {
	client := &Client{
		binary: strings.TrimSpace(binary),
		logger: logging.NewNop(),
		runner: execRunner{},
	}
	if client.binary == "" {
		client.binary = "ffmpeg"
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// SetLogger attaches a component logger.
func (c *Client) SetLogger(logger *slog.Logger) {
	if logger == nil {
		c.logger = logging.NewNop()
		return
	}
	c.logger = logging.NewComponentLogger(logger, "ffmpeg")
}

// EncoderList returns the engine's raw encoder capability listing.
func (c *Client) EncoderList(ctx context.Context) (string, error) {
	return c.runner.Run(ctx, c.binary, []string{"-hide_banner", "-encoders"})
}

// ConvertToWAV transcodes src into a 16 kHz mono WAV at dest.
func (c *Client) ConvertToWAV(ctx context.Context, src, dest string) error {
	return c.run(ctx, []string{
		"-y",
		"-i", src,
		"-ar", "16000", "-ac", "1",
		dest,
	})
}

// WriteSilence writes a silent WAV at dest by muting src, so the result
// matches src's duration sample for sample.
func (c *Client) WriteSilence(ctx context.Context, src, dest string) error {
	return c.run(ctx, []string{
		"-y",
		"-i", src,
		"-af", "volume=0",
		"-ar", "16000", "-ac", "1",
		dest,
	})
}

// StillRequest describes a still-image loop render.
type StillRequest struct {
	Image     string
	Audio     string
	VideoArgs []string
	FPS       int
	Output    string
}

// StillLoop loops a portrait image over the supplied audio track.
func (c *Client) StillLoop(ctx context.Context, req StillRequest) error {
	args := []string{
		"-y",
		"-loop", "1",
		"-i", req.Image,
		"-i", req.Audio,
	}
	args = append(args, req.VideoArgs...)
	args = append(args,
		"-r", strconv.Itoa(req.FPS),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac", "-b:a", "192k",
		"-shortest",
		req.Output,
	)
	return c.run(ctx, args)
}

// ComposeRequest describes a two-input filter_complex render.
type ComposeRequest struct {
	LeftInput   string
	RightInput  string
	FilterGraph string
	VideoLabel  string
	AudioLabel  string
	VideoArgs   []string
	AudioArgs   []string
	FPS         int // 0 omits the output rate flag
	Output      string
}

// Compose renders the split-screen composition described by req.
func (c *Client) Compose(ctx context.Context, req ComposeRequest) error {
	args := []string{
		"-y",
		"-i", req.LeftInput,
		"-i", req.RightInput,
		"-filter_complex", req.FilterGraph,
		"-map", req.VideoLabel,
		"-map", req.AudioLabel,
	}
	args = append(args, req.VideoArgs...)
	args = append(args, req.AudioArgs...)
	if req.FPS > 0 {
		args = append(args, "-r", strconv.Itoa(req.FPS))
	}
	args = append(args, "-shortest", req.Output)
	return c.run(ctx, args)
}

// CoverRequest describes a cover clip render from a still image.
type CoverRequest struct {
	Image       string
	Audio       string // empty synthesizes a silent stereo track
	VideoFilter string
	AudioFilter string
	VideoArgs   []string
	Duration    float64
	Output      string
}

// RenderCover renders an intro/outro cover clip.
func (c *Client) RenderCover(ctx context.Context, req CoverRequest) error {
	args := []string{
		"-y",
		"-loop", "1",
		"-i", req.Image,
	}
	if req.Audio != "" {
		args = append(args, "-i", req.Audio)
	} else {
		// Synthesized silence keeps the concat inputs stream-consistent.
		args = append(args, "-f", "lavfi", "-i", "anullsrc=channel_layout=stereo:sample_rate=48000")
	}
	args = append(args, req.VideoArgs...)
	args = append(args,
		"-pix_fmt", "yuv420p",
		"-vf", req.VideoFilter,
		"-filter:a", req.AudioFilter,
		"-c:a", "aac", "-b:a", "192k",
		"-t", FormatSeconds(req.Duration),
		"-shortest",
		req.Output,
	)
	return c.run(ctx, args)
}

// ConcatRequest describes a concat-demuxer re-encode.
type ConcatRequest struct {
	ListFile  string
	VideoArgs []string
	Output    string
}

// Concat re-encodes the clips named in the list file into one output.
func (c *Client) Concat(ctx context.Context, req ConcatRequest) error {
	args := []string{
		"-y",
		"-f", "concat", "-safe", "0",
		"-i", req.ListFile,
	}
	args = append(args, req.VideoArgs...)
	args = append(args, "-c:a", "aac", "-b:a", "192k", req.Output)
	return c.run(ctx, args)
}

// FormatSeconds renders a duration argument with millisecond precision.
func FormatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}

func (c *Client) run(ctx context.Context, args []string) error {
	full := c.commandArgs(args)
	c.logger.Debug("run engine", logging.String("args", strings.Join(full, " ")))
	if _, err := c.runner.Run(ctx, c.binary, full); err != nil {
		return err
	}
	return nil
}

// commandArgs prepends banner/log suppression unless verbose mode is active or
// the caller already pinned a log level.
func (c *Client) commandArgs(args []string) []string {
	if c.verbose {
		return args
	}
	for _, arg := range args {
		if arg == "-loglevel" {
			return args
		}
	}
	quieted := make([]string, 0, len(args)+3)
	quieted = append(quieted, "-hide_banner", "-loglevel", "error")
	return append(quieted, args...)
}
