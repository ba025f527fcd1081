package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Inspect runs ffprobe against path and decodes its JSON report. An empty
// binary resolves "ffprobe" from PATH.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	if binary = strings.TrimSpace(binary); binary == "" {
		binary = "ffprobe"
	}
	if path = strings.TrimSpace(path); path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	args := []string{"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path}
	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, detail)
	}

	var result Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// Duration probes the media at path and returns its container duration in
// seconds. It returns an error when the file cannot be probed or reports no
// usable duration, which callers treat as "length unknown".
func Duration(ctx context.Context, binary string, path string) (float64, error) {
	result, err := Inspect(ctx, binary, path)
	if err != nil {
		return 0, err
	}
	seconds := result.DurationSeconds()
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0, fmt.Errorf("ffprobe duration: no usable duration for %s", path)
	}
	return seconds, nil
}

func (r Result) streamCount(codecType string) int {
	n := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, codecType) {
			n++
		}
	}
	return n
}

// VideoStreamCount returns the number of video streams discovered.
func (r Result) VideoStreamCount() int { return r.streamCount("video") }

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int { return r.streamCount("audio") }

// DurationSeconds returns the container duration in seconds: 0 when the
// field is absent, NaN when it cannot be parsed.
func (r Result) DurationSeconds() float64 {
	raw := strings.TrimSpace(r.Format.Duration)
	if raw == "" {
		return 0
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return seconds
}
