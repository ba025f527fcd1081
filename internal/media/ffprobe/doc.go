// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect executes ffprobe against a media file and decodes the stream and
// format sections. Duration builds on it to answer the one question cover
// rendering needs: how long an audio asset plays, with an error when the
// file reports no usable length.
package ffprobe
