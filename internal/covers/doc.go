// Package covers synthesizes the optional intro and outro cover clips
// from a still image with optional music, symmetric fades, and duration
// resolved from the audio when requested.
package covers
