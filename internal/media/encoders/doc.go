// Package encoders negotiates the video encoder for a run from the
// rendering engine's capability listing and derives the argument profiles
// each encode stage needs.
package encoders
