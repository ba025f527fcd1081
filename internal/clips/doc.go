// Package clips acquires the per-participant talking-head clips: cached,
// still-image shortcut for silent partners, animation generator for
// speakers, with isolated per-invocation result directories.
package clips
