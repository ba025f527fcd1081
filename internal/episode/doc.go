// Package episode assembles the finished decade episode. It collects the
// composed segment core clips in name order, brackets them with the intro
// and outro covers when those exist, writes an ffconcat manifest, and runs
// a single re-encode concatenation into the finished output.
package episode
