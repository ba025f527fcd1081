// Package segments models dialogue segments and the on-disk layout of a
// decade run: discovery by filename suffix, derived artifact paths, and
// the cache gate that makes reruns idempotent.
package segments
