// Package workflow sequences a full episode render for one decade.
//
// A Pipeline runs strictly in order: preflight checks, cover spec
// validation, segment discovery, encoder selection, then per segment the
// track preparation, clip acquisition, and split-screen composition, and
// finally cover rendering and the episode concatenation. Segment failures
// abort the run once composition's single degraded retry is exhausted;
// cover failures only drop the affected cover.
//
// Run history goes to the journal and an ntfy notification reports the
// finished episode or the failure. Both are observational: their errors
// downgrade to log warnings and never abort a render.
package workflow
