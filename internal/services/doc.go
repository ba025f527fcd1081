// Package services defines shared utilities consumed by the pipeline stages
// and external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, decade, segment, and stage names for
//     logging correlation.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification (configuration vs external tool vs validation) uniform
//     across the pipeline.
//
// Use these helpers when wiring new stage logic so operational behaviour stays
// consistent end to end.
package services
