// Package journal records pipeline run history in a local SQLite database.
//
// Each invocation of the render pipeline becomes one run row with per-segment
// outcome rows beneath it. The journal is purely observational: the pipeline
// writes to it and the history command reads from it, but no rendering
// decision ever depends on its contents, and callers downgrade journal
// errors to warnings.
package journal
