// Package preflight provides readiness checks for the external tools and
// filesystem paths a render run depends on.
//
// These checks run in two contexts:
//   - The workflow calls RunAll before touching any segment. A failed
//     required check aborts the run before hours of rendering start.
//   - The CLI "melodymind status" command renders the same results as a
//     readiness report.
//
// Cover asset checks are optional: a missing cover drops that cover at
// build time instead of failing the run.
package preflight
