// Package sadtalker invokes the external talking-head animation generator
// and probes the health of its optional enhancer stack before any render.
package sadtalker
