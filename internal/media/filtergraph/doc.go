// Package filtergraph assembles the rendering engine's filter_complex
// strings from composable graph values, so every invocation renders the
// same graph for the same settings.
package filtergraph
