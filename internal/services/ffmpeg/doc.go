// Package ffmpeg wraps the rendering engine behind typed operations for
// audio conversion, still-image loops, split-screen composition, cover
// clips, and concatenation. Invocations run quiet by default and the
// process layer is injectable for tests.
package ffmpeg
