package filtergraph

import (
	"math"
	"strconv"
	"strings"
)

// Chain is an ordered sequence of filter steps applied to one stream.
type Chain []string

// Render joins the chain into its command-line form.
func (c Chain) Render() string {
	return strings.Join(c, ",")
}

// Node is one labeled link of a filter_complex graph.
type Node struct {
	Inputs  []string
	Steps   Chain
	Outputs []string
}

// Graph is an immutable ordered collection of nodes. With returns an
// extended copy, so partial graphs can be shared and composed freely.
type Graph struct {
	nodes []Node
}

// With appends a node and returns the extended graph.
func (g Graph) With(node Node) Graph {
	nodes := make([]Node, 0, len(g.nodes)+1)
	nodes = append(nodes, g.nodes...)
	nodes = append(nodes, node)
	return Graph{nodes: nodes}
}

// Render produces the deterministic filter_complex string.
func (g Graph) Render() string {
	parts := make([]string, 0, len(g.nodes))
	for _, node := range g.nodes {
		var b strings.Builder
		for _, in := range node.Inputs {
			b.WriteString("[" + in + "]")
		}
		b.WriteString(node.Steps.Render())
		for _, out := range node.Outputs {
			b.WriteString("[" + out + "]")
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, ";")
}

const (
	scaleHalf = "scale=960:1080:force_original_aspect_ratio=decrease"
	// Left head hugs the seam, so padding goes on its outer edge.
	padLeft  = "pad=960:1080:(960-iw):(1080-ih)/2:black"
	padRight = "pad=960:1080:0:(1080-ih)/2:black"

	aformatStereo = "aformat=sample_fmts=fltp:sample_rates=48000:channel_layouts=stereo"
	duck          = "sidechaincompress=threshold=0.02:ratio=8:attack=50:release=200:makeup=1"
	mixStrict     = "amix=inputs=2:normalize=0:dropout_transition=0"
)

// SplitScreen builds the 1920x1080 side-by-side graph producing [v] and
// [amix]. With ducking each voice is compressed by the other before mixing.
func SplitScreen(ducking bool) Graph {
	g := Graph{}.
		With(Node{Inputs: []string{"0:v"}, Steps: Chain{scaleHalf, padLeft}, Outputs: []string{"left"}}).
		With(Node{Inputs: []string{"1:v"}, Steps: Chain{scaleHalf, padRight}, Outputs: []string{"right"}}).
		With(Node{Inputs: []string{"left", "right"}, Steps: Chain{"hstack=inputs=2"}, Outputs: []string{"v"}}).
		With(Node{Inputs: []string{"0:a"}, Steps: Chain{aformatStereo, "volume=1.0"}, Outputs: []string{"a0"}}).
		With(Node{Inputs: []string{"1:a"}, Steps: Chain{aformatStereo, "volume=1.0"}, Outputs: []string{"a1"}})
	if ducking {
		return g.
			With(Node{Inputs: []string{"a0", "a1"}, Steps: Chain{duck}, Outputs: []string{"a0d"}}).
			With(Node{Inputs: []string{"a1", "a0"}, Steps: Chain{duck}, Outputs: []string{"a1d"}}).
			With(Node{Inputs: []string{"a0d", "a1d"}, Steps: Chain{mixStrict}, Outputs: []string{"amix"}})
	}
	return g.With(Node{Inputs: []string{"a0", "a1"}, Steps: Chain{mixStrict}, Outputs: []string{"amix"}})
}

// Composition extends the split-screen graph with loudness treatment and a
// fixed output rate, producing the final [v2] and [aL] labels.
func Composition(ducking, loudnorm bool, fps int) Graph {
	return SplitScreen(ducking).
		With(Node{Inputs: []string{"amix"}, Steps: Chain{Loudnorm(loudnorm)}, Outputs: []string{"aL"}}).
		With(Node{Inputs: []string{"v"}, Steps: Chain{"fps=" + strconv.Itoa(fps)}, Outputs: []string{"v2"}})
}

// FallbackComposition is the simplified retry graph: same video topology,
// plain two-input mix, no loudness treatment. Produces [v] and [a].
func FallbackComposition() Graph {
	return Graph{}.
		With(Node{Inputs: []string{"0:v"}, Steps: Chain{scaleHalf, padLeft}, Outputs: []string{"left"}}).
		With(Node{Inputs: []string{"1:v"}, Steps: Chain{scaleHalf, padRight}, Outputs: []string{"right"}}).
		With(Node{Inputs: []string{"left", "right"}, Steps: Chain{"hstack=inputs=2"}, Outputs: []string{"v"}}).
		With(Node{Inputs: []string{"0:a", "1:a"}, Steps: Chain{"amix=inputs=2"}, Outputs: []string{"a"}})
}

// Loudnorm returns the EBU R128 loudness chain, or a passthrough when
// normalization is disabled.
func Loudnorm(enabled bool) string {
	if enabled {
		return "loudnorm=I=-16:TP=-1.5:LRA=11:dual_mono=true"
	}
	return "anull"
}

// CoverVideo builds the cover clip video chain: symmetric fades, output
// rate, and a pixel format the concat step accepts.
func CoverVideo(duration, fade float64, fps int) Chain {
	return Chain{
		"fade=t=in:st=0:d=" + formatSeconds(fade),
		"fade=t=out:st=" + formatSeconds(fadeOutStart(duration, fade)) + ":d=" + formatSeconds(fade),
		"fps=" + strconv.Itoa(fps),
		"format=yuv420p",
	}
}

// CoverAudio mirrors the video fades on the audio track.
func CoverAudio(duration, fade float64) Chain {
	return Chain{
		"afade=t=in:st=0:d=" + formatSeconds(fade),
		"afade=t=out:st=" + formatSeconds(fadeOutStart(duration, fade)) + ":d=" + formatSeconds(fade),
	}
}

// fadeOutStart clamps at zero so short clips still fade instead of erroring.
func fadeOutStart(duration, fade float64) float64 {
	return math.Max(0, duration-fade)
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
