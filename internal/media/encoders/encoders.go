package encoders

import (
	"errors"
	"regexp"
	"strings"
)

// Copy identifies the stream-copy pseudo encoder chosen when no usable
// encoder appears in the capability listing.
const Copy = "copy"

// ErrNoFallback reports that no alternative encoder is available for a
// degraded retry. Stream copy is not acceptable there because the retry
// still renders a filter graph.
var ErrNoFallback = errors.New("no fallback encoder available")

// priority lists primary candidates best-first.
var priority = []string{
	"libx264",
	"libopenh264",
	"h264_nvenc",
	"libsvtav1",
	"libaom-av1",
	"libx265",
	"libvpx-vp9",
}

// fallbacks lists degraded-retry candidates.
var fallbacks = []string{
	"libopenh264",
	"libx265",
	"libvpx-vp9",
	"mpeg4",
}

// Selection is the encoder decision for a run together with the capability
// listing it was derived from, so a fallback can be derived later without
// re-probing the engine.
type Selection struct {
	Name    string
	listing string
}

// Select picks the preferred encoder from a raw capability listing. Names
// must appear as full words so that variants such as libx264rgb do not
// satisfy libx264. An empty or unusable listing selects stream copy.
func Select(listing string) Selection {
	for _, name := range priority {
		if matchWord(listing, name) {
			return Selection{Name: name, listing: listing}
		}
	}
	return Selection{Name: Copy, listing: listing}
}

// Fallback picks a degraded-retry encoder distinct from the current one,
// by containment against the captured listing.
func (s Selection) Fallback() (Selection, error) {
	for _, name := range fallbacks {
		if name == s.Name {
			continue
		}
		if strings.Contains(s.listing, name) {
			return Selection{Name: name, listing: s.listing}, nil
		}
	}
	return Selection{}, ErrNoFallback
}

// IsCopy reports whether the selection is the stream-copy pseudo encoder.
func (s Selection) IsCopy() bool {
	return s.Name == Copy
}

// StillArgs returns the encode arguments for still-image loops and covers.
func (s Selection) StillArgs() []string {
	args := []string{"-c:v", s.Name}
	switch {
	case strings.HasPrefix(s.Name, "libx"):
		args = append(args, "-crf", "18")
		if s.Name == "libx264" {
			args = append(args, "-tune", "stillimage")
		}
	case s.Name == "libopenh264":
		args = append(args, "-b:v", "1M")
	}
	return args
}

// ComposeArgs returns the encode arguments for split-screen composition.
func (s Selection) ComposeArgs() []string {
	args := []string{"-c:v", s.Name}
	switch {
	case strings.HasPrefix(s.Name, "libx"):
		args = append(args, "-crf", "18")
	case s.Name == "libopenh264":
		args = append(args, "-b:v", "2M")
	}
	return args
}

// ConcatArgs returns the encode arguments for the final concatenation.
func (s Selection) ConcatArgs() []string {
	args := []string{"-c:v", s.Name}
	if strings.HasPrefix(s.Name, "libx") {
		args = append(args, "-crf", "18")
	}
	return args
}

func matchWord(listing, name string) bool {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	return re.MatchString(listing)
}
