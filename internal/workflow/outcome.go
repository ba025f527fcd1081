package workflow

import (
	"strings"
	"time"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/journal"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/segments"
)

// SegmentOutcome records how one dialogue segment was handled.
type SegmentOutcome struct {
	Name    string
	Speaker segments.Participant
	// Skipped marks segments whose cached artifacts satisfied the
	// skip-existing policy.
	Skipped bool
	// Fallback marks segments composed via the degraded retry.
	Fallback bool
	// Encoder names the encoder that produced the core clip.
	Encoder string
	// Degraded lists the features the degraded retry dropped.
	Degraded []string
}

// Outcome summarizes one pipeline run. On failure it is populated as far
// as the run got.
type Outcome struct {
	Decade        string
	Title         string
	Encoder       string
	Segments      []SegmentOutcome
	SegmentsTotal int
	Skipped       int
	Fallbacks     int
	CoversBuilt   int
	CoversDropped int
	EpisodePath   string
	Elapsed       time.Duration
	// NoSegments marks the informational no-op: the audio directory held
	// nothing to render, and no artifacts were touched.
	NoSegments bool
}

func (o *Outcome) counters() journal.Counters {
	return journal.Counters{
		SegmentsTotal:   o.SegmentsTotal,
		SegmentsSkipped: o.Skipped,
		Fallbacks:       o.Fallbacks,
		CoversBuilt:     o.CoversBuilt,
	}
}

func (s SegmentOutcome) record() journal.SegmentRecord {
	return journal.SegmentRecord{
		Name:     s.Name,
		Speaker:  string(s.Speaker),
		Skipped:  s.Skipped,
		Fallback: s.Fallback,
		Encoder:  s.Encoder,
		Degraded: strings.Join(s.Degraded, ","),
	}
}
