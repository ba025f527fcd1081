package segments

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/fileutil"
)

// Participant identifies one of the two fixed dialogue hosts.
type Participant string

const (
	Daniel    Participant = "daniel"
	Annabelle Participant = "annabelle"
)

// Participants returns both hosts in left-to-right screen order.
func Participants() [2]Participant {
	return [2]Participant{Daniel, Annabelle}
}

// Other returns the host sitting across from p.
func (p Participant) Other() Participant {
	if p == Daniel {
		return Annabelle
	}
	return Daniel
}

const (
	danielSuffix    = "_" + string(Daniel) + ".mp3"
	annabelleSuffix = "_" + string(Annabelle) + ".mp3"

	// silenceSuffix marks synthesized partner tracks; the still-image
	// shortcut keys off this name.
	silenceSuffix = "_silent_partner.wav"
)

// Segment is one dialogue beat: a named source audio file owned by the
// participant who speaks it. All derived artifact paths come from Layout.
type Segment struct {
	Name       string
	Speaker    Participant
	SourcePath string
}

// Scan discovers segments by filename suffix in sorted order. Files that
// carry neither host suffix are not an error, they are simply excluded.
func Scan(audioDir string) ([]Segment, error) {
	entries, err := os.ReadDir(audioDir)
	if err != nil {
		return nil, fmt.Errorf("scan audio dir: %w", err)
	}
	var found []Segment
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		var speaker Participant
		var segName string
		switch {
		case strings.HasSuffix(name, danielSuffix):
			speaker = Daniel
			segName = strings.TrimSuffix(name, danielSuffix)
		case strings.HasSuffix(name, annabelleSuffix):
			speaker = Annabelle
			segName = strings.TrimSuffix(name, annabelleSuffix)
		default:
			continue
		}
		if segName == "" {
			continue
		}
		found = append(found, Segment{
			Name:       segName,
			Speaker:    speaker,
			SourcePath: filepath.Join(audioDir, name),
		})
	}
	return found, nil
}

// IsSilenceTrack reports whether path names a synthesized partner track.
func IsSilenceTrack(path string) bool {
	return strings.HasSuffix(filepath.Base(path), silenceSuffix)
}

// Layout derives every artifact path for one decade run. Overrides are
// optional; zero values fall back to the conventional tree.
type Layout struct {
	InputsDir  string
	OutputsDir string
	Decade     string

	// AudioDir overrides the conventional source audio directory.
	AudioDir string
	// Portraits overrides individual host portrait paths.
	Portraits map[Participant]string
}

// NewLayout builds a Layout rooted at the given input and output trees.
func NewLayout(inputsDir, outputsDir, decade string) Layout {
	return Layout{InputsDir: inputsDir, OutputsDir: outputsDir, Decade: decade}
}

// SourceAudioDir is where segment MP3s are read from.
func (l Layout) SourceAudioDir() string {
	if l.AudioDir != "" {
		return l.AudioDir
	}
	return filepath.Join(l.InputsDir, l.Decade, "audio")
}

// ImagesDir holds the host portraits for the decade.
func (l Layout) ImagesDir() string {
	return filepath.Join(l.InputsDir, l.Decade, "images")
}

// Portrait returns the portrait image for a host.
func (l Layout) Portrait(p Participant) string {
	if path := l.Portraits[p]; path != "" {
		return path
	}
	return filepath.Join(l.ImagesDir(), string(p)+".png")
}

// WAVDir holds canonical and silent partner tracks beside the sources.
func (l Layout) WAVDir() string {
	return filepath.Join(l.SourceAudioDir(), "wav")
}

// CanonicalWAV is the 16 kHz mono conversion of the segment's source audio.
func (l Layout) CanonicalWAV(seg Segment) string {
	base := filepath.Base(seg.SourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(l.WAVDir(), stem+".wav")
}

// SilentWAV is the muted partner track matching the segment's duration.
func (l Layout) SilentWAV(seg Segment) string {
	return filepath.Join(l.WAVDir(), seg.Name+"_"+string(seg.Speaker)+silenceSuffix)
}

// WAVFor returns the track participant p contributes to the segment: the
// canonical speech track for the speaker, the silent track for the partner.
func (l Layout) WAVFor(seg Segment, p Participant) string {
	if p == seg.Speaker {
		return l.CanonicalWAV(seg)
	}
	return l.SilentWAV(seg)
}

// OutputRoot is the decade's output tree.
func (l Layout) OutputRoot() string {
	return filepath.Join(l.OutputsDir, l.Decade)
}

// ClipRoot holds one host's per-segment generator directories.
func (l Layout) ClipRoot(p Participant) string {
	return filepath.Join(l.OutputRoot(), "sadtalker", string(p))
}

// ClipDir is the per-segment working directory for one host's clip.
func (l Layout) ClipDir(p Participant, segment string) string {
	return filepath.Join(l.ClipRoot(p), segment)
}

// ClipPath is the canonical clip for one host in one segment.
func (l Layout) ClipPath(p Participant, segment string) string {
	return filepath.Join(l.ClipDir(p, segment), segment+"_"+string(p)+".mp4")
}

// FinalDir collects composed core clips and cover clips.
func (l Layout) FinalDir() string {
	return filepath.Join(l.OutputRoot(), "final")
}

// CorePath is the composed split-screen clip for a segment. The suffix is
// what concatenation globs for, so covers must not carry it.
func (l Layout) CorePath(segment string) string {
	return filepath.Join(l.FinalDir(), segment+"_split_core.mp4")
}

// IntroCoverPath and OutroCoverPath live in the final directory; the
// leading underscore keeps them out of the core-clip glob.
func (l Layout) IntroCoverPath() string {
	return filepath.Join(l.FinalDir(), "_intro.mp4")
}

// OutroCoverPath is the outro cover clip location.
func (l Layout) OutroCoverPath() string {
	return filepath.Join(l.FinalDir(), "_outro.mp4")
}

// ConcatListPath is the transient concat manifest.
func (l Layout) ConcatListPath() string {
	return filepath.Join(l.FinalDir(), "_ffconcat_list.txt")
}

// FinishedDir holds the assembled episode.
func (l Layout) FinishedDir() string {
	return filepath.Join(l.OutputRoot(), "finished")
}

// EpisodePath is the finished episode file.
func (l Layout) EpisodePath() string {
	return filepath.Join(l.FinishedDir(), l.Decade+".mp4")
}

// EnsureDirectories creates the output tree and the WAV cache directory.
func (l Layout) EnsureDirectories() error {
	dirs := []string{
		l.ClipRoot(Daniel),
		l.ClipRoot(Annabelle),
		l.FinalDir(),
		l.FinishedDir(),
		l.WAVDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// SegmentComplete reports whether every cached artifact for the segment
// exists: both participant clips and the composed core clip. It is the
// gate the skip-existing policy checks.
func (l Layout) SegmentComplete(seg Segment) bool {
	for _, p := range Participants() {
		if !fileutil.FileExists(l.ClipPath(p, seg.Name)) {
			return false
		}
	}
	return fileutil.FileExists(l.CorePath(seg.Name))
}
