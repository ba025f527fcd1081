package ffprobe

import (
	"context"
	"math"
	"testing"
)

func TestResultStreamCounts(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video", CodecName: "h264"},
			{CodecType: "audio", CodecName: "aac"},
			{CodecType: "AUDIO", CodecName: "mp3"},
		},
	}
	if got := result.VideoStreamCount(); got != 1 {
		t.Errorf("VideoStreamCount() = %d, want 1", got)
	}
	if got := result.AudioStreamCount(); got != 2 {
		t.Errorf("AudioStreamCount() = %d, want 2", got)
	}
}

func TestResultDurationSeconds(t *testing.T) {
	tests := []struct {
		name     string
		duration string
		want     float64
		wantNaN  bool
	}{
		{"fractional seconds", "123.45", 123.45, false},
		{"whitespace trimmed", " 5.0 ", 5, false},
		{"missing duration", "", 0, false},
		{"unparsable duration", "bad", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Result{Format: Format{Duration: tt.duration}}
			got := result.DurationSeconds()
			if tt.wantNaN {
				if !math.IsNaN(got) {
					t.Fatalf("DurationSeconds() = %v, want NaN", got)
				}
				return
			}
			if got != tt.want {
				t.Fatalf("DurationSeconds() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInspectRejectsEmptyPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "ffprobe", "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
