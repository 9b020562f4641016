package media

import (
	"math"
	"strings"
	"testing"
)

// Realistic ffprobe -show_format output for a short mp4 capture.
const sampleFormat = `{
  "format": {
    "filename": "/staging/captured_video_2025-07-12_05-37-10_AM_to_05-42-03_AM.mp4",
    "nb_streams": 2,
    "format_name": "mov,mp4,m4a,3gp,3g2,mj2",
    "format_long_name": "QuickTime / MOV",
    "duration": "293.066667",
    "size": "18874368",
    "bit_rate": "515396",
    "probe_score": 100
  }
}`

func TestParseJSON(t *testing.T) {
	info, err := ParseJSON([]byte(sampleFormat))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if math.Abs(info.DurationSeconds-293.066667) > 1e-6 {
		t.Fatalf("duration = %v", info.DurationSeconds)
	}
	if info.SizeBytes != 18874368 {
		t.Fatalf("size = %d", info.SizeBytes)
	}
	if !strings.Contains(info.FormatName, "mp4") {
		t.Fatalf("format = %q", info.FormatName)
	}
}

func TestParseJSONRejectsGarbage(t *testing.T) {
	if _, err := ParseJSON([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestParseJSONRejectsMissingDuration(t *testing.T) {
	if _, err := ParseJSON([]byte(`{"format": {"format_name": "mp4"}}`)); err == nil {
		t.Fatal("expected error for missing duration")
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := formatSeconds(5); got != "5.000" {
		t.Fatalf("formatSeconds(5) = %q", got)
	}
	if got := formatSeconds(10.5); got != "10.500" {
		t.Fatalf("formatSeconds(10.5) = %q", got)
	}
}
