package timeindex

import (
	"errors"
	"testing"
	"time"
)

func utcCodec() Codec { return New(time.UTC) }

func epoch(t *testing.T, hour, min, sec int) int64 {
	t.Helper()
	return time.Date(2025, 7, 12, hour, min, sec, 0, time.UTC).Unix()
}

func TestEncodeKnownName(t *testing.T) {
	c := utcCodec()

	name, err := c.Encode(Interval{Start: epoch(t, 5, 37, 10), End: epoch(t, 5, 42, 3)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "captured_video_2025-07-12_05-37-10_AM_to_05-42-03_AM.mp4"
	if name != want {
		t.Fatalf("name = %q, want %q", name, want)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := utcCodec()

	cases := []struct {
		label      string
		start, end int64
	}{
		{"morning", epoch(t, 9, 0, 0), epoch(t, 9, 30, 0)},
		{"crosses noon", epoch(t, 11, 59, 59), epoch(t, 12, 0, 1)},
		{"after midnight", epoch(t, 0, 0, 0), epoch(t, 0, 0, 30)},
		{"evening", epoch(t, 22, 15, 42), epoch(t, 23, 59, 59)},
		{"one second", epoch(t, 14, 10, 10), epoch(t, 14, 10, 11)},
	}

	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			name, err := c.Encode(Interval{Start: tc.start, End: tc.end})
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			got, err := c.Decode(name)
			if err != nil {
				t.Fatalf("decode %q: %v", name, err)
			}
			if got.Start != tc.start || got.End != tc.end {
				t.Fatalf("round trip: got [%d,%d], want [%d,%d]", got.Start, got.End, tc.start, tc.end)
			}
		})
	}
}

func TestEncodeRejectsMidnightSpan(t *testing.T) {
	c := utcCodec()

	start := time.Date(2025, 7, 12, 23, 55, 0, 0, time.UTC).Unix()
	end := time.Date(2025, 7, 13, 0, 5, 0, 0, time.UTC).Unix()

	if _, err := c.Encode(Interval{Start: start, End: end}); !errors.Is(err, ErrSpansMidnight) {
		t.Fatalf("expected ErrSpansMidnight, got %v", err)
	}
}

func TestEncodeRejectsInvertedInterval(t *testing.T) {
	c := utcCodec()
	if _, err := c.Encode(Interval{Start: 100, End: 100}); err == nil {
		t.Fatal("expected error for empty interval")
	}
}

func TestDecodeMalformedNames(t *testing.T) {
	c := utcCodec()

	malformed := []string{
		"",
		"video.mp4",
		"captured_video_.mp4",
		"captured_video_2025-07-12_05-37-10_AM.mp4",
		"captured_video_2025-07-12_05-37-10_AM_to_05-42-03_AM.mkv",
		"captured_video_2025-07-12_05-37-10_XM_to_05-42-03_AM.mp4",
		"captured_video_2025-13-40_05-37-10_AM_to_05-42-03_AM.mp4",
		"captured_video_2025-07-12_25-37-10_AM_to_05-42-03_AM.mp4",
		"prefix_captured_video_2025-07-12_05-37-10_AM_to_05-42-03_AM.mp4",
		"temp_recording_20250712_053710.mp4",
	}

	for _, name := range malformed {
		if _, err := c.Decode(name); !errors.Is(err, ErrNotAnIndexName) {
			t.Errorf("Decode(%q): expected ErrNotAnIndexName, got %v", name, err)
		}
	}
}

func TestDecodeRejectsInvertedName(t *testing.T) {
	c := utcCodec()

	// A midnight-crossing recording encodes an end time earlier than its
	// start; such names decode to an inverted interval and are not indexable.
	name := "captured_video_2025-07-12_11-55-00_PM_to_12-05-00_AM.mp4"
	if _, err := c.Decode(name); !errors.Is(err, ErrNotAnIndexName) {
		t.Fatalf("expected ErrNotAnIndexName, got %v", err)
	}
}

func TestOverlapBoundaries(t *testing.T) {
	iv := Interval{Start: 100, End: 200}

	cases := []struct {
		start, end int64
		want       bool
	}{
		{50, 100, true},   // touches at clip start
		{200, 250, true},  // touches at clip end
		{201, 250, false}, // just past the end
		{0, 99, false},    // just before the start
		{120, 180, true},  // fully inside
		{50, 250, true},   // fully covering
	}

	for _, tc := range cases {
		if got := iv.Overlaps(tc.start, tc.end); got != tc.want {
			t.Errorf("Overlaps(%d, %d) = %v, want %v", tc.start, tc.end, got, tc.want)
		}
	}
}

func TestIntervalDuration(t *testing.T) {
	iv := Interval{Start: 1752298630, End: 1752298660}
	if iv.Duration() != 30*time.Second {
		t.Fatalf("duration = %v, want 30s", iv.Duration())
	}
}
