package timeindex

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

const (
	namePrefix = "captured_video_"
	nameExt    = ".mp4"

	startLayout = "2006-01-02_03-04-05_PM"
	endLayout   = "03-04-05_PM"
)

// ErrNotAnIndexName reports a string that does not decode to a clip interval.
var ErrNotAnIndexName = errors.New("not an index name")

// ErrSpansMidnight reports an interval whose end falls on a different calendar
// date than its start. The filename grammar carries only the start date, so
// such intervals are rejected instead of silently encoded wrong.
var ErrSpansMidnight = errors.New("interval spans midnight")

var namePattern = regexp.MustCompile(
	`^captured_video_(\d{4}-\d{2}-\d{2})_(\d{2}-\d{2}-\d{2}_[AP]M)_to_(\d{2}-\d{2}-\d{2}_[AP]M)\.mp4$`,
)

// Interval is a clip's [start, end] range in epoch seconds.
type Interval struct {
	Start int64
	End   int64
}

// Duration returns the interval length.
func (iv Interval) Duration() time.Duration {
	return time.Duration(iv.End-iv.Start) * time.Second
}

// Overlaps reports whether the closed interval [startSec, endSec] touches this
// clip. A clip ending exactly at startSec, or starting exactly at endSec,
// counts as overlapping.
func (iv Interval) Overlaps(startSec, endSec int64) bool {
	return startSec <= iv.End && endSec >= iv.Start
}

// Codec converts clip intervals to and from index filenames. The zero value is
// not usable; construct with New.
type Codec struct {
	loc *time.Location
}

// New returns a codec that renders timestamps in loc. A nil location means
// the system's local time, matching what the recorder wrote.
func New(loc *time.Location) Codec {
	if loc == nil {
		loc = time.Local
	}
	return Codec{loc: loc}
}

// Encode renders an interval as its index filename. Both timestamps must fall
// on the same calendar date; recordings that cross midnight are not
// representable by the grammar and return ErrSpansMidnight.
func (c Codec) Encode(iv Interval) (string, error) {
	if iv.Start >= iv.End {
		return "", fmt.Errorf("encode interval: start %d not before end %d", iv.Start, iv.End)
	}
	start := time.Unix(iv.Start, 0).In(c.loc)
	end := time.Unix(iv.End, 0).In(c.loc)

	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	if sy != ey || sm != em || sd != ed {
		return "", ErrSpansMidnight
	}

	return namePrefix + start.Format(startLayout) + "_to_" + end.Format(endLayout) + nameExt, nil
}

// Decode parses an index filename back into its interval. It is total: any
// string that does not match the grammar, or decodes to an empty or inverted
// interval, yields ErrNotAnIndexName.
func (c Codec) Decode(name string) (Interval, error) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return Interval{}, ErrNotAnIndexName
	}

	start, err := time.ParseInLocation(startLayout, m[1]+"_"+m[2], c.loc)
	if err != nil {
		return Interval{}, ErrNotAnIndexName
	}
	// The end shares the start's calendar date.
	end, err := time.ParseInLocation(startLayout, m[1]+"_"+m[3], c.loc)
	if err != nil {
		return Interval{}, ErrNotAnIndexName
	}

	iv := Interval{Start: start.Unix(), End: end.Unix()}
	if iv.Start >= iv.End {
		return Interval{}, ErrNotAnIndexName
	}
	return iv, nil
}
