package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Info is the subset of container metadata the retrieval path needs.
type Info struct {
	DurationSeconds float64
	FormatName      string
	SizeBytes       int64
}

// Probe runs a single ffprobe JSON call against path and returns the parsed
// result.
func Probe(ctx context.Context, ffprobeBin, path string) (*Info, error) {
	cmd := exec.CommandContext(ctx, ffprobeBin,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		path,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("ffprobe %q: %w: %s", path, err, detail)
		}
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	return ParseJSON(out)
}

// ParseJSON converts raw ffprobe JSON output into an Info. Exported for
// testing without a real ffprobe binary.
func ParseJSON(data []byte) (*Info, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	duration := parseFloat(raw.Format.Duration)
	if duration <= 0 {
		return nil, fmt.Errorf("ffprobe reported no duration")
	}

	return &Info{
		DurationSeconds: duration,
		FormatName:      raw.Format.FormatName,
		SizeBytes:       parseInt64(raw.Format.Size),
	}, nil
}

// ffprobe returns numbers as strings in its JSON output.

type ffprobeOutput struct {
	Format ffprobeFormat `json:"format"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}
