package devices

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"clipvault/internal/config"
	"clipvault/internal/services"
)

// videoLinePattern matches ffmpeg device-listing lines of the form
//
//	[dshow @ ...] "Integrated Camera" (video)
var videoLinePattern = regexp.MustCompile(`"([^"]+)".*\(video\)`)

// ParseListOutput extracts capture device names from the stderr of an
// `ffmpeg -list_devices true` run. ffmpeg versions vary in how they label
// the lines, so a heuristic pass backs up the strict one: any quoted name
// on a video-ish line that is not obviously an audio device.
func ParseListOutput(output string) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	lines := strings.Split(output, "\n")
	for _, line := range lines {
		if !strings.Contains(line, `"`) {
			continue
		}
		if m := videoLinePattern.FindStringSubmatch(line); m != nil {
			add(m[1])
		}
	}
	if len(names) > 0 {
		return names
	}

	for _, line := range lines {
		lower := strings.ToLower(line)
		if !strings.Contains(line, `"`) {
			continue
		}
		if !strings.Contains(lower, "video") && !strings.Contains(lower, "camera") {
			continue
		}
		start := strings.Index(line, `"`)
		end := strings.Index(line[start+1:], `"`)
		if end <= 0 {
			continue
		}
		name := line[start+1 : start+1+end]
		lowerName := strings.ToLower(name)
		if strings.Contains(lowerName, "microphone") || strings.Contains(lowerName, "audio") {
			continue
		}
		add(name)
	}
	return names
}

// Detect lists the capture devices reachable through the configured input
// format: /dev/video nodes for v4l2, named devices via the encoder's listing
// mode everywhere else.
func Detect(ctx context.Context, cfg *config.Config) ([]string, error) {
	if cfg.Capture.InputFormat == "v4l2" {
		return listDevNodes()
	}
	return listNamedDevices(ctx, cfg.FFmpegBinary(), cfg.Capture.InputFormat)
}

func listDevNodes() ([]string, error) {
	nodes, err := filepath.Glob("/dev/video*")
	if err != nil {
		return nil, services.Wrap(services.ErrDevice, "devices", "list", "scan /dev", err)
	}
	sort.Strings(nodes)
	return nodes, nil
}

func listNamedDevices(ctx context.Context, ffmpegBin, format string) ([]string, error) {
	cmd := exec.CommandContext(ctx, ffmpegBin,
		"-hide_banner",
		"-list_devices", "true",
		"-f", format,
		"-i", "dummy",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	// ffmpeg exits non-zero after listing devices; the listing is on
	// stderr regardless, so only a completely silent run is an error.
	runErr := cmd.Run()
	if stderr.Len() == 0 {
		return nil, services.Wrap(services.ErrDevice, "devices", "list", "device probe produced no output", runErr)
	}
	return ParseListOutput(stderr.String()), nil
}
