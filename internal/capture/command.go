package capture

import (
	"fmt"
	"strconv"

	"clipvault/internal/config"
)

// encoderArgs builds the ffmpeg argument list recording src into outputPath.
// The switch over Source variants is exhaustive; a new variant must be given
// an invocation here.
func encoderArgs(cfg config.Capture, src Source, outputPath string) ([]string, error) {
	base := []string{"-y", "-loglevel", "warning"}

	switch s := src.(type) {
	case Device:
		input := s.Name
		if cfg.InputFormat == "dshow" {
			input = "video=" + s.Name
		}
		args := append(base,
			"-f", cfg.InputFormat,
			"-i", input,
			"-vcodec", "libx264",
			"-pix_fmt", "yuv420p",
			"-r", strconv.Itoa(cfg.FrameRate),
			"-s", cfg.FrameSize,
			"-f", "mp4",
			outputPath,
		)
		return args, nil

	case IPStream:
		args := append(base, "-i", s.VideoURL)
		if s.AudioURL != "" {
			args = append(args, "-i", s.AudioURL)
		}
		args = append(args,
			"-vcodec", "libx264",
			"-pix_fmt", "yuv420p",
			"-f", "mp4",
			outputPath,
		)
		return args, nil

	case LiveView:
		// Live-view feeds are already encoded; store them as-is.
		args := append(base, "-i", s.VideoURL)
		if s.AudioURL != "" {
			args = append(args, "-i", s.AudioURL)
		}
		args = append(args,
			"-c", "copy",
			"-f", "mp4",
			outputPath,
		)
		return args, nil

	default:
		return nil, fmt.Errorf("unsupported capture source %s", describeSource(src))
	}
}
