package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Trim produces outPath containing lengthSec seconds of inPath starting at
// offsetSec, as a lossless stream copy. Cut points land on the nearest
// keyframes, so the result is second-accurate, not frame-accurate. A failed
// trim leaves no output file behind.
func Trim(ctx context.Context, ffmpegBin, inPath, outPath string, offsetSec, lengthSec float64) error {
	if lengthSec <= 0 {
		return fmt.Errorf("trim length must be positive, got %s", formatSeconds(lengthSec))
	}

	cmd := exec.CommandContext(ctx, ffmpegBin,
		"-y",
		"-loglevel", "error",
		"-ss", formatSeconds(offsetSec),
		"-i", inPath,
		"-t", formatSeconds(lengthSec),
		"-c", "copy",
		outPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.Remove(outPath)
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("ffmpeg trim: %w: %s", err, detail)
		}
		return fmt.Errorf("ffmpeg trim: %w", err)
	}
	return nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
