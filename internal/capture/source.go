package capture

import "fmt"

// Source identifies where the encoder pulls frames from. It is a closed set:
// exactly one of the types below, switched exhaustively when building the
// encoder invocation.
type Source interface {
	// Label returns a short human-readable description for logs and prompts.
	Label() string

	sealed()
}

// Device is a locally attached camera, addressed the way the configured
// input format expects (a /dev node for v4l2, a device name for dshow).
type Device struct {
	Name string
}

func (d Device) Label() string { return "device " + d.Name }

func (Device) sealed() {}

// IPStream is a network camera exposing video (and optionally audio) URLs.
// The feed is re-encoded to the standard clip format.
type IPStream struct {
	VideoURL string
	AudioURL string
}

func (s IPStream) Label() string { return "ip stream " + s.VideoURL }

func (IPStream) sealed() {}

// LiveView is a pre-encoded monitoring feed; its streams are stored with a
// stream copy instead of being re-encoded.
type LiveView struct {
	VideoURL string
	AudioURL string
}

func (v LiveView) Label() string { return "live view " + v.VideoURL }

func (LiveView) sealed() {}

func describeSource(src Source) string {
	if src == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T(%s)", src, src.Label())
}
