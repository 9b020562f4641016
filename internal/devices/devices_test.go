package devices

import (
	"testing"

	"github.com/pilebones/go-udev/netlink"

	"clipvault/internal/logging"
)

const dshowListing = `[dshow @ 0000020c] DirectShow video devices (some may be both video and audio devices)
[dshow @ 0000020c]  "Integrated Camera" (video)
[dshow @ 0000020c]    Alternative name "@device_pnp_\\?\usb#vid_04f2"
[dshow @ 0000020c]  "OBS Virtual Camera" (video)
[dshow @ 0000020c] DirectShow audio devices
[dshow @ 0000020c]  "Microphone Array (Realtek)" (audio)
dummy: Immediate exit requested
`

const unlabeledListing = `[dshow @ 0000020c] DirectShow video devices
[dshow @ 0000020c]  "USB Camera"
[dshow @ 0000020c]  "Microphone (USB Audio)"
dummy: Immediate exit requested
`

func TestParseListOutput(t *testing.T) {
	names := ParseListOutput(dshowListing)
	want := []string{"Integrated Camera", "OBS Virtual Camera"}
	if len(names) != len(want) {
		t.Fatalf("parsed %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestParseListOutputFallback(t *testing.T) {
	names := ParseListOutput(unlabeledListing)
	if len(names) != 1 || names[0] != "USB Camera" {
		t.Fatalf("parsed %v, want [USB Camera]", names)
	}
}

func TestParseListOutputEmpty(t *testing.T) {
	if names := ParseListOutput("no devices here"); len(names) != 0 {
		t.Fatalf("parsed %v from garbage", names)
	}
}

func TestParseListOutputDeduplicates(t *testing.T) {
	listing := dshowListing + "\n" + dshowListing
	if names := ParseListOutput(listing); len(names) != 2 {
		t.Fatalf("parsed %v, want two unique names", names)
	}
}

func TestMonitorRunning(t *testing.T) {
	t.Run("nil monitor returns false", func(t *testing.T) {
		var m *Monitor
		if m.Running() {
			t.Error("expected Running() to return false for nil monitor")
		}
	})

	t.Run("unstarted monitor returns false", func(t *testing.T) {
		m := NewMonitor(logging.NewNop(), nil)
		if m.Running() {
			t.Error("expected Running() to return false for unstarted monitor")
		}
	})

	t.Run("stop before start is a no-op", func(t *testing.T) {
		m := NewMonitor(logging.NewNop(), nil)
		m.Stop()
		m.Stop()
	})
}

func TestExtractDeviceNode(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"devname relative", map[string]string{"DEVNAME": "video2"}, "/dev/video2"},
		{"devname absolute", map[string]string{"DEVNAME": "/dev/video0"}, "/dev/video0"},
		{"devpath fallback", map[string]string{"DEVPATH": "/devices/pci0000/usb1/video4linux/video1"}, "/dev/video1"},
		{"no device info", map[string]string{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := extractDeviceNode(netlink.UEvent{Env: tc.env})
			if got != tc.want {
				t.Errorf("extractDeviceNode = %q, want %q", got, tc.want)
			}
		})
	}
}
