package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidatesAfterNormalize(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.RemoteConfigured() {
		t.Fatal("defaults should not configure a remote tier")
	}
}

func TestLoadParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
staging_dir = "` + filepath.Join(dir, "staging") + `"
work_dir = "` + filepath.Join(dir, "work") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[storage]
endpoint = "s3.example.com"
bucket = "clips"
prefix = "recorded-videos"
access_key = "ak"
secret_key = "sk"

[capture]
frame_rate = 24
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if resolved != path {
		t.Fatalf("resolved = %q, want %q", resolved, path)
	}
	if cfg.Capture.FrameRate != 24 {
		t.Fatalf("frame_rate = %d, want 24", cfg.Capture.FrameRate)
	}
	if !cfg.RemoteConfigured() {
		t.Fatal("remote tier should be configured")
	}
	if cfg.Storage.Prefix != "recorded-videos/" {
		t.Fatalf("prefix not normalized: %q", cfg.Storage.Prefix)
	}
	// Defaults fill unset sections.
	if cfg.Upload.QueuePollSeconds != 1 {
		t.Fatalf("queue_poll_seconds = %d, want default 1", cfg.Upload.QueuePollSeconds)
	}
}

func TestLoadRejectsRemoteWithoutCredentials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[storage]
endpoint = "s3.example.com"
bucket = "clips"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected credential validation error")
	}
}

func TestValidateRejectsBadFrameSize(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatal(err)
	}
	cfg.Capture.FrameSize = "wide"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "frame_size") {
		t.Fatalf("expected frame_size error, got %v", err)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := WriteSample(path); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected error on existing file")
	}
}
