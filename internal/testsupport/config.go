// Package testsupport seeds tests with isolated configs, clip fixtures, an
// in-memory remote tier, and stub encoder binaries.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"clipvault/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithStopGrace shortens the capture stop-escalation timings so forced-stop
// paths run in test time.
func WithStopGrace(stopSeconds, killSeconds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Capture.StopGraceSeconds = stopSeconds
		cfg.Capture.KillGraceSeconds = killSeconds
	}
}

// StubBinary writes an executable shell script under a per-test bin dir and
// prepends that dir to PATH. Later stubs with the same name overwrite earlier
// ones.
func StubBinary(t testing.TB, name, script string) {
	t.Helper()

	binDir := filepath.Join(t.TempDir(), "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}

	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
		t.Fatalf("set PATH: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
}
