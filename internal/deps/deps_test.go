package deps

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"clipvault/internal/testsupport"
)

func TestCheckBinaries(t *testing.T) {
	testsupport.StubBinary(t, "clipvault-test-tool", "#!/bin/sh\nexit 0\n")

	statuses := CheckBinaries([]Requirement{
		{Name: "Present", Command: "clipvault-test-tool"},
		{Name: "Missing", Command: "clipvault-no-such-tool"},
		{Name: "Unset", Command: ""},
	})

	if !statuses[0].Available {
		t.Errorf("stubbed binary reported unavailable: %+v", statuses[0])
	}
	if statuses[1].Available || !strings.Contains(statuses[1].Detail, "not found") {
		t.Errorf("missing binary not flagged: %+v", statuses[1])
	}
	if statuses[2].Available || statuses[2].Detail != "command not configured" {
		t.Errorf("empty command not flagged: %+v", statuses[2])
	}
}

func TestCheckSystemDeps(t *testing.T) {
	testsupport.StubBinary(t, "ffmpeg", "#!/bin/sh\nexit 0\n")
	testsupport.StubBinary(t, "ffprobe", "#!/bin/sh\nexit 0\n")
	cfg := testsupport.NewConfig(t)

	for _, status := range CheckSystemDeps(cfg) {
		if !status.Available {
			t.Errorf("%s unavailable with stubs on PATH: %s", status.Name, status.Detail)
		}
	}
}

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()

	if res := CheckDirectoryAccess("dir", dir); !res.Passed {
		t.Errorf("writable directory failed: %s", res.Detail)
	}
	if res := CheckDirectoryAccess("dir", filepath.Join(dir, "missing")); res.Passed {
		t.Error("missing directory passed")
	}

	file := filepath.Join(dir, "file")
	testsupport.WriteFile(t, file, 1)
	if res := CheckDirectoryAccess("dir", file); res.Passed {
		t.Error("regular file passed as directory")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	if res := CheckFreeSpace("space", t.TempDir()); res.Detail == "" {
		t.Error("free space check produced no detail")
	}
	if res := CheckFreeSpace("space", "/no/such/volume"); res.Passed {
		t.Error("statfs on missing path passed")
	}
}

func TestRunAllWithMemoryRemote(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Storage.Endpoint = "minio.local:9000"
	cfg.Storage.Bucket = "clips"
	cfg.Storage.AccessKey = "key"
	cfg.Storage.SecretKey = "secret"

	remote := testsupport.NewMemoryRemote()
	remote.Seed("captured_video_2024-06-01_09-00-00_AM_to_09-00-30_AM.mp4", []byte("x"))

	results := RunAll(context.Background(), cfg, remote)
	byName := make(map[string]Result, len(results))
	for _, res := range results {
		byName[res.Name] = res
	}

	if res, ok := byName["Remote tier"]; !ok || !res.Passed {
		t.Errorf("remote tier check = %+v", res)
	}
	if res := byName["Staging directory"]; !res.Passed {
		t.Errorf("staging directory check = %+v", res)
	}
}
