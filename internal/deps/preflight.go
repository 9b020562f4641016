package deps

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"clipvault/internal/clipstore"
	"clipvault/internal/config"
)

// minStagingBytes is the free space below which the staging volume is
// considered too full to record safely.
const minStagingBytes = 1 << 30 // 1 GiB

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the preflight checks for the given config. The remote
// backend may be nil when no remote tier is configured; the check is skipped
// rather than failed, since a local-only setup is valid.
func RunAll(ctx context.Context, cfg *config.Config, remote clipstore.RemoteBackend) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckFreeSpace("Staging free space", cfg.Paths.StagingDir),
	}
	if cfg.RemoteConfigured() && remote != nil {
		results = append(results, CheckRemote(ctx, remote))
	}
	return results
}

// CheckDirectoryAccess verifies that the directory exists and is
// readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies the staging volume can hold at least one more
// recording of reasonable length.
func CheckFreeSpace(name, path string) Result {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := st.Bavail * uint64(st.Bsize)
	if free < minStagingBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s free (need at least %s)",
			humanize.IBytes(free), humanize.IBytes(minStagingBytes))}
	}
	return Result{Name: name, Passed: true, Detail: humanize.IBytes(free) + " free"}
}

// CheckRemote verifies the remote tier answers a listing request.
func CheckRemote(ctx context.Context, remote clipstore.RemoteBackend) Result {
	const name = "Remote tier"

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	names, err := remote.List(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unreachable (%v)", err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable (%d clips)", len(names))}
}
