package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"clipvault/internal/clipstore"
	"clipvault/internal/config"
	"clipvault/internal/fileutil"
	"clipvault/internal/logging"
	"clipvault/internal/media"
	"clipvault/internal/services"
)

// Prober reports a media file's duration in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Trimmer writes a lossless sub-range copy of src to dest.
type Trimmer interface {
	Trim(ctx context.Context, src, dest string, offsetSec, lengthSec float64) error
}

type ffprobeProber struct {
	bin string
}

func (p ffprobeProber) Duration(ctx context.Context, path string) (float64, error) {
	info, err := media.Probe(ctx, p.bin, path)
	if err != nil {
		return 0, services.Wrap(services.ErrProbe, "retrieval", "probe", path, err)
	}
	return info.DurationSeconds, nil
}

type ffmpegTrimmer struct {
	bin string
}

func (t ffmpegTrimmer) Trim(ctx context.Context, src, dest string, offsetSec, lengthSec float64) error {
	if err := media.Trim(ctx, t.bin, src, dest, offsetSec, lengthSec); err != nil {
		return services.Wrap(services.ErrEncode, "retrieval", "trim", dest, err)
	}
	return nil
}

// Engine resolves a wall-clock interval to a clip in either tier and cuts
// the requested span out of it. Calls are synchronous and independent;
// concurrent retrievals only read from the store and write to distinct
// output paths.
type Engine struct {
	store   *clipstore.Store
	workDir string
	prober  Prober
	trimmer Trimmer
	logger  *slog.Logger
}

// NewEngine constructs a retrieval engine writing intermediate and output
// files under the configured work directory.
func NewEngine(cfg *config.Config, store *clipstore.Store, logger *slog.Logger) *Engine {
	return &Engine{
		store:   store,
		workDir: cfg.Paths.WorkDir,
		prober:  ffprobeProber{bin: cfg.FFprobeBinary()},
		trimmer: ffmpegTrimmer{bin: cfg.FFmpegBinary()},
		logger:  logging.NewComponentLogger(logger, "retrieval"),
	}
}

// Query lists every clip whose interval overlaps [startMS, endMS], both
// bounds in epoch milliseconds. Overlap is closed on both ends: a clip
// ending exactly at the query start, or starting exactly at the query end,
// is included. Results are ordered earliest start first, with the local
// tier ahead of remote on equal starts, and a clip present in both tiers
// appears once, as its local copy.
func (e *Engine) Query(ctx context.Context, startMS, endMS int64) ([]clipstore.Entry, error) {
	if startMS < 0 || startMS >= endMS {
		return nil, services.Wrap(services.ErrInvalidRange, "retrieval", "query",
			fmt.Sprintf("invalid interval [%d, %d] ms", startMS, endMS), nil)
	}
	startSec := startMS / 1000
	endSec := endMS / 1000

	entries, err := e.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]clipstore.Entry)
	for _, entry := range entries {
		if !entry.Interval.Overlaps(startSec, endSec) {
			continue
		}
		prev, seen := byName[entry.Name]
		if seen && prev.Tier == clipstore.TierLocal {
			continue
		}
		byName[entry.Name] = entry
	}

	matches := make([]clipstore.Entry, 0, len(byName))
	for _, entry := range byName {
		matches = append(matches, entry)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Interval.Start != matches[j].Interval.Start {
			return matches[i].Interval.Start < matches[j].Interval.Start
		}
		return matches[i].Tier == clipstore.TierLocal && matches[j].Tier == clipstore.TierRemote
	})
	return matches, nil
}

// Fetch materializes the whole covering clip into the work directory and
// returns its path. The copy belongs to the caller; the staging and remote
// tiers are left untouched.
func (e *Engine) Fetch(ctx context.Context, startMS, endMS int64) (string, error) {
	entry, err := e.selectCandidate(ctx, startMS, endMS)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(e.workDir, "fetched_"+entry.Name)
	switch entry.Tier {
	case clipstore.TierLocal:
		if err := fileutil.CopyFileVerified(e.store.LocalPath(entry.Name), dest); err != nil {
			return "", services.Wrap(services.ErrIO, "retrieval", "fetch", entry.Name, err)
		}
	case clipstore.TierRemote:
		if err := e.store.Download(ctx, entry.Name, dest); err != nil {
			return "", err
		}
	}
	e.logger.Info("clip fetched",
		logging.String(logging.FieldClip, entry.Name),
		logging.String("path", dest),
	)
	return dest, nil
}

// Extract cuts the requested span out of the covering clip and returns the
// path of the new asset. The requested bounds are clamped to the clip's
// probed duration; bounds that collapse to an empty range fail with
// ErrInvalidRange and produce no output. A downloaded intermediate is
// removed once the cut succeeds and retained when it fails.
func (e *Engine) Extract(ctx context.Context, startMS, endMS int64) (string, error) {
	entry, err := e.selectCandidate(ctx, startMS, endMS)
	if err != nil {
		return "", err
	}

	srcPath, owned, err := e.materialize(ctx, entry)
	if err != nil {
		return "", err
	}

	duration, err := e.prober.Duration(ctx, srcPath)
	if err != nil {
		return "", err
	}

	relStart := float64(startMS)/1000 - float64(entry.Interval.Start)
	if relStart < 0 {
		relStart = 0
	}
	relEnd := float64(endMS)/1000 - float64(entry.Interval.Start)
	if relEnd > duration {
		relEnd = duration
	}
	if relStart >= relEnd {
		return "", services.Wrap(services.ErrInvalidRange, "retrieval", "extract",
			fmt.Sprintf("requested range collapses to [%.3f, %.3f] within %s", relStart, relEnd, entry.Name), nil)
	}

	outPath := filepath.Join(e.workDir, fmt.Sprintf("cropped_%d_%d.mp4", startMS, endMS))
	if err := e.trimmer.Trim(ctx, srcPath, outPath, relStart, relEnd-relStart); err != nil {
		return "", err
	}

	if owned {
		if err := os.Remove(srcPath); err != nil {
			e.logger.Warn("could not remove intermediate clip",
				logging.String("path", srcPath),
				logging.Error(err),
			)
		}
	}
	e.logger.Info("segment extracted",
		logging.String(logging.FieldClip, entry.Name),
		logging.Float64("offset_sec", relStart),
		logging.Float64("length_sec", relEnd-relStart),
		logging.String("path", outPath),
	)
	return outPath, nil
}

// selectCandidate picks the covering clip for a request: the overlapping
// clip with the earliest start, local tier winning ties.
func (e *Engine) selectCandidate(ctx context.Context, startMS, endMS int64) (clipstore.Entry, error) {
	matches, err := e.Query(ctx, startMS, endMS)
	if err != nil {
		return clipstore.Entry{}, err
	}
	if len(matches) == 0 {
		return clipstore.Entry{}, services.Wrap(services.ErrNotFound, "retrieval", "query",
			fmt.Sprintf("no clip covers [%d, %d] ms", startMS, endMS), nil)
	}
	return matches[0], nil
}

// materialize returns a readable local path for the candidate. A local clip
// is used in place; a remote one is downloaded into the work directory and
// flagged as owned so the caller may reclaim it.
func (e *Engine) materialize(ctx context.Context, entry clipstore.Entry) (string, bool, error) {
	if entry.Tier == clipstore.TierLocal {
		return e.store.LocalPath(entry.Name), false, nil
	}
	dest := filepath.Join(e.workDir, "fetched_"+entry.Name)
	if err := e.store.Download(ctx, entry.Name, dest); err != nil {
		return "", false, err
	}
	return dest, true, nil
}
