package clipstore

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"clipvault/internal/logging"
	"clipvault/internal/services"
	"clipvault/internal/timeindex"
)

// Tier identifies one of the two storage tiers.
type Tier int

const (
	TierLocal Tier = iota + 1
	TierRemote
)

func (t Tier) String() string {
	switch t {
	case TierLocal:
		return "local"
	case TierRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// Entry is one indexed clip in a tier.
type Entry struct {
	Name     string
	Interval timeindex.Interval
	Tier     Tier
}

// ProgressFunc receives transfer progress. total is the full byte count of
// the object being moved.
type ProgressFunc func(transferred, total int64)

// RemoteBackend is the object-store surface the Store needs from the remote
// tier. A nil backend means the remote tier is not configured.
type RemoteBackend interface {
	List(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, name string) (bool, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Upload(ctx context.Context, name, srcPath string, progress ProgressFunc) error
	Download(ctx context.Context, name, destPath string) error
	Remove(ctx context.Context, name string) error
}

// Store is the uniform view over the local staging directory and the remote
// object store. The two tiers are independent failure domains: a missing
// remote backend degrades remote reads to empty results, while operations
// that explicitly need the remote tier fail with ErrStorageUnavailable.
type Store struct {
	dir    string
	codec  timeindex.Codec
	remote RemoteBackend
	logger *slog.Logger
}

// New constructs a store over stagingDir and an optional remote backend.
func New(stagingDir string, codec timeindex.Codec, remote RemoteBackend, logger *slog.Logger) *Store {
	return &Store{
		dir:    stagingDir,
		codec:  codec,
		remote: remote,
		logger: logging.NewComponentLogger(logger, "clipstore"),
	}
}

// Codec returns the codec used to index names.
func (s *Store) Codec() timeindex.Codec { return s.codec }

// RemoteAvailable reports whether the remote tier is configured.
func (s *Store) RemoteAvailable() bool { return s.remote != nil }

// LocalPath returns the staging path for a clip name.
func (s *Store) LocalPath(name string) string {
	return filepath.Join(s.dir, name)
}

// List returns the indexed clips of one tier, sorted by name. Files whose
// names do not decode are skipped: they are not indexable, not an error.
// Listing an unconfigured remote tier yields no entries.
func (s *Store) List(ctx context.Context, tier Tier) ([]Entry, error) {
	switch tier {
	case TierLocal:
		return s.listLocal()
	case TierRemote:
		if s.remote == nil {
			return nil, nil
		}
		names, err := s.remote.List(ctx)
		if err != nil {
			return nil, err
		}
		return s.index(names, TierRemote), nil
	default:
		return nil, services.Wrap(services.ErrIO, "clipstore", "list", "unknown tier", nil)
	}
}

// ListAll returns the indexed clips of both tiers, local entries first.
func (s *Store) ListAll(ctx context.Context) ([]Entry, error) {
	local, err := s.List(ctx, TierLocal)
	if err != nil {
		return nil, err
	}
	remote, err := s.List(ctx, TierRemote)
	if err != nil {
		// The local tier keeps working when the remote one is unreachable.
		s.logger.Warn("remote listing failed; continuing with local tier only", logging.Error(err))
		return local, nil
	}
	return append(local, remote...), nil
}

// Exists reports whether a clip is present in the given tier.
func (s *Store) Exists(ctx context.Context, tier Tier, name string) (bool, error) {
	switch tier {
	case TierLocal:
		_, err := os.Stat(s.LocalPath(name))
		if err == nil {
			return true, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	case TierRemote:
		if s.remote == nil {
			return false, services.Wrap(services.ErrStorageUnavailable, "clipstore", "exists", "remote tier not configured", nil)
		}
		return s.remote.Exists(ctx, name)
	default:
		return false, services.Wrap(services.ErrIO, "clipstore", "exists", "unknown tier", nil)
	}
}

// Open returns a reader over a clip's bytes in the given tier.
func (s *Store) Open(ctx context.Context, tier Tier, name string) (io.ReadCloser, error) {
	switch tier {
	case TierLocal:
		return os.Open(s.LocalPath(name))
	case TierRemote:
		if s.remote == nil {
			return nil, services.Wrap(services.ErrStorageUnavailable, "clipstore", "open", "remote tier not configured", nil)
		}
		return s.remote.Open(ctx, name)
	default:
		return nil, services.Wrap(services.ErrIO, "clipstore", "open", "unknown tier", nil)
	}
}

// Upload copies the clip's local file into the remote tier under the same
// name. The write is an idempotent overwrite keyed by name.
func (s *Store) Upload(ctx context.Context, name string, progress ProgressFunc) error {
	if s.remote == nil {
		return services.Wrap(services.ErrStorageUnavailable, "clipstore", "upload", "remote tier not configured", nil)
	}
	return s.remote.Upload(ctx, name, s.LocalPath(name), progress)
}

// Download fetches a clip's bytes from the remote tier into destPath.
func (s *Store) Download(ctx context.Context, name, destPath string) error {
	if s.remote == nil {
		return services.Wrap(services.ErrStorageUnavailable, "clipstore", "download", "remote tier not configured", nil)
	}
	return s.remote.Download(ctx, name, destPath)
}

// Delete removes a clip from the given tier.
func (s *Store) Delete(ctx context.Context, tier Tier, name string) error {
	switch tier {
	case TierLocal:
		if err := os.Remove(s.LocalPath(name)); err != nil {
			return services.Wrap(services.ErrIO, "clipstore", "delete", name, err)
		}
		return nil
	case TierRemote:
		if s.remote == nil {
			return services.Wrap(services.ErrStorageUnavailable, "clipstore", "delete", "remote tier not configured", nil)
		}
		return s.remote.Remove(ctx, name)
	default:
		return services.Wrap(services.ErrIO, "clipstore", "delete", "unknown tier", nil)
	}
}

// Promote moves a finished temp recording into the staging tier under its
// final index name. The rename is atomic on the same filesystem; on failure
// the temp file is left in place for manual recovery.
func (s *Store) Promote(tempPath, name string) (string, error) {
	dest := s.LocalPath(name)
	if err := os.Rename(tempPath, dest); err != nil {
		return "", services.Wrap(services.ErrIO, "clipstore", "promote", name, err)
	}
	return dest, nil
}

func (s *Store) listLocal() ([]Entry, error) {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(dirents))
	for _, de := range dirents {
		if de.IsDir() {
			continue
		}
		names = append(names, de.Name())
	}
	return s.index(names, TierLocal), nil
}

func (s *Store) index(names []string, tier Tier) []Entry {
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		iv, err := s.codec.Decode(name)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Name: name, Interval: iv, Tier: tier})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}
