package uploader

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"clipvault/internal/clipstore"
	"clipvault/internal/config"
	"clipvault/internal/logging"
	"clipvault/internal/services"
)

// Pipeline moves finalized clips from the staging directory to the remote
// tier. Delivery is at least once: a clip stays local until its upload
// succeeds, uploads are idempotent overwrites keyed by clip name, and a
// startup reconcile re-enqueues anything a previous run left behind.
type Pipeline struct {
	store        *clipstore.Store
	logger       *slog.Logger
	pollInterval time.Duration
	stopGrace    time.Duration
	progressStep float64

	mu       sync.Mutex
	queue    []string
	queued   map[string]bool
	inFlight int

	wake chan struct{}

	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New constructs a stopped pipeline over the given store. Multiple pipelines
// are ordinary values; nothing here is process-global.
func New(cfg *config.Config, store *clipstore.Store, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		store:        store,
		logger:       logging.NewComponentLogger(logger, "uploader"),
		pollInterval: time.Duration(cfg.Upload.QueuePollSeconds) * time.Second,
		stopGrace:    time.Duration(cfg.Upload.ShutdownGraceSeconds) * time.Second,
		progressStep: cfg.Upload.ProgressStepPercent,
		queued:       make(map[string]bool),
		wake:         make(chan struct{}, 1),
	}
}

// Enqueue registers a clip name for upload. When no remote tier is
// configured, or the clip is missing from staging, the call logs a warning
// and does nothing rather than failing; already-queued names are collapsed.
func (p *Pipeline) Enqueue(name string) {
	if !p.store.RemoteAvailable() {
		p.logger.Warn("remote tier not configured; clip stays local",
			logging.String(logging.FieldClip, name),
		)
		return
	}
	if _, err := os.Stat(p.store.LocalPath(name)); err != nil {
		p.logger.Warn("clip missing from staging; not queued",
			logging.String(logging.FieldClip, name),
			logging.Error(err),
		)
		return
	}

	p.mu.Lock()
	if p.queued[name] {
		p.mu.Unlock()
		return
	}
	p.queued[name] = true
	p.queue = append(p.queue, name)
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
	p.logger.Info("clip queued for upload", logging.String(logging.FieldClip, name))
}

// QueueLen reports how many clips are waiting to upload.
func (p *Pipeline) QueueLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Idle reports whether nothing is queued or in flight. Callers that want
// their clips delivered before exiting poll this after enqueueing.
func (p *Pipeline) Idle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue) == 0 && p.inFlight == 0
}

// Reconcile enqueues every local clip missing from the remote tier and
// returns how many it found. It is the crash-recovery half of the
// at-least-once contract and runs before the worker's first drain.
func (p *Pipeline) Reconcile(ctx context.Context) (int, error) {
	if !p.store.RemoteAvailable() {
		return 0, nil
	}

	local, err := p.store.List(ctx, clipstore.TierLocal)
	if err != nil {
		return 0, services.Wrap(services.ErrIO, "uploader", "reconcile", "list staging directory", err)
	}
	remote, err := p.store.List(ctx, clipstore.TierRemote)
	if err != nil {
		return 0, services.Wrap(services.ErrStorageUnavailable, "uploader", "reconcile", "list remote tier", err)
	}

	uploaded := make(map[string]bool, len(remote))
	for _, entry := range remote {
		uploaded[entry.Name] = true
	}

	missing := 0
	for _, entry := range local {
		if uploaded[entry.Name] {
			continue
		}
		p.Enqueue(entry.Name)
		missing++
	}
	if missing > 0 {
		p.logger.Info("reconcile queued leftover clips", logging.Int("count", missing))
	}
	return missing, nil
}

// Start reconciles the tiers and launches the upload worker. It returns
// immediately; ErrSessionBusy when the pipeline is already running.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return services.Wrap(services.ErrSessionBusy, "uploader", "start", "pipeline already running", nil)
	}
	p.running = true
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	if !p.store.RemoteAvailable() {
		p.logger.Info("remote tier not configured; uploads disabled")
	} else if _, err := p.Reconcile(runCtx); err != nil {
		// Reconcile failure is not fatal: newly finalized clips still
		// flow, and the leftovers are retried on the next start.
		p.logger.Warn("startup reconcile failed", logging.Error(err))
	}

	go func() {
		defer close(done)
		p.run(runCtx)
	}()
	return nil
}

// Stop cancels the worker and waits for the in-flight upload up to the
// configured shutdown grace. An interrupted upload is redone by the next
// start's reconcile.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	cancel := p.cancel
	done := p.done
	p.mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-time.After(p.stopGrace):
		p.logger.Warn("upload worker did not stop within grace period",
			logging.Duration("grace", p.stopGrace),
		)
	}
}

// Flush uploads everything currently queued on the caller's goroutine and
// reports how many uploads failed. One-shot tools use it to drain the queue
// without running the background worker.
func (p *Pipeline) Flush(ctx context.Context) int {
	return p.drain(ctx)
}

func (p *Pipeline) run(ctx context.Context) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		p.drain(ctx)
		select {
		case <-ctx.Done():
			return
		case <-p.wake:
		case <-ticker.C:
		}
	}
}

// drain uploads everything currently queued, one clip in flight at a time.
// A failed upload is logged and left local; it is not retried within this
// run — the next startup's reconcile rediscovers it from the filesystem.
// Likewise, items undrained at cancellation are simply dropped.
func (p *Pipeline) drain(ctx context.Context) int {
	failed := 0
	for {
		if ctx.Err() != nil {
			return failed
		}
		name, ok := p.next()
		if !ok {
			return failed
		}
		err := p.uploadOne(ctx, name)
		p.finish()
		if err != nil {
			failed++
			p.logger.Warn("upload failed; clip retained locally",
				logging.String(logging.FieldClip, name),
				logging.Error(err),
			)
		}
	}
}

func (p *Pipeline) next() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return "", false
	}
	name := p.queue[0]
	p.queue = p.queue[1:]
	delete(p.queued, name)
	p.inFlight++
	return name, true
}

func (p *Pipeline) finish() {
	p.mu.Lock()
	p.inFlight--
	p.mu.Unlock()
}

// uploadOne pushes a single clip to the remote tier and removes the local
// copy once the bytes are safely remote.
func (p *Pipeline) uploadOne(ctx context.Context, name string) error {
	sampler := logging.NewProgressSampler(p.progressStep)
	progress := func(transferred, total int64) {
		if total <= 0 {
			return
		}
		percent := float64(transferred) / float64(total) * 100
		if sampler.ShouldLog(percent) {
			p.logger.Info("uploading",
				logging.String(logging.FieldClip, name),
				logging.Int64("transferred", transferred),
				logging.Int64("total", total),
				logging.Float64("percent", percent),
			)
		}
	}

	if err := p.store.Upload(ctx, name, progress); err != nil {
		return err
	}
	if err := p.store.Delete(ctx, clipstore.TierLocal, name); err != nil {
		// The remote copy is authoritative at this point; a stale local
		// file only costs disk and is skipped by the next reconcile.
		p.logger.Warn("could not remove uploaded clip from staging",
			logging.String(logging.FieldClip, name),
			logging.Error(err),
		)
	}
	p.logger.Info("clip uploaded", logging.String(logging.FieldClip, name))
	return nil
}
