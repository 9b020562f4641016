package capture

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"clipvault/internal/clipstore"
	"clipvault/internal/config"
	"clipvault/internal/fileutil"
	"clipvault/internal/logging"
	"clipvault/internal/services"
	"clipvault/internal/timeindex"
)

// State is a capture session's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateRecording
	StateStoppingGraceful
	StateStoppingForced
	StateFinalized
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRecording:
		return "recording"
	case StateStoppingGraceful:
		return "stopping-graceful"
	case StateStoppingForced:
		return "stopping-forced"
	case StateFinalized:
		return "finalized"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Sink receives the names of finalized clips, typically the upload pipeline.
type Sink interface {
	Enqueue(name string)
}

// Result describes a finalized recording.
type Result struct {
	Name      string
	LocalPath string
	Interval  timeindex.Interval
	// Forced is set when the encoder ignored the graceful stop request and
	// had to be terminated; the clip was saved but may be truncated.
	Forced bool
}

// Session drives one external encoder process from spawn to a finalized,
// index-named clip. A Session records at most once; construct a new one per
// recording. Exactly one session may record into a staging directory at a
// time, enforced with a lock file so the guarantee holds across processes.
type Session struct {
	cfg       config.Capture
	ffmpegBin string
	store     *clipstore.Store
	sink      Sink
	logger    *slog.Logger
	clock     func() time.Time

	stopGrace    time.Duration
	killGrace    time.Duration
	pollInterval time.Duration

	lock *flock.Flock

	stopOnce sync.Once
	stopCh   chan struct{}

	mu        sync.Mutex
	state     State
	tempPath  string
	startUnix int64
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stderr    bytes.Buffer
	done      chan error
}

// NewSession constructs an idle capture session over the given store.
func NewSession(cfg *config.Config, store *clipstore.Store, sink Sink, logger *slog.Logger) *Session {
	poll := time.Duration(cfg.Capture.PollIntervalMS) * time.Millisecond
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}
	return &Session{
		cfg:          cfg.Capture,
		ffmpegBin:    cfg.FFmpegBinary(),
		store:        store,
		sink:         sink,
		logger:       logging.NewComponentLogger(logger, "capture"),
		clock:        time.Now,
		stopGrace:    time.Duration(cfg.Capture.StopGraceSeconds) * time.Second,
		killGrace:    time.Duration(cfg.Capture.KillGraceSeconds) * time.Second,
		pollInterval: poll,
		lock:         flock.New(store.LocalPath(".capture.lock")),
		stopCh:       make(chan struct{}),
	}
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start spawns the encoder against src and begins recording into a temp file
// in the staging directory. It fails with ErrSessionBusy when this session
// was already started or another session holds the staging lock, and with
// ErrDevice when the encoder cannot be spawned.
func (s *Session) Start(src Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return services.Wrap(services.ErrSessionBusy, "capture", "start", "session already used (state "+s.state.String()+")", nil)
	}

	locked, err := s.lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrIO, "capture", "start", "acquire staging lock", err)
	}
	if !locked {
		return services.Wrap(services.ErrSessionBusy, "capture", "start", "another capture session is recording", nil)
	}

	s.state = StateStarting

	temp := s.store.LocalPath("recording_" + uuid.NewString() + ".mp4.part")
	args, err := encoderArgs(s.cfg, src, temp)
	if err != nil {
		s.failStartLocked()
		return services.Wrap(services.ErrDevice, "capture", "start", "build encoder invocation", err)
	}

	cmd := exec.Command(s.ffmpegBin, args...)
	cmd.Stderr = &s.stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		s.failStartLocked()
		return services.Wrap(services.ErrDevice, "capture", "start", "open encoder stdin", err)
	}
	if err := cmd.Start(); err != nil {
		s.failStartLocked()
		return services.Wrap(services.ErrDevice, "capture", "start", "spawn encoder for "+src.Label(), err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	s.cmd = cmd
	s.stdin = stdin
	s.tempPath = temp
	s.startUnix = s.clock().Unix()
	s.done = done
	s.state = StateRecording

	s.logger.Info("recording started",
		logging.String("source", src.Label()),
		logging.String("temp", temp),
	)
	return nil
}

// Stop requests a graceful stop. The session's Wait call performs the actual
// escalation and finalization; Stop only raises the token and may be called
// from any goroutine, at most once effectively.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Wait monitors the recording until it ends and returns the finalized clip.
//
// The monitor wakes on a short poll interval and observes three conditions:
// natural encoder exit (finalize on success, ErrEncode on a crash), a Stop
// call, and ctx cancellation. The latter two trigger the graceful-stop
// escalation: 'q' on stdin, then SIGTERM after the stop grace, then SIGKILL.
// A forced stop that still saved data returns both a non-nil Result and
// ErrStopTimeout.
func (s *Session) Wait(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	if s.state != StateRecording {
		state := s.state
		s.mu.Unlock()
		return nil, services.Wrap(services.ErrSessionBusy, "capture", "wait", "session not recording (state "+state.String()+")", nil)
	}
	done := s.done
	s.mu.Unlock()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			return s.handleUnsolicitedExit(err)
		case <-ticker.C:
			select {
			case <-ctx.Done():
				return s.stopSequence()
			case <-s.stopCh:
				return s.stopSequence()
			default:
			}
		}
	}
}

// handleUnsolicitedExit deals with the encoder ending before any stop was
// requested: a zero exit is a natural finish, anything else discards the
// temp file.
func (s *Session) handleUnsolicitedExit(exitErr error) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.releaseLockLocked()

	if exitErr != nil {
		_ = os.Remove(s.tempPath)
		s.state = StateFailed
		return nil, services.Wrap(services.ErrEncode, "capture", "record", s.stderrTail(), exitErr)
	}
	return s.finalizeLocked(false)
}

func (s *Session) stopSequence() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.releaseLockLocked()

	s.state = StateStoppingGraceful
	s.logger.Info("graceful stop requested")

	// 'q' asks ffmpeg to finish writing the container cleanly.
	if s.stdin != nil {
		_, _ = io.WriteString(s.stdin, "q\n")
	}

	select {
	case <-s.done:
		return s.finalizeLocked(false)
	case <-time.After(s.stopGrace):
	}

	s.state = StateStoppingForced
	s.logger.Warn("graceful stop timed out; escalating to terminate",
		logging.Duration("stop_grace", s.stopGrace),
	)
	_ = s.cmd.Process.Signal(syscall.SIGTERM)

	select {
	case <-s.done:
	case <-time.After(s.killGrace):
		s.logger.Warn("terminate ignored; killing encoder",
			logging.Duration("kill_grace", s.killGrace),
		)
		_ = s.cmd.Process.Kill()
		<-s.done
	}

	result, err := s.finalizeLocked(true)
	if err != nil {
		return nil, err
	}
	return result, services.Wrap(services.ErrStopTimeout, "capture", "stop",
		"encoder ignored graceful stop; clip saved but may be truncated", nil)
}

// finalizeLocked names and promotes whatever bytes the encoder wrote. Called
// with s.mu held.
func (s *Session) finalizeLocked(forced bool) (*Result, error) {
	endUnix := s.clock().Unix()

	if !fileutil.NonEmpty(s.tempPath) {
		_ = os.Remove(s.tempPath)
		s.state = StateFailed
		return nil, services.Wrap(services.ErrEncode, "capture", "finalize", "encoder produced no data", nil)
	}

	iv := timeindex.Interval{Start: s.startUnix, End: endUnix}
	if iv.End <= iv.Start {
		// The index has one-second resolution; a sub-second recording
		// rounds up rather than collapsing to an empty interval.
		iv.End = iv.Start + 1
	}

	name, err := s.store.Codec().Encode(iv)
	if err != nil {
		s.state = StateFailed
		return nil, services.Wrap(services.ErrIO, "capture", "finalize",
			"cannot index recording; temp file retained at "+s.tempPath, err)
	}

	dest, err := s.store.Promote(s.tempPath, name)
	if err != nil {
		// Promote retains the temp file for manual recovery.
		s.state = StateFailed
		return nil, err
	}

	s.state = StateFinalized
	if s.sink != nil {
		s.sink.Enqueue(name)
	}
	s.logger.Info("recording finalized",
		logging.String(logging.FieldClip, name),
		logging.Duration("length", iv.Duration()),
		logging.Bool("forced", forced),
	)
	return &Result{Name: name, LocalPath: dest, Interval: iv, Forced: forced}, nil
}

func (s *Session) failStartLocked() {
	s.releaseLockLocked()
	s.state = StateFailed
}

func (s *Session) releaseLockLocked() {
	if s.lock != nil {
		_ = s.lock.Unlock()
	}
}

func (s *Session) stderrTail() string {
	const limit = 300
	out := strings.TrimSpace(s.stderr.String())
	if len(out) > limit {
		out = "..." + out[len(out)-limit:]
	}
	if out == "" {
		out = "encoder exited unexpectedly"
	}
	return out
}
