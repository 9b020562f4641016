package retrieval

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"clipvault/internal/clipstore"
	"clipvault/internal/logging"
	"clipvault/internal/services"
	"clipvault/internal/testsupport"
	"clipvault/internal/timeindex"
)

type fixedProber struct {
	duration float64
	err      error
}

func (p fixedProber) Duration(context.Context, string) (float64, error) {
	return p.duration, p.err
}

type trimCall struct {
	src, dest string
	offset    float64
	length    float64
}

type recordingTrimmer struct {
	calls []trimCall
	err   error
}

func (t *recordingTrimmer) Trim(_ context.Context, src, dest string, offsetSec, lengthSec float64) error {
	t.calls = append(t.calls, trimCall{src: src, dest: dest, offset: offsetSec, length: lengthSec})
	if t.err != nil {
		return t.err
	}
	return os.WriteFile(dest, []byte("trimmed"), 0o644)
}

type fixture struct {
	engine  *Engine
	store   *clipstore.Store
	remote  *testsupport.MemoryRemote
	trimmer *recordingTrimmer
	workDir string
}

func newFixture(t *testing.T, probedDuration float64) *fixture {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	remote := testsupport.NewMemoryRemote()
	store := clipstore.New(cfg.Paths.StagingDir, timeindex.New(time.Local), remote, logging.NewNop())
	trimmer := &recordingTrimmer{}
	engine := NewEngine(cfg, store, logging.NewNop())
	engine.prober = fixedProber{duration: probedDuration}
	engine.trimmer = trimmer
	return &fixture{
		engine:  engine,
		store:   store,
		remote:  remote,
		trimmer: trimmer,
		workDir: cfg.Paths.WorkDir,
	}
}

// base is a fixed morning so every test interval stays on one calendar day.
var base = time.Date(2024, 6, 1, 9, 0, 0, 0, time.Local).Unix()

func sec(offset int64) int64 { return base + offset }
func ms(offset int64) int64  { return (base + offset) * 1000 }

func (f *fixture) addLocal(t *testing.T, startOff, endOff int64) string {
	t.Helper()
	return testsupport.WriteClip(t, f.store.Codec(), f.store.LocalPath(""),
		timeindex.Interval{Start: sec(startOff), End: sec(endOff)}, 128)
}

func (f *fixture) addRemote(t *testing.T, startOff, endOff int64, data string) string {
	t.Helper()
	name, err := f.store.Codec().Encode(timeindex.Interval{Start: sec(startOff), End: sec(endOff)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	f.remote.Seed(name, []byte(data))
	return name
}

func TestQueryOverlapBoundaries(t *testing.T) {
	f := newFixture(t, 100)
	name := f.addLocal(t, 100, 200)

	cases := []struct {
		label    string
		startOff int64
		endOff   int64
		want     bool
	}{
		{"touches clip start", 50, 100, true},
		{"touches clip end", 200, 250, true},
		{"inside clip", 120, 130, true},
		{"just past clip end", 201, 250, false},
		{"before clip", 10, 99, false},
	}
	for _, tc := range cases {
		matches, err := f.engine.Query(context.Background(), ms(tc.startOff), ms(tc.endOff))
		if err != nil {
			t.Fatalf("%s: query: %v", tc.label, err)
		}
		got := len(matches) == 1 && matches[0].Name == name
		if got != tc.want {
			t.Errorf("%s: matched=%v, want %v", tc.label, got, tc.want)
		}
	}
}

func TestQueryRejectsInvalidInterval(t *testing.T) {
	f := newFixture(t, 100)

	for _, tc := range [][2]int64{{ms(10), ms(10)}, {ms(20), ms(10)}, {-1, ms(10)}} {
		if _, err := f.engine.Query(context.Background(), tc[0], tc[1]); !errors.Is(err, services.ErrInvalidRange) {
			t.Errorf("Query(%d, %d) = %v, want ErrInvalidRange", tc[0], tc[1], err)
		}
	}
}

func TestQueryOrdersEarliestStartLocalFirst(t *testing.T) {
	f := newFixture(t, 100)
	later := f.addLocal(t, 300, 400)
	earlier := f.addRemote(t, 100, 350, "remote bytes")
	// Same interval in both tiers must surface once, as the local copy.
	both := f.addLocal(t, 200, 360)
	f.remote.Seed(both, []byte("remote duplicate"))

	matches, err := f.engine.Query(context.Background(), ms(310), ms(340))
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	wantOrder := []string{earlier, both, later}
	if len(matches) != len(wantOrder) {
		t.Fatalf("got %d matches, want %d", len(matches), len(wantOrder))
	}
	for i, want := range wantOrder {
		if matches[i].Name != want {
			t.Errorf("match[%d] = %s, want %s", i, matches[i].Name, want)
		}
	}
	if matches[1].Tier != clipstore.TierLocal {
		t.Errorf("duplicated clip resolved to %v tier, want local", matches[1].Tier)
	}
}

func TestFetchNoCoveringClip(t *testing.T) {
	f := newFixture(t, 100)
	f.addLocal(t, 100, 200)

	if _, err := f.engine.Fetch(context.Background(), ms(500), ms(600)); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("fetch = %v, want ErrNotFound", err)
	}
}

func TestFetchCopiesLocalClip(t *testing.T) {
	f := newFixture(t, 100)
	name := f.addLocal(t, 100, 200)

	path, err := f.engine.Fetch(context.Background(), ms(120), ms(130))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if filepath.Dir(path) != f.workDir {
		t.Fatalf("fetched path %s not under work dir %s", path, f.workDir)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("fetched copy missing: %v", err)
	}
	if _, err := os.Stat(f.store.LocalPath(name)); err != nil {
		t.Fatalf("staging original must be untouched: %v", err)
	}
}

func TestFetchDownloadsRemoteClip(t *testing.T) {
	f := newFixture(t, 100)
	f.addRemote(t, 100, 200, "remote clip bytes")

	path, err := f.engine.Fetch(context.Background(), ms(120), ms(130))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fetched clip: %v", err)
	}
	if string(data) != "remote clip bytes" {
		t.Fatalf("fetched content = %q", data)
	}
}

func TestExtractClampsAndTrims(t *testing.T) {
	f := newFixture(t, 100)
	f.addLocal(t, 100, 200)

	path, err := f.engine.Extract(context.Background(), ms(105), ms(115))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(f.trimmer.calls) != 1 {
		t.Fatalf("trim calls = %d, want 1", len(f.trimmer.calls))
	}
	call := f.trimmer.calls[0]
	if math.Abs(call.offset-5) > 1e-9 || math.Abs(call.length-10) > 1e-9 {
		t.Fatalf("trim offset/length = %.3f/%.3f, want 5/10", call.offset, call.length)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("cropped output missing: %v", err)
	}
}

func TestExtractClampsToProbedDuration(t *testing.T) {
	// The file holds only 80s of the nominal [100,200] interval.
	f := newFixture(t, 80)
	f.addLocal(t, 100, 200)

	if _, err := f.engine.Extract(context.Background(), ms(150), ms(250)); err != nil {
		t.Fatalf("extract: %v", err)
	}
	call := f.trimmer.calls[0]
	if math.Abs(call.offset-50) > 1e-9 || math.Abs(call.length-30) > 1e-9 {
		t.Fatalf("trim offset/length = %.3f/%.3f, want 50/30", call.offset, call.length)
	}
}

func TestExtractDegenerateRange(t *testing.T) {
	f := newFixture(t, 30)
	f.addLocal(t, 100, 130)

	// Touching the clip's end selects it, but the span inside the clip is
	// empty after clamping.
	_, err := f.engine.Extract(context.Background(), ms(130), ms(140))
	if !errors.Is(err, services.ErrInvalidRange) {
		t.Fatalf("extract = %v, want ErrInvalidRange", err)
	}
	if len(f.trimmer.calls) != 0 {
		t.Fatal("degenerate range must not invoke the trimmer")
	}
	crops, _ := filepath.Glob(filepath.Join(f.workDir, "cropped_*"))
	if len(crops) != 0 {
		t.Fatalf("degenerate range left output files: %v", crops)
	}
}

func TestExtractProbeFailure(t *testing.T) {
	f := newFixture(t, 0)
	f.engine.prober = fixedProber{err: services.Wrap(services.ErrProbe, "media", "probe", "boom", nil)}
	f.addLocal(t, 100, 200)

	if _, err := f.engine.Extract(context.Background(), ms(110), ms(120)); !errors.Is(err, services.ErrProbe) {
		t.Fatalf("extract = %v, want ErrProbe", err)
	}
}

func TestExtractRemovesDownloadedIntermediate(t *testing.T) {
	f := newFixture(t, 100)
	name := f.addRemote(t, 100, 200, "remote clip bytes")

	if _, err := f.engine.Extract(context.Background(), ms(110), ms(120)); err != nil {
		t.Fatalf("extract: %v", err)
	}
	intermediate := filepath.Join(f.workDir, "fetched_"+name)
	if _, err := os.Stat(intermediate); !os.IsNotExist(err) {
		t.Fatalf("downloaded intermediate not reclaimed: %v", err)
	}
}

func TestExtractRetainsIntermediateOnTrimFailure(t *testing.T) {
	f := newFixture(t, 100)
	name := f.addRemote(t, 100, 200, "remote clip bytes")
	f.trimmer.err = services.Wrap(services.ErrEncode, "media", "trim", "cut failed", nil)

	if _, err := f.engine.Extract(context.Background(), ms(110), ms(120)); !errors.Is(err, services.ErrEncode) {
		t.Fatalf("extract = %v, want trim error", err)
	}
	intermediate := filepath.Join(f.workDir, "fetched_"+name)
	if _, err := os.Stat(intermediate); err != nil {
		t.Fatalf("intermediate must be retained after trim failure: %v", err)
	}
}

func TestEndToEndWindow(t *testing.T) {
	f := newFixture(t, 30)
	codec := f.store.Codec()

	iv := timeindex.Interval{Start: 1752298630, End: 1752298660}
	name, err := codec.Encode(iv)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	testsupport.WriteFile(t, f.store.LocalPath(name), 128)

	matches, err := f.engine.Query(context.Background(), 1752298635000, 1752298645000)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 1 || matches[0].Name != name {
		t.Fatalf("query matches = %v, want [%s]", matches, name)
	}

	if _, err := f.engine.Extract(context.Background(), 1752298635000, 1752298645000); err != nil {
		t.Fatalf("extract: %v", err)
	}
	call := f.trimmer.calls[0]
	if math.Abs(call.length-10) > 1e-9 {
		t.Fatalf("extracted length = %.3f, want 10", call.length)
	}
}
