package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"cardpress/internal/converge"
	"cardpress/internal/fingerprint"
	"cardpress/internal/logging"
	"cardpress/internal/manifest"
	"cardpress/internal/runstore"
	"cardpress/internal/surface"
	"cardpress/internal/transforms"
	"cardpress/internal/views"
)

type fakeSwitcher struct {
	fail  map[surface.ViewID]error
	calls []surface.ViewID
}

func (s *fakeSwitcher) SwitchTo(_ context.Context, view surface.ViewID) error {
	s.calls = append(s.calls, view)
	if s.fail != nil {
		return s.fail[view]
	}
	return nil
}

type fakeLoader struct {
	fail  map[string]error
	calls []string
}

func (l *fakeLoader) LoadCard(_ context.Context, key string) error {
	l.calls = append(l.calls, key)
	if l.fail != nil {
		return l.fail[key]
	}
	return nil
}

type fakeCanvas struct {
	data []byte
	err  error
}

func (c *fakeCanvas) Snapshot(context.Context) ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.data, nil
}

// fakeDetector hands out fingerprints per call and records the baselines
// it was given.
type fakeDetector struct {
	script    func(call int, baseline fingerprint.Fingerprint) (converge.Result, error)
	baselines []fingerprint.Fingerprint
	calls     int
	onAwait   func(call int)
}

func (d *fakeDetector) Await(_ context.Context, baseline fingerprint.Fingerprint) (converge.Result, error) {
	call := d.calls
	d.calls++
	d.baselines = append(d.baselines, baseline)
	if d.onAwait != nil {
		d.onAwait(call)
	}
	return d.script(call, baseline)
}

type memSink struct {
	stored    map[string][]byte
	existing  map[string]bool
	storeFail map[string]error
}

func newMemSink() *memSink {
	return &memSink{stored: make(map[string][]byte), existing: make(map[string]bool)}
}

func (s *memSink) Exists(_ context.Context, name string) (bool, error) {
	if s.existing[name] {
		return true, nil
	}
	_, ok := s.stored[name]
	return ok, nil
}

func (s *memSink) Store(_ context.Context, name string, data []byte) error {
	if s.storeFail != nil {
		if err := s.storeFail[name]; err != nil {
			return err
		}
	}
	s.stored[name] = data
	return nil
}

func (s *memSink) Location() string { return "memory" }

type memRecorder struct {
	begun    int
	finished int
	cards    []runstore.CardResult
}

func (r *memRecorder) BeginRun(context.Context, string, string) error { r.begun++; return nil }

func (r *memRecorder) RecordCard(_ context.Context, result runstore.CardResult) error {
	r.cards = append(r.cards, result)
	return nil
}

func (r *memRecorder) FinishRun(context.Context, string, int, int) error { r.finished++; return nil }

func testManifest(keys ...string) *manifest.Manifest {
	man := &manifest.Manifest{Path: "cards.cardconjurer"}
	for _, key := range keys {
		raw, _ := json.Marshal(map[string]string{"key": key})
		man.Records = append(man.Records, manifest.Record{Key: key, Raw: raw})
	}
	return man
}

// distinctFingerprints returns a detector that converges on a fresh
// fingerprint for every call.
func distinctFingerprints() *fakeDetector {
	return &fakeDetector{
		script: func(call int, _ fingerprint.Fingerprint) (converge.Result, error) {
			return converge.Result{Fingerprint: fingerprint.Of([]byte(fmt.Sprintf("frame-%d", call)))}, nil
		},
	}
}

type harness struct {
	switcher *fakeSwitcher
	loader   *fakeLoader
	canvas   *fakeCanvas
	detector *fakeDetector
	sink     *memSink
	recorder *memRecorder
	deps     Deps
}

func newHarness(detector *fakeDetector, extraTransforms ...transforms.Transform) *harness {
	h := &harness{
		switcher: &fakeSwitcher{},
		loader:   &fakeLoader{},
		canvas:   &fakeCanvas{data: []byte("png-bytes")},
		detector: detector,
		sink:     newMemSink(),
		recorder: &memRecorder{},
	}
	log := logging.NewNop()
	nav := views.New(h.switcher, 0, log)
	h.deps = Deps{
		Navigator:  nav,
		Loader:     h.loader,
		Surface:    h.canvas,
		Detector:   h.detector,
		Transforms: transforms.New(nav, extraTransforms, 0, log),
		Namer: func(key string, _ manifest.Metadata) string {
			return key + ".png"
		},
		Sink:     h.sink,
		Recorder: h.recorder,
		Logger:   log,
	}
	return h
}

func TestRunExportsEveryCard(t *testing.T) {
	h := newHarness(distinctFingerprints())
	orc := New(h.deps, Config{})

	result, err := orc.Run(context.Background(), testManifest("a", "b", "c"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.SuccessCount != 3 {
		t.Fatalf("SuccessCount = %d, want 3", result.SuccessCount)
	}
	if len(result.Failures) != 0 {
		t.Fatalf("Failures = %+v, want none", result.Failures)
	}
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		if _, ok := h.sink.stored[name]; !ok {
			t.Errorf("artifact %q not stored", name)
		}
	}
	if h.recorder.begun != 1 || h.recorder.finished != 1 {
		t.Errorf("recorder begun=%d finished=%d, want 1 and 1", h.recorder.begun, h.recorder.finished)
	}
	if len(h.recorder.cards) != 3 {
		t.Errorf("recorded %d card outcomes, want 3", len(h.recorder.cards))
	}
	// Each card's baseline is the previous card's converged fingerprint.
	if !h.detector.baselines[0].IsNone() {
		t.Errorf("first baseline = %q, want none", h.detector.baselines[0])
	}
	for i := 1; i < len(h.detector.baselines); i++ {
		if h.detector.baselines[i].IsNone() {
			t.Errorf("baseline %d is none, want previous fingerprint", i)
		}
	}
}

func TestRunIsolatesLoadFailure(t *testing.T) {
	h := newHarness(distinctFingerprints())
	h.loader.fail = map[string]error{"b": errors.New("select rejected value")}
	orc := New(h.deps, Config{})

	result, err := orc.Run(context.Background(), testManifest("a", "b", "c"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.SuccessCount != 2 {
		t.Fatalf("SuccessCount = %d, want 2", result.SuccessCount)
	}
	wantFailures := []FailureRecord{{Key: "b", Stage: StageLoad, Message: "select rejected value"}}
	if diff := cmp.Diff(wantFailures, result.Failures); diff != "" {
		t.Fatalf("Failures mismatch (-want +got):\n%s", diff)
	}
	if _, ok := h.sink.stored["c.png"]; !ok {
		t.Error("card c was not processed after b failed")
	}
	// b never converged, so c's baseline is still a's fingerprint.
	if len(h.detector.baselines) != 2 {
		t.Fatalf("detector called %d times, want 2", len(h.detector.baselines))
	}
	wantBaseline := fingerprint.Of([]byte("frame-0"))
	if h.detector.baselines[1] != wantBaseline {
		t.Errorf("c baseline = %q, want a's fingerprint %q", h.detector.baselines[1], wantBaseline)
	}
}

func TestRunTransformFailureIsNotACardFailure(t *testing.T) {
	failing := transforms.Transform{
		Name: "frame",
		View: surface.ViewCapture,
		Apply: func(_ context.Context, key string) error {
			if key == "b" {
				return errors.New("frame select missing")
			}
			return nil
		},
	}
	h := newHarness(distinctFingerprints(), failing)
	orc := New(h.deps, Config{})

	result, err := orc.Run(context.Background(), testManifest("a", "b", "c"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.SuccessCount != 3 {
		t.Errorf("SuccessCount = %d, want 3", result.SuccessCount)
	}
	if len(result.Failures) != 0 {
		t.Errorf("Failures = %+v, want none", result.Failures)
	}
}

func TestRunUnchangedRender(t *testing.T) {
	unchanged := func() *fakeDetector {
		return &fakeDetector{
			script: func(call int, baseline fingerprint.Fingerprint) (converge.Result, error) {
				if call == 1 {
					return converge.Result{Fingerprint: baseline, Unchanged: true}, nil
				}
				return converge.Result{Fingerprint: fingerprint.Of([]byte(fmt.Sprintf("frame-%d", call)))}, nil
			},
		}
	}

	t.Run("warning by default", func(t *testing.T) {
		h := newHarness(unchanged())
		orc := New(h.deps, Config{})
		result, err := orc.Run(context.Background(), testManifest("a", "b", "c"))
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if result.SuccessCount != 3 {
			t.Errorf("SuccessCount = %d, want 3", result.SuccessCount)
		}
	})

	t.Run("failure when strict", func(t *testing.T) {
		h := newHarness(unchanged())
		orc := New(h.deps, Config{StrictChange: true})
		result, err := orc.Run(context.Background(), testManifest("a", "b", "c"))
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if result.SuccessCount != 2 {
			t.Errorf("SuccessCount = %d, want 2", result.SuccessCount)
		}
		if len(result.Failures) != 1 || result.Failures[0].Stage != StageAwaitConvergence {
			t.Errorf("Failures = %+v, want one at %s", result.Failures, StageAwaitConvergence)
		}
	})
}

func TestRunExistingArtifact(t *testing.T) {
	t.Run("skipped without overwrite", func(t *testing.T) {
		h := newHarness(distinctFingerprints())
		h.sink.existing["a.png"] = true
		orc := New(h.deps, Config{})
		result, err := orc.Run(context.Background(), testManifest("a"))
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if result.SuccessCount != 0 {
			t.Errorf("SuccessCount = %d, want 0", result.SuccessCount)
		}
		if len(result.Failures) != 1 || result.Failures[0].Stage != StageEmit {
			t.Errorf("Failures = %+v, want one at %s", result.Failures, StageEmit)
		}
	})

	t.Run("stored with overwrite", func(t *testing.T) {
		h := newHarness(distinctFingerprints())
		h.sink.existing["a.png"] = true
		orc := New(h.deps, Config{Overwrite: true})
		result, err := orc.Run(context.Background(), testManifest("a"))
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if result.SuccessCount != 1 {
			t.Errorf("SuccessCount = %d, want 1", result.SuccessCount)
		}
	})
}

func TestRunCancelledBetweenCards(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	detector := distinctFingerprints()
	detector.onAwait = func(call int) {
		if call == 0 {
			cancel()
		}
	}
	h := newHarness(detector)
	orc := New(h.deps, Config{})

	result, err := orc.Run(ctx, testManifest("a", "b", "c"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.SuccessCount != 1 {
		t.Errorf("SuccessCount = %d, want 1", result.SuccessCount)
	}
	if diff := cmp.Diff([]string{"b", "c"}, result.Unattempted); diff != "" {
		t.Errorf("Unattempted mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b", "c"}, result.FailedKeys()); diff != "" {
		t.Errorf("FailedKeys mismatch (-want +got):\n%s", diff)
	}
}

func TestRunPrimingWarmsMarkedRecordThenReloadsFirst(t *testing.T) {
	h := newHarness(distinctFingerprints())
	orc := New(h.deps, Config{Priming: true, Marker: "ritual"})

	man := testManifest("a", "b", "c")
	man.Records[1].Raw = json.RawMessage(`{"key":"b","data":{"text":{"title":{"text":"ritual"}}}}`)

	result, err := orc.Run(context.Background(), man)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.SuccessCount != 3 {
		t.Fatalf("SuccessCount = %d, want 3: %+v", result.SuccessCount, result.Failures)
	}
	// Warm-up loads b then c, priming reloads a, the main loop skips a's
	// load and processes b and c normally.
	wantLoads := []string{"b", "c", "a", "b", "c"}
	if diff := cmp.Diff(wantLoads, h.loader.calls); diff != "" {
		t.Errorf("load order mismatch (-want +got):\n%s", diff)
	}
}

func TestRunPrimingFailureFallsBackToNormalProcessing(t *testing.T) {
	h := newHarness(distinctFingerprints())
	failed := false
	base := h.deps.Loader.(*fakeLoader)
	h.deps.Loader = loaderFunc(func(ctx context.Context, key string) error {
		if key == "a" && !failed {
			failed = true
			base.calls = append(base.calls, key)
			return errors.New("transient load failure")
		}
		return base.LoadCard(ctx, key)
	})
	orc := New(h.deps, Config{Priming: true, Marker: "ritual"})

	result, err := orc.Run(context.Background(), testManifest("a", "b", "c"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.SuccessCount != 3 {
		t.Fatalf("SuccessCount = %d, want 3: %+v", result.SuccessCount, result.Failures)
	}
	// No marker matched, so priming only touched a; its failure means the
	// main loop loads a again itself.
	wantLoads := []string{"a", "a", "b", "c"}
	if diff := cmp.Diff(wantLoads, base.calls); diff != "" {
		t.Errorf("load order mismatch (-want +got):\n%s", diff)
	}
}

type loaderFunc func(ctx context.Context, key string) error

func (f loaderFunc) LoadCard(ctx context.Context, key string) error { return f(ctx, key) }

func TestRunRejectsEmptyManifest(t *testing.T) {
	h := newHarness(distinctFingerprints())
	orc := New(h.deps, Config{})
	if _, err := orc.Run(context.Background(), testManifest()); err == nil {
		t.Fatal("Run accepted an empty manifest")
	}
}
