package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/volume"
)

type testEnv struct {
	app      *App
	detector *detector.MockDetector
	sink     *volume.MemorySink
	store    *store.Store
}

func newTestApp(t *testing.T, modify func(*Config)) *testEnv {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	env := &testEnv{
		detector: detector.NewMockDetector(),
		sink:     volume.NewMemorySink(0, 100),
		store:    s,
	}

	cfg := Config{
		Store:    s,
		Camera:   capture.NewMockCamera(nil, false),
		Detector: env.detector,
		Sink:     env.sink,
		Journal:  true,
	}
	if modify != nil {
		modify(&cfg)
	}

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	env.app = a
	return env
}

func TestProcessFrame_Volume(t *testing.T) {
	env := newTestApp(t, nil)
	env.detector.SetHands([]detector.HandFrame{detector.PinchLandmarksWithDistance(105)})

	report, err := env.app.ProcessFrame(context.Background(), nil)
	if err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}

	if report.Hands != 1 || !report.Tracked {
		t.Errorf("report = %+v, want one tracked hand", report)
	}
	if report.Outcome.Code != gesture.CodeVolume || !report.Outcome.Invoked || report.Outcome.Action != "volume" {
		t.Errorf("outcome = %+v", report.Outcome)
	}
	if report.Reading == nil || report.Reading.Percent != 50 {
		t.Fatalf("reading = %+v, want 50%%", report.Reading)
	}

	if level, ok := env.sink.Last(); !ok || level != 50 {
		t.Errorf("sink level = %v, %v; want 50", level, ok)
	}

	latest, err := env.store.Events().Latest()
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest.Code != "11000" || latest.Action != "volume" || latest.Percent != 50 || !latest.Applied {
		t.Errorf("journaled event = %+v", latest)
	}

	last, ok := env.app.LastReport()
	if !ok || last.Reading == nil {
		t.Error("LastReport() should hold the volume report")
	}
}

func TestProcessFrame_UnboundGesture(t *testing.T) {
	env := newTestApp(t, nil)
	env.detector.SetHands([]detector.HandFrame{detector.FistLandmarks()})

	report, err := env.app.ProcessFrame(context.Background(), nil)
	if err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}

	if !report.Tracked || report.Outcome.Invoked {
		t.Errorf("fist report = %+v, want tracked and not invoked", report)
	}
	if report.Outcome.Code.String() != "00000" {
		t.Errorf("code = %s, want 00000", report.Outcome.Code)
	}
	if len(env.sink.Levels()) != 0 {
		t.Error("unbound gesture should not touch the sink")
	}
	if n, _ := env.store.Events().Count(); n != 0 {
		t.Errorf("journal has %d events, want 0", n)
	}
}

func TestProcessFrame_NoHands(t *testing.T) {
	env := newTestApp(t, nil)

	report, err := env.app.ProcessFrame(context.Background(), nil)
	if err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}
	if report.Hands != 0 || report.Tracked {
		t.Errorf("report = %+v, want nothing tracked", report)
	}
	if _, ok := env.app.LastReport(); ok {
		t.Error("LastReport() should be empty")
	}
	if env.app.Status().Frames != 1 {
		t.Errorf("Frames = %d, want 1", env.app.Status().Frames)
	}
}

func TestProcessFrame_HandIndex(t *testing.T) {
	env := newTestApp(t, func(c *Config) { c.HandIndex = 1 })

	env.detector.SetHands([]detector.HandFrame{detector.PinchLandmarksWithDistance(105)})
	report, err := env.app.ProcessFrame(context.Background(), nil)
	if err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}
	if report.Tracked {
		t.Error("second hand is missing; nothing should be tracked")
	}

	env.detector.SetHands([]detector.HandFrame{
		detector.PinchLandmarksWithDistance(105),
		detector.PinchLandmarksWithDistance(500),
	})
	report, err = env.app.ProcessFrame(context.Background(), nil)
	if err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}
	if report.Reading == nil || report.Reading.Percent != 100 {
		t.Errorf("reading = %+v, want the second hand at 100%%", report.Reading)
	}
}

func TestProcessFrame_Errors(t *testing.T) {
	t.Run("detector error", func(t *testing.T) {
		env := newTestApp(t, nil)
		failure := errors.New("camera glitch")
		env.detector.SetError(failure)

		if _, err := env.app.ProcessFrame(context.Background(), nil); !errors.Is(err, failure) {
			t.Errorf("ProcessFrame() error = %v, want %v", err, failure)
		}
	})

	t.Run("malformed hand", func(t *testing.T) {
		env := newTestApp(t, nil)
		hand := detector.PinchLandmarksWithDistance(105)
		hand.Landmarks = hand.Landmarks[:10]
		env.detector.SetHands([]detector.HandFrame{hand})

		if _, err := env.app.ProcessFrame(context.Background(), nil); !errors.Is(err, detector.ErrMalformedHand) {
			t.Errorf("ProcessFrame() error = %v, want ErrMalformedHand", err)
		}
		if len(env.sink.Levels()) != 0 {
			t.Error("malformed hand should not reach the sink")
		}

		env.detector.SetHands([]detector.HandFrame{detector.PinchLandmarksWithDistance(160)})
		report, err := env.app.ProcessFrame(context.Background(), nil)
		if err != nil {
			t.Fatalf("next frame error = %v", err)
		}
		if report.Reading == nil || report.Reading.Percent != 100 {
			t.Errorf("next frame reading = %+v", report.Reading)
		}
	})
}

func TestProcessFrame_JournalDisabled(t *testing.T) {
	env := newTestApp(t, func(c *Config) { c.Journal = false })
	env.detector.SetHands([]detector.HandFrame{detector.PinchLandmarksWithDistance(105)})

	if _, err := env.app.ProcessFrame(context.Background(), nil); err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}
	if n, _ := env.store.Events().Count(); n != 0 {
		t.Errorf("journal has %d events with journaling off", n)
	}
}

func TestProcessFrame_JournalSkipsRepeatedFrames(t *testing.T) {
	env := newTestApp(t, nil)
	env.detector.SetHands([]detector.HandFrame{detector.PinchLandmarksWithDistance(105)})

	for i := 0; i < 10; i++ {
		if _, err := env.app.ProcessFrame(context.Background(), nil); err != nil {
			t.Fatalf("ProcessFrame() error = %v", err)
		}
	}
	if n, _ := env.store.Events().Count(); n != 1 {
		t.Fatalf("journal has %d events for an unchanged pinch, want 1", n)
	}

	env.detector.SetHands([]detector.HandFrame{detector.PinchLandmarksWithDistance(160)})
	env.app.ProcessFrame(context.Background(), nil)
	env.detector.SetHands([]detector.HandFrame{detector.PinchLandmarksWithDistance(105)})
	env.app.ProcessFrame(context.Background(), nil)

	n, _ := env.store.Events().Count()
	if n != 3 {
		t.Fatalf("journal has %d events, want 3", n)
	}
	latest, err := env.store.Events().Latest()
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest.Percent != 50 || !latest.Applied {
		t.Errorf("latest event = %+v", latest)
	}
}

func TestProcessFrame_JournalPrunes(t *testing.T) {
	env := newTestApp(t, func(c *Config) { c.JournalKeep = 5 })

	hands := []detector.HandFrame{
		detector.PinchLandmarksWithDistance(50),
		detector.PinchLandmarksWithDistance(160),
	}
	for i := 0; i < 2*journalPruneInterval; i++ {
		env.detector.SetHands(hands[i%2 : i%2+1])
		if _, err := env.app.ProcessFrame(context.Background(), nil); err != nil {
			t.Fatalf("ProcessFrame() error = %v", err)
		}
	}

	if n, _ := env.store.Events().Count(); n != 5 {
		t.Errorf("journal has %d events, want 5 after pruning", n)
	}
}

func TestProcessFrame_NoSink(t *testing.T) {
	env := newTestApp(t, func(c *Config) { c.Sink = nil })
	env.detector.SetHands([]detector.HandFrame{detector.PinchLandmarksWithDistance(105)})

	report, err := env.app.ProcessFrame(context.Background(), nil)
	if err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}
	if report.Reading == nil || report.Reading.Applied {
		t.Errorf("reading = %+v, want unapplied reading", report.Reading)
	}
	if env.app.Status().Sink {
		t.Error("Status().Sink = true without a sink")
	}
}

func TestOnReport(t *testing.T) {
	env := newTestApp(t, nil)
	env.detector.SetHands([]detector.HandFrame{detector.PinchLandmarksWithDistance(50)})

	var got []Report
	env.app.OnReport(func(r Report) { got = append(got, r) })
	env.app.OnReport(nil)

	env.app.ProcessFrame(context.Background(), nil)
	env.app.ProcessFrame(context.Background(), nil)

	if len(got) != 2 {
		t.Fatalf("listener called %d times, want 2", len(got))
	}
	if got[0].Reading == nil || got[0].Reading.Percent != 0 {
		t.Errorf("first report = %+v", got[0])
	}
}

func TestNew_InvalidPinch(t *testing.T) {
	_, err := New(Config{
		Camera:   capture.NewMockCamera(nil, false),
		Detector: detector.NewMockDetector(),
		Pinch:    control.Range{Min: 100, Max: 10},
	})
	if !errors.Is(err, control.ErrInvalidRange) {
		t.Errorf("New() error = %v, want ErrInvalidRange", err)
	}
}

func TestSetEnabled(t *testing.T) {
	env := newTestApp(t, nil)

	if !env.app.IsEnabled() {
		t.Fatal("app should start enabled")
	}

	env.app.SetEnabled(false)
	if env.app.IsEnabled() {
		t.Error("IsEnabled() = true after SetEnabled(false)")
	}

	again, err := New(Config{
		Store:    env.store,
		Camera:   capture.NewMockCamera(nil, false),
		Detector: detector.NewMockDetector(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !again.IsEnabled() {
		t.Error("a new app should start enabled")
	}
}

func TestStatus(t *testing.T) {
	env := newTestApp(t, nil)
	env.detector.SetHands([]detector.HandFrame{detector.PinchLandmarksWithDistance(105)})
	env.app.ProcessFrame(context.Background(), nil)

	st := env.app.Status()
	if !st.Enabled || st.Running {
		t.Errorf("status = %+v, want enabled and not running", st)
	}
	if st.Mode != "idle" {
		t.Errorf("Mode = %q, want idle", st.Mode)
	}
	if len(st.Bindings) != 1 || st.Bindings[0] != (Binding{Code: "11000", Action: "volume"}) {
		t.Errorf("Bindings = %+v", st.Bindings)
	}
	if st.Last == nil || st.Reading == nil || st.Reading.Percent != 50 {
		t.Errorf("status last/reading = %+v / %+v", st.Last, st.Reading)
	}
	if name, ok := env.app.BindingFor(gesture.CodeVolume); !ok || name != "volume" {
		t.Errorf("BindingFor() = %q, %v", name, ok)
	}
}
