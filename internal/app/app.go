// Package app runs mudra's frame loop: capture, hand detection, gesture
// dispatch and the bookkeeping around it.
package app

import (
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/overlay"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/telemetry"
	"github.com/ayusman/mudra/internal/volume"
)

// Config holds configuration options for the application.
type Config struct {
	// Store receives the dispatch journal. It may be nil.
	Store *store.Store

	// Camera overrides the device camera opened from CameraID.
	Camera   capture.Camera
	CameraID int

	// Detector overrides the MediaPipe detector built from DetectorConfig.
	Detector       detector.Detector
	DetectorConfig detector.Config

	// HandIndex selects which detected hand drives the dispatcher.
	HandIndex int

	// Pinch is the volume gesture's distance range; zero means
	// control.DefaultPinchRange.
	Pinch control.Range

	// Sink receives volume levels. Nil leaves the gesture visual-only.
	Sink volume.Sink

	// Draw enables feedback drawing on preview frames.
	Draw bool

	// Preview keeps a JPEG of the latest processed frame for streaming.
	Preview bool

	// Journal records invoked actions in Store. Consecutive frames that
	// produce the same entry are recorded once.
	Journal bool

	// JournalKeep bounds the journal to the newest entries; zero keeps
	// everything.
	JournalKeep int

	MotionThreshold float64
	MotionHold      time.Duration
}

// App is the main application that ties capture, detection and dispatch
// together.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	gate       *capture.Gate
	detector   detector.Detector
	dispatcher *gesture.Dispatcher
	volume     *control.VolumeControl
	drawer     overlay.Drawer
	tracer     trace.Tracer

	mu       sync.RWMutex
	enabled  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	last     Report
	hasLast  bool
	frames   int64
	snapshot []byte

	listenersMu sync.Mutex
	listeners   []func(Report)

	journalMu    sync.Mutex
	journaled    store.Event
	hasJournaled bool
	sincePrune   int
}

// New creates an App. It fails only when the volume gesture cannot be
// configured.
func New(config Config) (*App, error) {
	a := &App{
		config: config,
		camera: config.Camera,
		motion: capture.NewMotionDetector(config.MotionThreshold),
		gate:   capture.NewGate(config.MotionHold),
		tracer: telemetry.Tracer(),
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(capture.DefaultConfig(config.CameraID))
	}

	if config.Draw {
		a.drawer = overlay.NewMatDrawer()
	}

	vc, err := control.NewVolumeControl(control.VolumeConfig{
		Pinch:  config.Pinch,
		Sink:   config.Sink,
		Drawer: a.drawer,
	})
	if err != nil {
		return nil, fmt.Errorf("volume control: %w", err)
	}
	a.volume = vc

	a.dispatcher = gesture.NewDispatcher(map[gesture.Code]gesture.Action{
		gesture.CodeVolume: vc,
	})
	a.dispatcher.OnDispatch(a.record)

	a.detector = config.Detector
	if a.detector == nil {
		dcfg := config.DetectorConfig
		if dcfg == (detector.Config{}) {
			dcfg = detector.DefaultConfig()
		}
		// Try MediaPipe first, fall back to mock detector
		if mp, err := detector.NewMediaPipeDetector(dcfg); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}
	}

	a.enabled = true

	return a, nil
}

// SetEnabled turns gesture processing on or off. A new App always starts
// enabled.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.enabled != enabled {
		log.Printf("Gesture processing enabled=%t", enabled)
	}
	a.enabled = enabled
}

// IsEnabled returns whether gesture processing is on.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector replaces the hand detector.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Dispatcher returns the gesture dispatcher.
func (a *App) Dispatcher() *gesture.Dispatcher {
	return a.dispatcher
}

// Volume returns the volume gesture action.
func (a *App) Volume() *control.VolumeControl {
	return a.volume
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// OnReport registers fn to be called after every processed frame that
// yielded a hand. Listeners run on the frame loop goroutine and must not
// block.
func (a *App) OnReport(fn func(Report)) {
	if fn == nil {
		return
	}
	a.listenersMu.Lock()
	defer a.listenersMu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// Start opens the camera and starts the frame loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(capture.IdleFPS)

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	log.Println("Frame loop started")
	return nil
}

// Running reports whether the frame loop is running.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

// Stop halts the frame loop, waits for it to exit and releases the camera
// and detector.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	a.motion.Close()

	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Frame loop stopped")
}

// Snapshot returns the latest preview JPEG, or false when none exists.
func (a *App) Snapshot() ([]byte, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.snapshot == nil {
		return nil, false
	}
	return a.snapshot, true
}

func (a *App) setSnapshot(frame *gocv.Mat) {
	if !a.config.Preview || frame == nil || frame.Empty() {
		return
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		log.Printf("Encode preview: %v", err)
		return
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	a.mu.Lock()
	a.snapshot = data
	a.mu.Unlock()
}
