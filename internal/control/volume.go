package control

import (
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/overlay"
	"github.com/ayusman/mudra/internal/volume"
)

// Bar is the on-screen volume bar, in frame pixels. Top is the row the
// fill reaches at full volume.
type Bar struct {
	Left, Right int
	Top, Bottom int
	Label       image.Point
}

// DefaultBar is a vertical bar at the left edge of a 640x480 frame.
var DefaultBar = Bar{Left: 50, Right: 80, Top: 150, Bottom: 400, Label: image.Pt(40, 450)}

// Reading is the result of one volume-control invocation.
type Reading struct {
	// Length is the thumb-to-index distance in pixels.
	Length float64 `json:"length"`

	// Level is the value mapped onto the sink's native range. It is zero
	// when no sink is attached.
	Level float64 `json:"level"`

	// Applied reports whether the sink accepted Level.
	Applied bool `json:"applied"`

	Percent float64 `json:"percent"`
	BarTop  int     `json:"bar_top"`
}

// VolumeConfig configures a VolumeControl.
type VolumeConfig struct {
	// Pinch is the distance domain; zero means DefaultPinchRange.
	Pinch Range

	// Sink receives volume levels. A nil sink leaves only visual feedback.
	Sink volume.Sink

	// Drawer draws feedback onto the dispatched image. Nil disables drawing.
	Drawer overlay.Drawer

	// Bar places the volume bar; zero means DefaultBar.
	Bar Bar
}

// VolumeControl maps the thumb-to-index pinch distance onto the system
// volume. It is bound to the "11000" gesture.
type VolumeControl struct {
	pinch     Range
	sink      volume.Sink
	sinkRange Range
	drawer    overlay.Drawer
	bar       Bar

	mu      sync.RWMutex
	last    Reading
	hasLast bool

	// written is the last level the sink accepted.
	written    float64
	hasWritten bool
}

// NewVolumeControl creates a VolumeControl. The sink's native range is read
// once here; a sink whose range cannot be read is logged and dropped, and
// the control falls back to visual feedback.
func NewVolumeControl(cfg VolumeConfig) (*VolumeControl, error) {
	if cfg.Pinch == (Range{}) {
		cfg.Pinch = DefaultPinchRange
	}
	if err := cfg.Pinch.Validate(); err != nil {
		return nil, fmt.Errorf("pinch range: %w", err)
	}
	if cfg.Bar == (Bar{}) {
		cfg.Bar = DefaultBar
	}

	vc := &VolumeControl{
		pinch:  cfg.Pinch,
		drawer: cfg.Drawer,
		bar:    cfg.Bar,
	}

	if cfg.Sink != nil {
		min, max, err := cfg.Sink.Range()
		if err == nil {
			err = Range{Min: min, Max: max}.Validate()
		}
		if err != nil {
			log.Printf("Volume sink disabled: %v", err)
		} else {
			vc.sink = cfg.Sink
			vc.sinkRange = Range{Min: min, Max: max}
		}
	}

	return vc, nil
}

// Name implements gesture.Action.
func (vc *VolumeControl) Name() string {
	return "volume"
}

// HasSink reports whether levels are written to a device.
func (vc *VolumeControl) HasSink() bool {
	return vc.sink != nil
}

// Measure computes the Reading for a hand without touching the sink.
func (vc *VolumeControl) Measure(hand detector.HandFrame) Reading {
	length := detector.Distance(hand.At(detector.ThumbTip), hand.At(detector.IndexTip))

	r := Reading{
		Length:  length,
		Percent: Interpolate(length, vc.pinch, PercentRange),
		BarTop:  int(Interpolate(length, vc.pinch, Range{Min: float64(vc.bar.Bottom), Max: float64(vc.bar.Top)})),
	}
	if vc.sink != nil {
		r.Level = Interpolate(length, vc.pinch, vc.sinkRange)
	}
	return r
}

// Invoke implements gesture.Action. Sink failures are logged; the action
// itself never fails. A level equal to the last one the sink accepted is
// not written again.
func (vc *VolumeControl) Invoke(st gesture.State) {
	r := vc.Measure(st.Hand)

	if vc.sink != nil {
		r.Applied = vc.apply(r.Level)
	}

	if vc.drawer != nil && st.Image != nil && !st.Image.Empty() {
		if err := vc.draw(st, r); err != nil {
			log.Printf("Draw volume feedback: %v", err)
		}
	}

	vc.mu.Lock()
	vc.last = r
	vc.hasLast = true
	vc.mu.Unlock()
}

func (vc *VolumeControl) apply(level float64) bool {
	vc.mu.RLock()
	unchanged := vc.hasWritten && vc.written == level
	vc.mu.RUnlock()
	if unchanged {
		return true
	}

	err := vc.sink.SetLevel(level)

	vc.mu.Lock()
	defer vc.mu.Unlock()
	if err != nil {
		log.Printf("Set volume %.2f: %v", level, err)
		vc.hasWritten = false
		return false
	}
	vc.written = level
	vc.hasWritten = true
	return true
}

func (vc *VolumeControl) draw(st gesture.State, r Reading) error {
	img := st.Image
	thumb := st.Hand.At(detector.ThumbTip).Point()
	index := st.Hand.At(detector.IndexTip).Point()
	centre := image.Pt((thumb.X+index.X)/2, (thumb.Y+index.Y)/2)

	steps := []func() error{
		func() error { return vc.drawer.Circle(img, thumb, 13, overlay.Magenta, overlay.Filled) },
		func() error { return vc.drawer.Circle(img, index, 13, overlay.Magenta, overlay.Filled) },
		func() error { return vc.drawer.Line(img, thumb, index, overlay.Magenta, 2) },
		func() error { return vc.drawer.Circle(img, centre, 13, overlay.Magenta, overlay.Filled) },
		func() error {
			return vc.drawer.Rectangle(img, image.Rect(vc.bar.Left, vc.bar.Top, vc.bar.Right, vc.bar.Bottom), overlay.Green, 1)
		},
		func() error {
			return vc.drawer.Rectangle(img, image.Rect(vc.bar.Left, r.BarTop, vc.bar.Right, vc.bar.Bottom), overlay.Green, overlay.Filled)
		},
		func() error {
			return vc.drawer.Text(img, fmt.Sprintf("%d %%", int(r.Percent)), vc.bar.Label, overlay.Blue, 3)
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// Last returns the most recent Reading, or false before the first Invoke.
func (vc *VolumeControl) Last() (Reading, bool) {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.last, vc.hasLast
}
