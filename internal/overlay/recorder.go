package overlay

import (
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"
)

// Op names a drawing primitive.
type Op string

const (
	OpCircle    Op = "circle"
	OpLine      Op = "line"
	OpRectangle Op = "rectangle"
	OpText      Op = "text"
)

// Call is one recorded drawing call. Unused fields are zero.
type Call struct {
	Op        Op
	Points    []image.Point
	Rect      image.Rectangle
	Radius    int
	Text      string
	Color     color.RGBA
	Thickness int
}

// Recorder is a Drawer that records calls instead of drawing. It accepts a
// nil image.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	return nil
}

func (r *Recorder) Circle(_ *gocv.Mat, center image.Point, radius int, c color.RGBA, thickness int) error {
	return r.record(Call{Op: OpCircle, Points: []image.Point{center}, Radius: radius, Color: c, Thickness: thickness})
}

func (r *Recorder) Line(_ *gocv.Mat, a, b image.Point, c color.RGBA, thickness int) error {
	return r.record(Call{Op: OpLine, Points: []image.Point{a, b}, Color: c, Thickness: thickness})
}

func (r *Recorder) Rectangle(_ *gocv.Mat, rect image.Rectangle, c color.RGBA, thickness int) error {
	return r.record(Call{Op: OpRectangle, Rect: rect, Color: c, Thickness: thickness})
}

func (r *Recorder) Text(_ *gocv.Mat, text string, org image.Point, c color.RGBA, thickness int) error {
	return r.record(Call{Op: OpText, Points: []image.Point{org}, Text: text, Color: c, Thickness: thickness})
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	calls := make([]Call, len(r.calls))
	copy(calls, r.calls)
	return calls
}

// Filter returns the recorded calls of one kind.
func (r *Recorder) Filter(op Op) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears the recording.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
