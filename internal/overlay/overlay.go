// Package overlay draws visual feedback onto camera frames.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
)

// Feedback colors.
var (
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 0}
	Green   = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	Blue    = color.RGBA{R: 0, G: 0, B: 255, A: 0}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 0}
)

// Filled is passed as thickness to fill a shape.
const Filled = -1

// Drawer draws primitives onto a frame.
type Drawer interface {
	Circle(img *gocv.Mat, center image.Point, radius int, c color.RGBA, thickness int) error
	Line(img *gocv.Mat, a, b image.Point, c color.RGBA, thickness int) error
	Rectangle(img *gocv.Mat, r image.Rectangle, c color.RGBA, thickness int) error
	Text(img *gocv.Mat, text string, org image.Point, c color.RGBA, thickness int) error
}

// MatDrawer draws with OpenCV.
type MatDrawer struct {
	Font  gocv.HersheyFont
	Scale float64
}

// NewMatDrawer returns a MatDrawer using the Hershey complex font at scale 1.
func NewMatDrawer() *MatDrawer {
	return &MatDrawer{Font: gocv.FontHersheyComplex, Scale: 1}
}

func (d *MatDrawer) Circle(img *gocv.Mat, center image.Point, radius int, c color.RGBA, thickness int) error {
	return gocv.Circle(img, center, radius, c, thickness)
}

func (d *MatDrawer) Line(img *gocv.Mat, a, b image.Point, c color.RGBA, thickness int) error {
	return gocv.Line(img, a, b, c, thickness)
}

func (d *MatDrawer) Rectangle(img *gocv.Mat, r image.Rectangle, c color.RGBA, thickness int) error {
	return gocv.Rectangle(img, r, c, thickness)
}

func (d *MatDrawer) Text(img *gocv.Mat, text string, org image.Point, c color.RGBA, thickness int) error {
	return gocv.PutText(img, text, org, d.Font, d.Scale, c, thickness)
}

// DrawHand draws the hand skeleton: one line per landmark connection and a
// dot on every landmark.
func DrawHand(d Drawer, img *gocv.Mat, hand detector.HandFrame) error {
	if err := hand.Validate(); err != nil {
		return err
	}

	for _, conn := range detector.Connections {
		a, b := hand.At(conn[0]).Point(), hand.At(conn[1]).Point()
		if err := d.Line(img, a, b, White, 2); err != nil {
			return fmt.Errorf("draw connection %d-%d: %w", conn[0], conn[1], err)
		}
	}
	for _, lm := range hand.Landmarks {
		if err := d.Circle(img, lm.Point(), 4, Magenta, Filled); err != nil {
			return fmt.Errorf("draw landmark %d: %w", lm.ID, err)
		}
	}
	return nil
}
