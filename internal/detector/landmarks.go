// Package detector provides the hand landmark types produced by a hand
// detector and the Detector boundary consumed by the frame loop.
package detector

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// ErrMalformedHand is returned when a HandFrame does not carry a full,
// ordered set of landmarks.
var ErrMalformedHand = errors.New("malformed hand frame")

// Landmark is one detected point on a hand, in image pixels.
type Landmark struct {
	ID int `json:"id"`
	X  int `json:"x"`
	Y  int `json:"y"`
}

// Point returns the landmark position as an image.Point.
func (l Landmark) Point() image.Point {
	return image.Point{X: l.X, Y: l.Y}
}

// HandFrame holds the landmarks of one detected hand in one video frame,
// indexed by landmark id. A HandFrame is produced fresh for every frame and
// is never mutated afterwards.
type HandFrame struct {
	Landmarks  []Landmark `json:"landmarks"`
	Handedness string     `json:"handedness,omitempty"` // "Left" or "Right"
	Score      float64    `json:"score,omitempty"`
}

// NewHandFrame builds a HandFrame from pixel positions ordered by landmark id.
func NewHandFrame(points [NumLandmarks]image.Point) HandFrame {
	landmarks := make([]Landmark, NumLandmarks)
	for i, p := range points {
		landmarks[i] = Landmark{ID: i, X: p.X, Y: p.Y}
	}
	return HandFrame{Landmarks: landmarks}
}

// Validate reports whether the frame has all 21 landmarks in id order.
// The returned error wraps ErrMalformedHand.
func (h HandFrame) Validate() error {
	if len(h.Landmarks) < NumLandmarks {
		return fmt.Errorf("%w: got %d landmarks, want %d", ErrMalformedHand, len(h.Landmarks), NumLandmarks)
	}
	for i := 0; i < NumLandmarks; i++ {
		if h.Landmarks[i].ID != i {
			return fmt.Errorf("%w: landmark at index %d has id %d", ErrMalformedHand, i, h.Landmarks[i].ID)
		}
	}
	return nil
}

// At returns the landmark with the given id. The frame must be valid.
func (h HandFrame) At(id int) Landmark {
	return h.Landmarks[id]
}

// Distance returns the Euclidean pixel distance between two landmarks.
func Distance(a, b Landmark) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}

// Result is the outcome of running detection on one video frame.
// It replaces any detector-held "last result": everything needed to extract
// coordinates for the frame travels with it.
type Result struct {
	Hands  []HandFrame `json:"hands"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
}

// Hand returns the i-th detected hand, or false when fewer hands were found.
func (r Result) Hand(i int) (HandFrame, bool) {
	if i < 0 || i >= len(r.Hands) {
		return HandFrame{}, false
	}
	return r.Hands[i], true
}

// Empty reports whether no hand was detected.
func (r Result) Empty() bool {
	return len(r.Hands) == 0
}

// Connections lists the landmark pairs joined when drawing a hand skeleton.
var Connections = [][2]int{
	{Wrist, ThumbCMC}, {ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{Wrist, IndexMCP}, {IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{IndexMCP, MiddleMCP}, {MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{MiddleMCP, RingMCP}, {RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{RingMCP, PinkyMCP}, {Wrist, PinkyMCP}, {PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
}
