package detector

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandFrame
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandFrame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect was called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error. The frame may be nil.
func (m *MockDetector) Detect(frame *gocv.Mat) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return Result{}, m.err
	}

	result := Result{Hands: m.hands}
	if frame != nil && !frame.Empty() {
		result.Width, result.Height = frame.Cols(), frame.Rows()
	}
	return result, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// curledFingers returns a right hand, palm to the camera, with index,
// middle, ring and pinky folded (tips below their PIP joints).
func curledFingers() [NumLandmarks]image.Point {
	var p [NumLandmarks]image.Point

	p[Wrist] = image.Point{X: 320, Y: 420}

	p[ThumbCMC] = image.Point{X: 350, Y: 400}
	p[ThumbMCP] = image.Point{X: 370, Y: 380}
	p[ThumbIP] = image.Point{X: 375, Y: 360}
	p[ThumbTip] = image.Point{X: 365, Y: 345}

	p[IndexMCP] = image.Point{X: 345, Y: 330}
	p[IndexPIP] = image.Point{X: 348, Y: 300}
	p[IndexDIP] = image.Point{X: 346, Y: 315}
	p[IndexTip] = image.Point{X: 344, Y: 330}

	p[MiddleMCP] = image.Point{X: 320, Y: 325}
	p[MiddlePIP] = image.Point{X: 320, Y: 295}
	p[MiddleDIP] = image.Point{X: 320, Y: 312}
	p[MiddleTip] = image.Point{X: 320, Y: 328}

	p[RingMCP] = image.Point{X: 297, Y: 330}
	p[RingPIP] = image.Point{X: 295, Y: 302}
	p[RingDIP] = image.Point{X: 296, Y: 318}
	p[RingTip] = image.Point{X: 297, Y: 333}

	p[PinkyMCP] = image.Point{X: 277, Y: 342}
	p[PinkyPIP] = image.Point{X: 274, Y: 320}
	p[PinkyDIP] = image.Point{X: 275, Y: 333}
	p[PinkyTip] = image.Point{X: 277, Y: 345}

	return p
}

// FistLandmarks returns a closed fist: thumb tucked across the palm and all
// other fingers curled. Its finger-state code is "00000".
func FistLandmarks() HandFrame {
	hand := NewHandFrame(curledFingers())
	hand.Handedness = "Right"
	hand.Score = 0.95
	return hand
}

// PinchLandmarks returns the volume gesture (code "11000"): thumb extended
// sideways, index extended upward, remaining fingers curled. The thumb and
// index tips are placed at the given pixel positions; their joints are
// positioned relative to the tips so the finger states hold.
func PinchLandmarks(thumbTip, indexTip image.Point) HandFrame {
	p := curledFingers()

	p[ThumbTip] = thumbTip
	p[ThumbIP] = image.Point{X: thumbTip.X - 20, Y: thumbTip.Y + 15}
	p[ThumbMCP] = image.Point{X: thumbTip.X - 40, Y: thumbTip.Y + 35}

	p[IndexTip] = indexTip
	p[IndexDIP] = image.Point{X: indexTip.X, Y: indexTip.Y + 25}
	p[IndexPIP] = image.Point{X: indexTip.X, Y: indexTip.Y + 50}
	p[IndexMCP] = image.Point{X: indexTip.X, Y: indexTip.Y + 80}

	hand := NewHandFrame(p)
	hand.Handedness = "Right"
	hand.Score = 0.95
	return hand
}

// PinchLandmarksWithDistance returns the volume gesture with the thumb and
// index tips a given number of pixels apart along the x axis.
func PinchLandmarksWithDistance(distance int) HandFrame {
	index := image.Point{X: 300, Y: 200}
	return PinchLandmarks(image.Point{X: index.X + distance, Y: index.Y}, index)
}

// OpenPalmLandmarks returns an open palm with every finger extended.
// Its finger-state code is "11111".
func OpenPalmLandmarks() HandFrame {
	p := curledFingers()

	p[ThumbIP] = image.Point{X: 395, Y: 360}
	p[ThumbTip] = image.Point{X: 420, Y: 340}

	for _, f := range [][4]int{
		{IndexMCP, IndexPIP, IndexDIP, IndexTip},
		{MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip},
		{RingMCP, RingPIP, RingDIP, RingTip},
		{PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip},
	} {
		base := p[f[0]]
		p[f[1]] = image.Point{X: base.X, Y: base.Y - 40}
		p[f[2]] = image.Point{X: base.X, Y: base.Y - 70}
		p[f[3]] = image.Point{X: base.X, Y: base.Y - 95}
	}

	hand := NewHandFrame(p)
	hand.Handedness = "Right"
	hand.Score = 0.95
	return hand
}
