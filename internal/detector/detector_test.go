package detector

import (
	"errors"
	"image"
	"math"
	"testing"
)

const epsilon = 1e-9

func TestHandFrame_Validate(t *testing.T) {
	t.Run("full frame is valid", func(t *testing.T) {
		hand := FistLandmarks()
		if err := hand.Validate(); err != nil {
			t.Errorf("expected valid hand, got %v", err)
		}
	})

	t.Run("too few landmarks", func(t *testing.T) {
		hand := FistLandmarks()
		hand.Landmarks = hand.Landmarks[:20]

		err := hand.Validate()
		if !errors.Is(err, ErrMalformedHand) {
			t.Errorf("expected ErrMalformedHand, got %v", err)
		}
	})

	t.Run("empty frame", func(t *testing.T) {
		err := HandFrame{}.Validate()
		if !errors.Is(err, ErrMalformedHand) {
			t.Errorf("expected ErrMalformedHand, got %v", err)
		}
	})

	t.Run("out of order ids", func(t *testing.T) {
		hand := FistLandmarks()
		hand.Landmarks[3], hand.Landmarks[4] = hand.Landmarks[4], hand.Landmarks[3]

		err := hand.Validate()
		if !errors.Is(err, ErrMalformedHand) {
			t.Errorf("expected ErrMalformedHand, got %v", err)
		}
	})
}

func TestNewHandFrame(t *testing.T) {
	var points [NumLandmarks]image.Point
	for i := range points {
		points[i] = image.Point{X: i * 10, Y: i * 20}
	}

	hand := NewHandFrame(points)

	if len(hand.Landmarks) != NumLandmarks {
		t.Fatalf("expected %d landmarks, got %d", NumLandmarks, len(hand.Landmarks))
	}
	for i, l := range hand.Landmarks {
		if l.ID != i {
			t.Errorf("landmark %d: expected id %d, got %d", i, i, l.ID)
		}
		if l.Point() != points[i] {
			t.Errorf("landmark %d: expected %v, got %v", i, points[i], l.Point())
		}
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Landmark
		want float64
	}{
		{"same point", Landmark{X: 10, Y: 10}, Landmark{X: 10, Y: 10}, 0},
		{"horizontal", Landmark{X: 0, Y: 0}, Landmark{X: 50, Y: 0}, 50},
		{"3-4-5 triangle", Landmark{X: 1, Y: 1}, Landmark{X: 4, Y: 5}, 5},
		{"negative direction", Landmark{X: 100, Y: 100}, Landmark{X: 40, Y: 20}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("Distance() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestResult_Hand(t *testing.T) {
	result := Result{Hands: []HandFrame{FistLandmarks(), OpenPalmLandmarks()}}

	if _, ok := result.Hand(0); !ok {
		t.Error("expected hand 0 to exist")
	}
	second, ok := result.Hand(1)
	if !ok {
		t.Fatal("expected hand 1 to exist")
	}
	if second.Landmarks[IndexTip].Y >= second.Landmarks[IndexPIP].Y {
		t.Error("expected hand 1 to be the open palm")
	}
	if _, ok := result.Hand(2); ok {
		t.Error("expected hand 2 to be absent")
	}
	if _, ok := result.Hand(-1); ok {
		t.Error("expected negative index to be absent")
	}
	if result.Empty() {
		t.Error("expected non-empty result")
	}
	if !(Result{}).Empty() {
		t.Error("expected zero result to be empty")
	}
}

func TestJSONHand_ToHandFrame(t *testing.T) {
	t.Run("scales to pixels", func(t *testing.T) {
		h := jsonHand{Handedness: "Left", Score: 0.9}
		for i := 0; i < NumLandmarks; i++ {
			h.Points = append(h.Points, jsonPoint{X: 0.5, Y: 0.25})
		}

		hand := h.toHandFrame(640, 480)

		if err := hand.Validate(); err != nil {
			t.Fatalf("expected valid hand, got %v", err)
		}
		if hand.Landmarks[ThumbTip].X != 320 || hand.Landmarks[ThumbTip].Y != 120 {
			t.Errorf("expected (320,120), got (%d,%d)", hand.Landmarks[ThumbTip].X, hand.Landmarks[ThumbTip].Y)
		}
		if hand.Handedness != "Left" {
			t.Errorf("expected handedness Left, got %s", hand.Handedness)
		}
	})

	t.Run("truncates toward zero", func(t *testing.T) {
		h := jsonHand{Points: make([]jsonPoint, NumLandmarks)}
		h.Points[IndexTip] = jsonPoint{X: 0.9999, Y: 0.0001}

		hand := h.toHandFrame(100, 100)

		if hand.Landmarks[IndexTip].X != 99 || hand.Landmarks[IndexTip].Y != 0 {
			t.Errorf("expected (99,0), got (%d,%d)", hand.Landmarks[IndexTip].X, hand.Landmarks[IndexTip].Y)
		}
	})

	t.Run("short response stays malformed", func(t *testing.T) {
		h := jsonHand{Points: make([]jsonPoint, 5)}

		hand := h.toHandFrame(640, 480)

		if !errors.Is(hand.Validate(), ErrMalformedHand) {
			t.Error("expected short response to fail validation")
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty result by default", func(t *testing.T) {
		mock := NewMockDetector()

		result, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if !result.Empty() {
			t.Errorf("expected no hands, got %d", len(result.Hands))
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandFrame{FistLandmarks(), OpenPalmLandmarks()})

		result, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(result.Hands) != 2 {
			t.Errorf("expected 2 hands, got %d", len(result.Hands))
		}
		if mock.Calls() != 1 {
			t.Errorf("expected 1 call, got %d", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()
		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		result, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if !result.Empty() {
			t.Error("expected no hands when error is set")
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestFixtures(t *testing.T) {
	t.Run("pinch places tips", func(t *testing.T) {
		thumb := image.Point{X: 400, Y: 210}
		index := image.Point{X: 330, Y: 180}

		hand := PinchLandmarks(thumb, index)

		if err := hand.Validate(); err != nil {
			t.Fatalf("expected valid hand, got %v", err)
		}
		if hand.At(ThumbTip).Point() != thumb {
			t.Errorf("expected thumb tip %v, got %v", thumb, hand.At(ThumbTip).Point())
		}
		if hand.At(IndexTip).Point() != index {
			t.Errorf("expected index tip %v, got %v", index, hand.At(IndexTip).Point())
		}
	})

	t.Run("pinch distance", func(t *testing.T) {
		for _, d := range []int{0, 50, 105, 200} {
			hand := PinchLandmarksWithDistance(d)
			got := Distance(hand.At(ThumbTip), hand.At(IndexTip))
			if math.Abs(got-float64(d)) > epsilon {
				t.Errorf("distance %d: got %f", d, got)
			}
		}
	})

	t.Run("open palm fingers point up", func(t *testing.T) {
		hand := OpenPalmLandmarks()
		for _, tip := range []int{IndexTip, MiddleTip, RingTip, PinkyTip} {
			if hand.At(tip).Y >= hand.At(tip-2).Y {
				t.Errorf("tip %d should be above its PIP joint", tip)
			}
		}
	})
}
