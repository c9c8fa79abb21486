package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestNewMotionDetector(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		want      float64
	}{
		{name: "explicit", threshold: 5.0, want: 5.0},
		{name: "zero takes default", threshold: 0, want: DefaultMotionThreshold},
		{name: "negative takes default", threshold: -2, want: DefaultMotionThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := NewMotionDetector(tt.threshold)
			defer md.Close()

			if md.Threshold() != tt.want {
				t.Errorf("Threshold() = %f, want %f", md.Threshold(), tt.want)
			}
			if md.primed {
				t.Error("new detector should have no baseline")
			}
		})
	}
}

func TestMotionDetector_SetThreshold(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	md.SetThreshold(5.0)
	if md.Threshold() != 5.0 {
		t.Errorf("Threshold() = %f, want 5.0", md.Threshold())
	}

	md.SetThreshold(-1.0)
	if md.Threshold() != 5.0 {
		t.Errorf("negative threshold should be ignored, got %f", md.Threshold())
	}
}

func TestMotionDetector_Frames(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	black := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer black.Close()
	white := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer white.Close()
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))

	t.Run("first frame primes", func(t *testing.T) {
		md := NewMotionDetector(1.0)
		defer md.Close()

		if m := md.Detect(&black); m.Moving || m.Changed != 0 {
			t.Errorf("first frame = %+v, want no motion", m)
		}
	})

	t.Run("identical frames", func(t *testing.T) {
		md := NewMotionDetector(1.0)
		defer md.Close()

		md.Detect(&black)
		if m := md.Detect(&black); m.Moving {
			t.Errorf("identical frames reported motion: %+v", m)
		}
	})

	t.Run("black to white", func(t *testing.T) {
		md := NewMotionDetector(1.0)
		defer md.Close()

		md.Detect(&black)
		m := md.Detect(&white)
		if !m.Moving {
			t.Errorf("expected motion, got %+v", m)
		}
		if m.Changed < 50 {
			t.Errorf("Changed = %f, want > 50", m.Changed)
		}
	})

	t.Run("reset re-primes", func(t *testing.T) {
		md := NewMotionDetector(1.0)
		defer md.Close()

		md.Detect(&black)
		md.Reset()
		if m := md.Detect(&white); m.Moving {
			t.Errorf("frame after Reset should only prime, got %+v", m)
		}
	})

	t.Run("size change re-primes", func(t *testing.T) {
		small := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
		defer small.Close()

		md := NewMotionDetector(1.0)
		defer md.Close()

		md.Detect(&black)
		if m := md.Detect(&small); m.Moving {
			t.Errorf("resized frame should only prime, got %+v", m)
		}
	})
}

func TestMotionDetector_NilFrame(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	if m := md.Detect(nil); m.Moving {
		t.Error("nil frame should not report motion")
	}
	md.Close()
	md.Close()
}
