package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
)

// runPipeline reads frames on a ticker until stop is closed.
//
// Frames are sampled at the idle rate until motion is seen; the gate then
// switches to the active rate and hand detection runs on every frame. While
// a hand stays in view the gate is kept active, so a hand held still keeps
// control of the volume. Each frame is processed to completion before the
// next one is read.
func (a *App) runPipeline(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := time.NewTicker(time.Second / time.Duration(capture.IdleFPS))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			mode, changed := a.step(ctx)
			if changed {
				a.camera.SetFPS(mode.FPS())
				ticker.Reset(time.Second / time.Duration(mode.FPS()))
				log.Printf("Switched to %s mode", mode)
			}
		}
	}
}

// step reads and processes one frame and returns the gate's mode afterwards.
func (a *App) step(ctx context.Context) (capture.Mode, bool) {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		if !errors.Is(err, capture.ErrEndOfStream) {
			log.Printf("Error reading frame: %v", err)
		}
		return a.gate.Mode(), false
	}
	defer frame.Close()

	now := time.Now()
	mode, changed := a.gate.Observe(a.motion.Detect(frame), now)
	if mode != capture.Active {
		return mode, changed
	}

	report, err := a.ProcessFrame(ctx, frame)
	switch {
	case errors.Is(err, detector.ErrMalformedHand):
		log.Printf("Skipping frame: %v", err)
	case err != nil:
		log.Printf("Error processing frame: %v", err)
	case report.Tracked:
		a.gate.Keep(now)
	}

	return mode, changed
}
