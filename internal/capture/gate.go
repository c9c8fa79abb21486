package capture

import (
	"sync"
	"time"
)

// Gate rates.
const (
	IdleFPS     = 5
	ActiveFPS   = 15
	DefaultHold = 2 * time.Second
)

// Mode is the gate's sampling mode.
type Mode int

const (
	Idle Mode = iota
	Active
)

func (m Mode) String() string {
	if m == Active {
		return "active"
	}
	return "idle"
}

// FPS returns the capture rate for the mode.
func (m Mode) FPS() int {
	if m == Active {
		return ActiveFPS
	}
	return IdleFPS
}

// Gate switches between idle and active sampling. Motion makes it active;
// it returns to idle once no motion has been seen for Hold. A hand held
// still while pinching therefore stays tracked for Hold after it stops.
type Gate struct {
	mu         sync.Mutex
	hold       time.Duration
	mode       Mode
	lastMotion time.Time
}

// NewGate creates an idle Gate. A hold <= 0 takes DefaultHold.
func NewGate(hold time.Duration) *Gate {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &Gate{hold: hold}
}

// Observe records one motion sample taken at now and returns the mode and
// whether it changed.
func (g *Gate) Observe(m Motion, now time.Time) (Mode, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	prev := g.mode
	switch {
	case m.Moving:
		g.lastMotion = now
		g.mode = Active
	case g.mode == Active && now.Sub(g.lastMotion) > g.hold:
		g.mode = Idle
	}
	return g.mode, g.mode != prev
}

// Keep extends the active period as if motion was seen at now. The frame
// loop calls it while a hand is in view.
func (g *Gate) Keep(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode == Active {
		g.lastMotion = now
	}
}

// Mode returns the current mode.
func (g *Gate) Mode() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}
