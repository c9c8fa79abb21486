// Package volume provides the system volume sinks written to by the volume
// gesture.
package volume

import (
	"errors"
	"sync"
)

// ErrUnavailable is returned when no volume control exists on this
// platform or device.
var ErrUnavailable = errors.New("volume control unavailable")

// Sink applies a volume level to an audio device.
type Sink interface {
	// Range returns the device's native volume bounds.
	Range() (min, max float64, err error)

	// SetLevel sets the master volume to a value inside Range.
	SetLevel(level float64) error
}

// MemorySink is a Sink that records every level written to it.
type MemorySink struct {
	mu     sync.Mutex
	min    float64
	max    float64
	levels []float64
	err    error
}

// NewMemorySink creates a MemorySink with the given native range.
func NewMemorySink(min, max float64) *MemorySink {
	return &MemorySink{min: min, max: max}
}

// Range returns the configured bounds.
func (s *MemorySink) Range() (float64, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.min, s.max, nil
}

// SetLevel records level, or returns the error set with SetError.
func (s *MemorySink) SetLevel(level float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.levels = append(s.levels, level)
	return nil
}

// SetError makes subsequent SetLevel calls fail with err.
func (s *MemorySink) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Levels returns a copy of all recorded levels.
func (s *MemorySink) Levels() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	levels := make([]float64, len(s.levels))
	copy(levels, s.levels)
	return levels
}

// Last returns the most recent level, or false when nothing was written.
func (s *MemorySink) Last() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.levels) == 0 {
		return 0, false
	}
	return s.levels[len(s.levels)-1], true
}
