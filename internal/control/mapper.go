// Package control maps hand measurements onto bounded control values and
// provides the volume-control gesture action.
package control

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRange is returned when a range is empty or not finite.
var ErrInvalidRange = errors.New("invalid range")

// Range is a pair of bounds used as the domain or codomain of Interpolate.
// Input ranges must satisfy Min < Max. Output ranges may run either way:
// a descending range maps larger inputs to smaller outputs.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Ranges used by the volume gesture.
var (
	// DefaultPinchRange is the thumb-to-index distance, in pixels, treated
	// as fully closed (Min) and fully open (Max).
	DefaultPinchRange = Range{Min: 50, Max: 160}

	// PercentRange is the codomain of percentage readouts.
	PercentRange = Range{Min: 0, Max: 100}
)

// Validate reports whether r is usable as an input range.
func (r Range) Validate() error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
		return fmt.Errorf("%w: [%g, %g] is not finite", ErrInvalidRange, r.Min, r.Max)
	}
	if r.Min >= r.Max {
		return fmt.Errorf("%w: min %g must be below max %g", ErrInvalidRange, r.Min, r.Max)
	}
	return nil
}

// Clamp limits v to [Min, Max].
func (r Range) Clamp(v float64) float64 {
	lo, hi := r.Min, r.Max
	if lo > hi {
		lo, hi = hi, lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func (r Range) String() string {
	return fmt.Sprintf("[%g, %g]", r.Min, r.Max)
}

// Interpolate clamps value to in and maps it linearly onto out: in.Min maps
// to out.Min and in.Max maps to out.Max. Values outside in are clamped, never
// extrapolated. NaN maps to out.Min, as does anything when in is not a
// valid input range.
//
// For a fixed pair of ranges the result is monotonic in value.
func Interpolate(value float64, in, out Range) float64 {
	if in.Validate() != nil || math.IsNaN(value) {
		return out.Min
	}

	switch {
	case value <= in.Min:
		return out.Min
	case value >= in.Max:
		return out.Max
	}

	t := (value - in.Min) / (in.Max - in.Min)
	return out.Clamp(out.Min + t*(out.Max-out.Min))
}
