// Package gesture turns hand landmarks into finger-state codes and
// dispatches codes to registered actions.
package gesture

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ayusman/mudra/internal/detector"
)

// Finger identifies one finger in canonical code order.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
)

// NumFingers is the number of digits in a Code.
const NumFingers = 5

var fingerTips = [NumFingers]int{
	detector.ThumbTip,
	detector.IndexTip,
	detector.MiddleTip,
	detector.RingTip,
	detector.PinkyTip,
}

var fingerNames = [NumFingers]string{"thumb", "index", "middle", "ring", "pinky"}

// Tip returns the landmark id of the finger tip.
func (f Finger) Tip() int {
	return fingerTips[f]
}

func (f Finger) String() string {
	if f < Thumb || f > Pinky {
		return fmt.Sprintf("Finger(%d)", int(f))
	}
	return fingerNames[f]
}

// ErrInvalidCode is returned when parsing a malformed code string.
var ErrInvalidCode = errors.New("invalid finger-state code")

// Code is a finger-state code: one bit per finger, thumb in the most
// significant of the five bits. A set bit means the finger is extended.
type Code uint8

// CodeVolume is thumb and index extended, the other fingers curled.
const CodeVolume Code = 0b11000

const codeMask Code = 1<<NumFingers - 1

func bit(f Finger) Code {
	return 1 << (NumFingers - 1 - int(f))
}

// Extended reports whether the finger's bit is set.
func (c Code) Extended(f Finger) bool {
	return c&bit(f) != 0
}

// String renders the code as five digits in finger order, e.g. "11000".
func (c Code) String() string {
	var b strings.Builder
	b.Grow(NumFingers)
	for f := Thumb; f <= Pinky; f++ {
		if c.Extended(f) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Code) UnmarshalText(text []byte) error {
	parsed, err := ParseCode(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCode parses a five-digit binary string such as "11000".
func ParseCode(s string) (Code, error) {
	if len(s) != NumFingers {
		return 0, fmt.Errorf("%w: %q has %d digits, want %d", ErrInvalidCode, s, len(s), NumFingers)
	}

	var c Code
	for i := 0; i < NumFingers; i++ {
		switch s[i] {
		case '1':
			c |= bit(Finger(i))
		case '0':
		default:
			return 0, fmt.Errorf("%w: %q has non-binary digit %q", ErrInvalidCode, s, s[i])
		}
	}
	return c & codeMask, nil
}

// MustParseCode is like ParseCode but panics on error.
func MustParseCode(s string) Code {
	c, err := ParseCode(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Extract derives the finger-state code of a hand.
//
// The thumb is extended when its tip lies to the right of its IP joint in the
// image. The test only looks at x, so the result depends on handedness and on
// which side of the hand faces the camera. Every other finger is extended
// when its tip lies above its PIP joint (smaller y).
//
// Extract returns an error wrapping detector.ErrMalformedHand when the hand
// does not carry all 21 landmarks.
func Extract(hand detector.HandFrame) (Code, error) {
	if err := hand.Validate(); err != nil {
		return 0, err
	}

	var c Code

	thumbTip := hand.At(Thumb.Tip())
	if thumbTip.X > hand.At(Thumb.Tip()-1).X {
		c |= bit(Thumb)
	}

	for f := Index; f <= Pinky; f++ {
		tip := hand.At(f.Tip())
		if tip.Y < hand.At(f.Tip()-2).Y {
			c |= bit(f)
		}
	}

	return c, nil
}
