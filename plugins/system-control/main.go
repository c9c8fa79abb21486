// Package main provides the system-control plugin. It reads and sets the
// master output volume through the host's mixer: AppleScript on macOS,
// PulseAudio or ALSA on Linux and the Core Audio endpoint on Windows.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action  string          `json:"action"`
	Gesture string          `json:"gesture"`
	Params  json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// levelParams carries the target level for volume-set.
type levelParams struct {
	Level *float64 `json:"level"`
}

// rangeData is returned by volume-range.
type rangeData struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// levelData is returned by volume-set.
type levelData struct {
	Level float64 `json:"level"`
}

// Bounds of the percent-based mixers.
const (
	percentMin = 0
	percentMax = 100
)

var errNoMixer = errors.New("no supported mixer found")

// mixer is the platform volume backend. Levels are in the mixer's native
// unit: percent for the command-line mixers, decibels on Windows.
type mixer interface {
	Range() (min, max float64, err error)
	Level() (float64, error)
	SetLevel(level float64) error
}

// actionHandler defines a function type for handling specific actions.
type actionHandler func(m mixer, params json.RawMessage) (any, error)

// actionHandlers maps action names to their handler functions.
var actionHandlers = map[string]actionHandler{
	"volume-range": volumeRange,
	"volume-set":   volumeSet,
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	handler, ok := actionHandlers[req.Action]
	if !ok {
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	m, err := newMixer()
	if err != nil {
		writeErrorResponse(err.Error())
		return
	}
	if c, ok := m.(io.Closer); ok {
		defer c.Close()
	}

	data, err := handler(m, req.Params)
	if err != nil {
		writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}

	writeSuccessResponse(data)
}

func volumeRange(m mixer, _ json.RawMessage) (any, error) {
	lo, hi, err := m.Range()
	if err != nil {
		return nil, err
	}
	return rangeData{Min: lo, Max: hi}, nil
}

func volumeSet(m mixer, raw json.RawMessage) (any, error) {
	var p levelParams
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
	}
	if p.Level == nil {
		return nil, errors.New("missing level")
	}

	lo, hi, err := m.Range()
	if err != nil {
		return nil, err
	}

	level := clampLevel(*p.Level, lo, hi)
	if err := m.SetLevel(level); err != nil {
		return nil, err
	}
	return levelData{Level: level}, nil
}

func clampLevel(level, lo, hi float64) float64 {
	if level < lo {
		return lo
	}
	if level > hi {
		return hi
	}
	return level
}

// percentRange reads the level of a percent-based mixer so that callers learn
// early when the device cannot be read.
func percentRange(m mixer) (float64, float64, error) {
	if _, err := m.Level(); err != nil {
		return 0, 0, err
	}
	return percentMin, percentMax, nil
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	resp := Response{
		Success: false,
		Error:   errMsg,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse(data any) {
	resp := Response{
		Success: true,
	}
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			resp.Data = raw
		}
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
