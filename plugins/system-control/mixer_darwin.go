package main

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

type appleScriptMixer struct{}

func newMixer() (mixer, error) {
	if _, err := exec.LookPath("osascript"); err != nil {
		return nil, errNoMixer
	}
	return appleScriptMixer{}, nil
}

// runAppleScript executes an AppleScript command and returns its output.
func runAppleScript(script string) (string, error) {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, string(output))
	}
	return strings.TrimSpace(string(output)), nil
}

func (appleScriptMixer) Level() (float64, error) {
	out, err := runAppleScript(`output volume of (get volume settings)`)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(out, 64)
}

func (appleScriptMixer) SetLevel(level float64) error {
	_, err := runAppleScript(fmt.Sprintf("set volume output volume %d", int(level)))
	return err
}

func (m appleScriptMixer) Range() (float64, float64, error) {
	return percentRange(m)
}
