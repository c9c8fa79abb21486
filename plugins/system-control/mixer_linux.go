package main

import (
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
)

var percentPattern = regexp.MustCompile(`(\d+)%`)

// pactlMixer drives the default PulseAudio or PipeWire sink.
type pactlMixer struct{}

// amixerMixer drives the ALSA Master control.
type amixerMixer struct{}

func newMixer() (mixer, error) {
	if _, err := exec.LookPath("pactl"); err == nil {
		return pactlMixer{}, nil
	}
	if _, err := exec.LookPath("amixer"); err == nil {
		return amixerMixer{}, nil
	}
	return nil, errNoMixer
}

func run(name string, args ...string) (string, error) {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", name, err, string(output))
	}
	return string(output), nil
}

// firstPercent returns the first "NN%" value in a mixer's output.
func firstPercent(out string) (float64, error) {
	m := percentPattern.FindStringSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("no volume in mixer output %q", out)
	}
	return strconv.ParseFloat(m[1], 64)
}

func (pactlMixer) Level() (float64, error) {
	out, err := run("pactl", "get-sink-volume", "@DEFAULT_SINK@")
	if err != nil {
		return 0, err
	}
	return firstPercent(out)
}

func (pactlMixer) SetLevel(level float64) error {
	_, err := run("pactl", "set-sink-volume", "@DEFAULT_SINK@", fmt.Sprintf("%d%%", int(level)))
	return err
}

func (m pactlMixer) Range() (float64, float64, error) {
	return percentRange(m)
}

func (amixerMixer) Level() (float64, error) {
	out, err := run("amixer", "sget", "Master")
	if err != nil {
		return 0, err
	}
	return firstPercent(out)
}

func (amixerMixer) SetLevel(level float64) error {
	_, err := run("amixer", "-q", "sset", "Master", fmt.Sprintf("%d%%", int(level)))
	return err
}

func (m amixerMixer) Range() (float64, float64, error) {
	return percentRange(m)
}
