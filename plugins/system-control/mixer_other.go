//go:build !darwin && !linux && !windows

package main

func newMixer() (mixer, error) {
	return nil, errNoMixer
}
