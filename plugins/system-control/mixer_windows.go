//go:build windows

package main

import (
	"fmt"
	"runtime"

	"github.com/go-ole/go-ole"
	"github.com/moutend/go-wca/pkg/wca"
)

// endpointMixer drives the default render endpoint through Core Audio.
// Levels are decibels within the range the device reports.
type endpointMixer struct {
	aev *wca.IAudioEndpointVolume
}

func newMixer() (mixer, error) {
	runtime.LockOSThread()
	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		return nil, fmt.Errorf("%w: initialize COM: %v", errNoMixer, err)
	}

	aev, err := defaultEndpointVolume()
	if err != nil {
		ole.CoUninitialize()
		return nil, fmt.Errorf("%w: %v", errNoMixer, err)
	}
	return &endpointMixer{aev: aev}, nil
}

func defaultEndpointVolume() (*wca.IAudioEndpointVolume, error) {
	var mmde *wca.IMMDeviceEnumerator
	if err := wca.CoCreateInstance(wca.CLSID_MMDeviceEnumerator, 0, wca.CLSCTX_ALL, wca.IID_IMMDeviceEnumerator, &mmde); err != nil {
		return nil, fmt.Errorf("create device enumerator: %w", err)
	}
	defer mmde.Release()

	var mmd *wca.IMMDevice
	if err := mmde.GetDefaultAudioEndpoint(wca.ERender, wca.EConsole, &mmd); err != nil {
		return nil, fmt.Errorf("get default endpoint: %w", err)
	}
	defer mmd.Release()

	var aev *wca.IAudioEndpointVolume
	if err := mmd.Activate(wca.IID_IAudioEndpointVolume, wca.CLSCTX_ALL, nil, &aev); err != nil {
		return nil, fmt.Errorf("activate endpoint volume: %w", err)
	}
	return aev, nil
}

func (m *endpointMixer) Range() (float64, float64, error) {
	var minDB, maxDB, stepDB float32
	if err := m.aev.GetVolumeRange(&minDB, &maxDB, &stepDB); err != nil {
		return 0, 0, fmt.Errorf("get volume range: %w", err)
	}
	return float64(minDB), float64(maxDB), nil
}

func (m *endpointMixer) Level() (float64, error) {
	var level float32
	if err := m.aev.GetMasterVolumeLevel(&level); err != nil {
		return 0, fmt.Errorf("get master volume: %w", err)
	}
	return float64(level), nil
}

func (m *endpointMixer) SetLevel(level float64) error {
	if err := m.aev.SetMasterVolumeLevel(float32(level), nil); err != nil {
		return fmt.Errorf("set master volume: %w", err)
	}
	return nil
}

// Close releases the endpoint and uninitializes COM.
func (m *endpointMixer) Close() error {
	m.aev.Release()
	ole.CoUninitialize()
	return nil
}
