package volume

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/plugin"
)

// SystemControlPlugin is the name of the bundled system-control plugin.
const SystemControlPlugin = "system-control"

// Plugin actions used by PluginSink.
const (
	ActionRange = "volume-range"
	ActionSet   = "volume-set"
)

// DefaultSetTimeout bounds a single volume-set call. It is shorter than the
// executor timeout since SetLevel runs on the frame path.
const DefaultSetTimeout = time.Second

// PluginSink drives the system volume through an external plugin.
type PluginSink struct {
	plugin     *plugin.Plugin
	exec       *plugin.Executor
	setTimeout time.Duration
}

type rangeData struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type setParams struct {
	Level float64 `json:"level"`
}

// NewPluginSink looks up the named plugin and checks that it declares the
// volume actions. The returned error wraps ErrUnavailable when the plugin is
// missing or cannot control volume.
func NewPluginSink(mgr *plugin.Manager, exec *plugin.Executor, name string) (*PluginSink, error) {
	p, err := mgr.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: plugin %s: %w", ErrUnavailable, name, err)
	}

	for _, action := range []string{ActionRange, ActionSet} {
		if !p.Supports(action) {
			return nil, fmt.Errorf("%w: plugin %s does not declare %s", ErrUnavailable, name, action)
		}
	}

	return &PluginSink{plugin: p, exec: exec, setTimeout: DefaultSetTimeout}, nil
}

// SetTimeout changes the deadline for SetLevel. Non-positive values restore
// DefaultSetTimeout.
func (s *PluginSink) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultSetTimeout
	}
	s.setTimeout = d
}

// Range asks the plugin for the device's volume bounds.
func (s *PluginSink) Range() (float64, float64, error) {
	resp, err := s.exec.Execute(context.Background(), s.plugin, &plugin.Request{Action: ActionRange})
	if err != nil {
		return 0, 0, fmt.Errorf("volume range: %w", err)
	}
	if !resp.Success {
		return 0, 0, fmt.Errorf("%w: %s", ErrUnavailable, resp.Error)
	}

	var r rangeData
	if err := json.Unmarshal(resp.Data, &r); err != nil {
		return 0, 0, fmt.Errorf("parse volume range: %w", err)
	}
	if r.Min >= r.Max {
		return 0, 0, fmt.Errorf("%w: empty device range [%g, %g]", ErrUnavailable, r.Min, r.Max)
	}

	return r.Min, r.Max, nil
}

// SetLevel asks the plugin to set the master volume.
func (s *PluginSink) SetLevel(level float64) error {
	params, err := json.Marshal(setParams{Level: level})
	if err != nil {
		return fmt.Errorf("encode level: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.setTimeout)
	defer cancel()

	resp, err := s.exec.Execute(ctx, s.plugin, &plugin.Request{
		Action: ActionSet,
		Params: params,
	})
	if err != nil {
		return fmt.Errorf("set volume: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("set volume: %s", resp.Error)
	}

	return nil
}
