package app

import (
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/gesture"
)

// Binding is one code-to-action mapping as shown in status output.
type Binding struct {
	Code   string `json:"code"`
	Action string `json:"action"`
}

// Status is a point-in-time view of the application.
type Status struct {
	Enabled  bool             `json:"enabled"`
	Running  bool             `json:"running"`
	Mode     string           `json:"mode"`
	Sink     bool             `json:"sink"`
	Frames   int64            `json:"frames"`
	Bindings []Binding        `json:"bindings"`
	Last     *Report          `json:"last,omitempty"`
	Reading  *control.Reading `json:"reading,omitempty"`
}

// Status returns the current application status.
func (a *App) Status() Status {
	st := Status{
		Enabled: a.IsEnabled(),
		Running: a.Running(),
		Mode:    a.gate.Mode().String(),
		Sink:    a.volume.HasSink(),
	}

	for _, code := range a.dispatcher.Bindings() {
		b := Binding{Code: code.String()}
		if action, ok := a.dispatcher.Lookup(code); ok {
			b.Action = action.Name()
		}
		st.Bindings = append(st.Bindings, b)
	}

	a.mu.RLock()
	st.Frames = a.frames
	if a.hasLast {
		last := a.last
		st.Last = &last
	}
	a.mu.RUnlock()

	if r, ok := a.volume.Last(); ok {
		st.Reading = &r
	}
	return st
}

// BindingFor returns the action name bound to code.
func (a *App) BindingFor(code gesture.Code) (string, bool) {
	action, ok := a.dispatcher.Lookup(code)
	if !ok {
		return "", false
	}
	return action.Name(), true
}
