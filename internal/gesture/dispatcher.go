package gesture

import (
	"fmt"
	"sort"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
)

// State is what the dispatcher holds for the frame being dispatched.
type State struct {
	Hand detector.HandFrame
	Code Code

	// Image is the frame the hand was detected in. It is owned by the caller
	// of Dispatch and may be closed once Dispatch returns. It may be nil.
	Image *gocv.Mat
}

// Action is a capability bound to a code.
type Action interface {
	// Name identifies the action in logs and status output.
	Name() string

	// Invoke runs the action for the dispatched frame. It must not call
	// back into the dispatcher's Register or Dispatch.
	Invoke(st State)
}

type actionFunc struct {
	name string
	fn   func(State)
}

func (a actionFunc) Name() string    { return a.name }
func (a actionFunc) Invoke(st State) { a.fn(st) }

// ActionFunc adapts a function to the Action interface.
func ActionFunc(name string, fn func(State)) Action {
	return actionFunc{name: name, fn: fn}
}

// Outcome describes one Dispatch call.
type Outcome struct {
	Code    Code   `json:"code"`
	Action  string `json:"action,omitempty"`
	Invoked bool   `json:"invoked"`
}

// Dispatcher maps finger-state codes to actions.
//
// Dispatch stores the frame and runs the bound action under one lock, so an
// action always sees the frame that triggered it even when Dispatch and
// State are called from different goroutines.
type Dispatcher struct {
	mu        sync.Mutex
	bindings  map[Code]Action
	state     State
	hasState  bool
	observers []func(Outcome)
}

// NewDispatcher creates a Dispatcher with a copy of the given bindings.
func NewDispatcher(bindings map[Code]Action) *Dispatcher {
	d := &Dispatcher{
		bindings: make(map[Code]Action, len(bindings)),
	}
	for code, action := range bindings {
		if action != nil {
			d.bindings[code&codeMask] = action
		}
	}
	return d
}

// Register binds an action to a code, replacing any existing binding.
// A nil action removes the binding.
func (d *Dispatcher) Register(code Code, action Action) {
	d.mu.Lock()
	defer d.mu.Unlock()

	code &= codeMask
	if action == nil {
		delete(d.bindings, code)
		return
	}
	d.bindings[code] = action
}

// Lookup returns the action bound to a code.
func (d *Dispatcher) Lookup(code Code) (Action, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	action, ok := d.bindings[code&codeMask]
	return action, ok
}

// Bindings returns the registered codes in ascending order.
func (d *Dispatcher) Bindings() []Code {
	d.mu.Lock()
	defer d.mu.Unlock()

	codes := make([]Code, 0, len(d.bindings))
	for code := range d.bindings {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// OnDispatch registers a function called after every Dispatch that invoked
// an action. Observers run outside the dispatcher lock.
func (d *Dispatcher) OnDispatch(fn func(Outcome)) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, fn)
}

// Dispatch stores the hand and image, extracts the hand's code and invokes
// the action bound to it. An unbound code is not an error: the returned
// Outcome has Invoked set to false.
//
// A hand without all 21 landmarks is rejected before any state changes; the
// error wraps detector.ErrMalformedHand.
func (d *Dispatcher) Dispatch(hand detector.HandFrame, image *gocv.Mat) (Outcome, error) {
	code, err := Extract(hand)
	if err != nil {
		return Outcome{}, fmt.Errorf("dispatch: %w", err)
	}

	d.mu.Lock()
	d.state = State{Hand: hand, Code: code, Image: image}
	d.hasState = true

	outcome := Outcome{Code: code}
	action, ok := d.bindings[code]
	if ok {
		action.Invoke(d.state)
		outcome.Action = action.Name()
		outcome.Invoked = true
	}
	observers := d.observers
	d.mu.Unlock()

	if outcome.Invoked {
		for _, fn := range observers {
			fn(outcome)
		}
	}

	return outcome, nil
}

// State returns the most recently dispatched frame, or false before the
// first successful Dispatch.
func (d *Dispatcher) State() (State, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state, d.hasState
}
