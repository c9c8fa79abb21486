package server

import (
	"sync"

	"github.com/ayusman/mudra/internal/app"
)

// fakeApp is an in-memory Application.
type fakeApp struct {
	mu        sync.Mutex
	enabled   bool
	snapshot  []byte
	listeners []func(app.Report)
}

func newFakeApp() *fakeApp {
	return &fakeApp{enabled: true}
}

func (f *fakeApp) Status() app.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return app.Status{
		Enabled:  f.enabled,
		Running:  true,
		Mode:     "idle",
		Bindings: []app.Binding{{Code: "11000", Action: "volume"}},
	}
}

func (f *fakeApp) SetEnabled(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = enabled
}

func (f *fakeApp) Snapshot() ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot, f.snapshot != nil
}

func (f *fakeApp) setSnapshot(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshot = data
}

func (f *fakeApp) OnReport(fn func(app.Report)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

func (f *fakeApp) emit(r app.Report) {
	f.mu.Lock()
	listeners := f.listeners
	f.mu.Unlock()
	for _, fn := range listeners {
		fn(r)
	}
}
