// Package tray provides the system tray menu for Mudra.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/control"
)

// Tray is the system tray menu: an enable toggle, the last dispatched code,
// the current volume reading, a link to the status page and quit.
type Tray struct {
	onToggle func(enabled bool)
	onOpen   func()
	onQuit   func()
	enabled  bool
	last     string
	volume   string
	mu       sync.RWMutex

	menuToggle *systray.MenuItem
	menuLast   *systray.MenuItem
	menuVolume *systray.MenuItem
}

// New creates a Tray showing the given enabled state.
func New(enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
		last:    LastLabel(app.Report{}),
		volume:  VolumeLabel(nil),
	}
}

// OnToggle sets the callback run when the user toggles processing.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback run when the status page item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback run before the tray exits.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray and blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand gesture volume control")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(ToggleLabel(t.enabled), "Toggle gesture processing")
	systray.AddSeparator()

	t.menuLast = systray.AddMenuItem(t.last, "Last dispatched gesture")
	t.menuLast.Disable()
	t.menuVolume = systray.AddMenuItem(t.volume, "Last volume reading")
	t.menuVolume.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Status...", "Open the status page in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(ToggleLabel(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// Update refreshes the menu from a frame report. Reports without a tracked
// hand leave the menu unchanged. It can be registered with app.App.OnReport.
func (t *Tray) Update(r app.Report) {
	if !r.Tracked {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if label := LastLabel(r); label != t.last {
		t.last = label
		if t.menuLast != nil {
			t.menuLast.SetTitle(label)
		}
	}
	if r.Reading == nil {
		return
	}
	if label := VolumeLabel(r.Reading); label != t.volume {
		t.volume = label
		if t.menuVolume != nil {
			t.menuVolume.SetTitle(label)
		}
	}
}

// Quit closes the tray, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// IsEnabled returns the enabled state shown in the menu.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Labels returns the current last-gesture and volume menu titles.
func (t *Tray) Labels() (last, volume string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last, t.volume
}

// ToggleLabel is the title of the enable toggle.
func ToggleLabel(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

// LastLabel describes the code dispatched in r.
func LastLabel(r app.Report) string {
	if !r.Tracked {
		return "Last: none"
	}
	if r.Outcome.Action == "" {
		return fmt.Sprintf("Last: %s (unbound)", r.Outcome.Code)
	}
	return fmt.Sprintf("Last: %s (%s)", r.Outcome.Code, r.Outcome.Action)
}

// VolumeLabel describes a volume reading.
func VolumeLabel(r *control.Reading) string {
	if r == nil {
		return "Volume: --"
	}
	label := fmt.Sprintf("Volume: %d %%", int(r.Percent))
	if !r.Applied {
		label += " (not applied)"
	}
	return label
}
