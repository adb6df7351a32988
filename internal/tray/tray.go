// Package tray provides the system tray menu: an enable toggle, the current
// control mode and last gesture, and quit.
package tray

import (
	"strings"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/server"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onQuit   func()
	onReady  func()
	enabled  bool
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle      *systray.MenuItem
	menuMode        *systray.MenuItem
	menuLastGesture *systray.MenuItem
}

// New creates a new Tray showing the given enabled state.
func New(enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// OnReady sets a callback run once the menu exists.
func (t *Tray) OnReady(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReady = fn
}

// Run starts the system tray application. It must be called from the main
// goroutine and blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.setupMenu, t.onExit)
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) setupMenu() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand gesture controller")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle input")
	systray.AddSeparator()

	t.menuMode = systray.AddMenuItem(modeTitle(control.ModeMovement, nil, false), "Control mode")
	t.menuMode.Disable()
	t.menuLastGesture = systray.AddMenuItem(gestureTitle(gesture.None), "Last stable gesture")
	t.menuLastGesture.Disable()
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")
	ready := t.onReady
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()

	if ready != nil {
		ready()
	}
}

func (t *Tray) onExit() {}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// Watch updates the menu from published snapshots until updates is closed.
func (t *Tray) Watch(updates <-chan server.Snapshot) {
	var last gesture.Label = gesture.None
	for s := range updates {
		if s.Gesture.Recognized() {
			last = s.Gesture
		}
		t.update(s, last)
	}
}

func (t *Tray) update(s server.Snapshot, last gesture.Label) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.enabled != s.Enabled {
		t.enabled = s.Enabled
		if t.menuToggle != nil {
			t.menuToggle.SetTitle(toggleTitle(s.Enabled))
		}
	}
	if t.menuMode != nil {
		t.menuMode.SetTitle(modeTitle(s.Mode, s.HeldKeys, s.Dragging))
	}
	if t.menuLastGesture != nil {
		t.menuLastGesture.SetTitle(gestureTitle(last))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func modeTitle(mode control.Mode, held []control.Key, dragging bool) string {
	if mode == "" {
		mode = control.ModeMovement
	}
	title := "Mode: " + string(mode)
	switch {
	case dragging:
		title += " (dragging)"
	case len(held) > 0:
		keys := make([]string, len(held))
		for i, k := range held {
			keys[i] = strings.ToUpper(string(k))
		}
		title += " (" + strings.Join(keys, "+") + ")"
	}
	return title
}

func gestureTitle(label gesture.Label) string {
	if label == "" {
		label = gesture.None
	}
	return "Last: " + strings.ReplaceAll(string(label), "_", " ")
}
