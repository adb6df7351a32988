package control

import (
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// Key names a keyboard key using robotgo key names ("w", "space", "ctrl", ...).
type Key string

// Movement keys.
const (
	KeyW Key = "w"
	KeyA Key = "a"
	KeyS Key = "s"
	KeyD Key = "d"
)

// MovementKeys lists the movement keys in release order.
var MovementKeys = []Key{KeyW, KeyA, KeyS, KeyD}

// InputSink injects input into the operating system.
type InputSink interface {
	KeyDown(key Key) error
	KeyUp(key Key) error
	KeyTap(key Key) error
	// MouseDown presses the left button at the current cursor position.
	MouseDown() error
	MouseUp() error
}

// ActionKind identifies a single input call.
type ActionKind string

const (
	ActionKeyDown   ActionKind = "key_down"
	ActionKeyUp     ActionKind = "key_up"
	ActionKeyTap    ActionKind = "key_tap"
	ActionMouseDown ActionKind = "mouse_down"
	ActionMouseUp   ActionKind = "mouse_up"
)

// Action records one input call made by the controller.
type Action struct {
	Kind    ActionKind    `json:"kind"`
	Key     Key           `json:"key,omitempty"`
	Gesture gesture.Label `json:"gesture"`
	At      time.Time     `json:"at"`
}

func (a Action) String() string {
	if a.Key != "" {
		return fmt.Sprintf("%s(%s)", a.Kind, a.Key)
	}
	return string(a.Kind)
}

// emitter performs sink calls for one Handle invocation, keeping the
// controller state in step with the calls that succeeded.
type emitter struct {
	c       *Controller
	gesture gesture.Label
	at      time.Time
	actions []Action
}

func (e *emitter) record(kind ActionKind, key Key) {
	e.actions = append(e.actions, Action{Kind: kind, Key: key, Gesture: e.gesture, At: e.at})
}

func (e *emitter) keyDown(k Key) error {
	if err := e.c.sink.KeyDown(k); err != nil {
		return fmt.Errorf("key down %s: %w", k, err)
	}
	e.c.held[k] = true
	e.record(ActionKeyDown, k)
	log.WithField("key", k).Debug("key down")
	return nil
}

func (e *emitter) keyUp(k Key) error {
	if err := e.c.sink.KeyUp(k); err != nil {
		return fmt.Errorf("key up %s: %w", k, err)
	}
	delete(e.c.held, k)
	e.record(ActionKeyUp, k)
	log.WithField("key", k).Debug("key up")
	return nil
}

func (e *emitter) tap(k Key) error {
	if err := e.c.sink.KeyTap(k); err != nil {
		return fmt.Errorf("key tap %s: %w", k, err)
	}
	e.record(ActionKeyTap, k)
	return nil
}

func (e *emitter) mouseDown() error {
	if err := e.c.sink.MouseDown(); err != nil {
		return fmt.Errorf("mouse down: %w", err)
	}
	e.c.dragging = true
	e.record(ActionMouseDown, "")
	log.Debug("drag started")
	return nil
}

func (e *emitter) mouseUp() error {
	if err := e.c.sink.MouseUp(); err != nil {
		return fmt.Errorf("mouse up: %w", err)
	}
	e.c.dragging = false
	e.record(ActionMouseUp, "")
	log.Debug("drag stopped")
	return nil
}
