// Package control turns stable gesture labels into keyboard and mouse input.
package control

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// ErrClosed is returned by Handle once the controller has been drained.
var ErrClosed = errors.New("controller closed")

var log = logrus.WithField("component", "control")

// Mode is the controller's current control scheme.
type Mode string

const (
	ModeMovement Mode = "movement"
	ModeMouse    Mode = "mouse"
)

// State is a point-in-time copy of the controller state.
type State struct {
	Mode       Mode      `json:"mode"`
	HeldKeys   []Key     `json:"held_keys"`
	Dragging   bool      `json:"dragging"`
	LastAction time.Time `json:"last_action"`
}

// Controller owns the held-key set and drag flag and issues input through an
// InputSink. A Controller is not safe for concurrent use; the frame loop is
// its only caller.
type Controller struct {
	config     Config
	sink       InputSink
	now        func() time.Time
	mode       Mode
	held       map[Key]bool
	dragging   bool
	lastAction time.Time
	closed     bool
}

// New creates a Controller in movement mode with nothing held.
func New(config Config, sink InputSink) *Controller {
	return &Controller{
		config: config.clone(),
		sink:   sink,
		now:    time.Now,
		mode:   ModeMovement,
		held:   make(map[Key]bool),
	}
}

// SetNowFunc overrides the clock used for the cooldown.
func (c *Controller) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		c.now = fn
	}
}

// Config returns the controller's configuration.
func (c *Controller) Config() Config {
	return c.config.clone()
}

// SetBindings replaces the one-shot key map. It must be called from the same
// goroutine as Handle.
func (c *Controller) SetBindings(bindings map[gesture.Label]Key) {
	cfg := c.config
	cfg.Bindings = bindings
	c.config = cfg.clone()
	log.WithField("bindings", len(bindings)).Info("bindings updated")
}

// Handle applies one stable gesture and returns the input actions it emitted.
//
// One-shot gestures arriving within the cooldown of the last accepted gesture
// are dropped without touching any state. Fist and open hand are never
// dropped. None, unknown and unrecognised labels release everything.
//
// A sink failure is returned as is; the held-key set only reflects calls
// that succeeded.
func (c *Controller) Handle(label gesture.Label, points []detector.Point3D) ([]Action, error) {
	if c.closed {
		return nil, ErrClosed
	}

	now := c.now()
	if label.OneShot() && c.coolingDown(now) {
		log.WithField("gesture", label).Debug("rejected during cooldown")
		return nil, nil
	}

	rec := &emitter{c: c, gesture: label, at: now}

	switch label {
	case gesture.Fist:
		c.lastAction = now
		c.setMode(ModeMouse)
		if err := c.releaseMovement(rec); err != nil {
			return rec.actions, err
		}
		if !c.dragging {
			if err := rec.mouseDown(); err != nil {
				return rec.actions, err
			}
		}

	case gesture.OpenHand:
		if err := detector.Validate(points); err != nil {
			log.WithError(err).Debug("open hand without usable landmarks")
			err = c.reset(rec)
			return rec.actions, err
		}
		c.lastAction = now
		c.setMode(ModeMovement)
		if err := c.stopDrag(rec); err != nil {
			return rec.actions, err
		}
		if err := c.steer(rec, points); err != nil {
			return rec.actions, err
		}

	case gesture.ThumbsUp, gesture.TwoFingers, gesture.Pointing, gesture.FiveFingers:
		c.lastAction = now
		if err := c.reset(rec); err != nil {
			return rec.actions, err
		}
		key, ok := c.config.Bindings[label]
		if !ok || key == "" {
			log.WithField("gesture", label).Warn("no key bound")
			return rec.actions, nil
		}
		if err := rec.tap(key); err != nil {
			return rec.actions, err
		}
		log.WithFields(logrus.Fields{"gesture": label, "key": key}).Info("tap")

	default:
		if err := c.reset(rec); err != nil {
			return rec.actions, err
		}
	}

	return rec.actions, nil
}

// Close releases every held key and ends any drag. It is safe to call more
// than once; only the first call does any work.
func (c *Controller) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	rec := &emitter{c: c, gesture: gesture.None, at: c.now()}

	var errs []error
	for _, k := range MovementKeys {
		if c.held[k] {
			if err := rec.keyUp(k); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if c.dragging {
		if err := rec.mouseUp(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("release input: %w", err)
	}
	log.WithField("actions", len(rec.actions)).Debug("controller drained")
	return nil
}

// State returns a copy of the current controller state.
func (c *Controller) State() State {
	return State{
		Mode:       c.mode,
		HeldKeys:   c.HeldKeys(),
		Dragging:   c.dragging,
		LastAction: c.lastAction,
	}
}

// HeldKeys returns the held movement keys in w, a, s, d order.
func (c *Controller) HeldKeys() []Key {
	keys := make([]Key, 0, len(c.held))
	for _, k := range MovementKeys {
		if c.held[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

// Mode returns the current control mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Dragging reports whether a mouse-down is outstanding.
func (c *Controller) Dragging() bool {
	return c.dragging
}

func (c *Controller) coolingDown(now time.Time) bool {
	if c.lastAction.IsZero() {
		return false
	}
	return now.Sub(c.lastAction) < c.config.Cooldown
}

func (c *Controller) setMode(m Mode) {
	if c.mode != m {
		log.WithFields(logrus.Fields{"from": c.mode, "to": m}).Info("mode changed")
		c.mode = m
	}
}

// steer presses the movement keys that match the hand's offset from the
// reference point and releases the rest.
func (c *Controller) steer(rec *emitter, points []detector.Point3D) error {
	cx, cy := detector.Center(points)
	dx := cx - c.config.ReferenceX
	dy := cy - c.config.ReferenceY

	want := make(map[Key]bool, 2)
	var order []Key
	if dx > c.config.MoveThreshold {
		want[KeyD] = true
		order = append(order, KeyD)
	} else if dx < -c.config.MoveThreshold {
		want[KeyA] = true
		order = append(order, KeyA)
	}
	if dy > c.config.MoveThreshold {
		want[KeyS] = true
		order = append(order, KeyS)
	} else if dy < -c.config.MoveThreshold {
		want[KeyW] = true
		order = append(order, KeyW)
	}

	for _, k := range MovementKeys {
		if c.held[k] && !want[k] {
			if err := rec.keyUp(k); err != nil {
				return err
			}
		}
	}
	for _, k := range order {
		if !c.held[k] {
			if err := rec.keyDown(k); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Controller) releaseMovement(rec *emitter) error {
	for _, k := range MovementKeys {
		if c.held[k] {
			if err := rec.keyUp(k); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Controller) stopDrag(rec *emitter) error {
	if !c.dragging {
		return nil
	}
	return rec.mouseUp()
}

// reset releases movement keys and ends any drag.
func (c *Controller) reset(rec *emitter) error {
	if err := c.releaseMovement(rec); err != nil {
		return err
	}
	return c.stopDrag(rec)
}
