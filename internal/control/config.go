package control

import (
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// Default tuning values.
const (
	DefaultMoveThreshold = 0.08
	DefaultReference     = 0.5
	DefaultCooldown      = 200 * time.Millisecond
)

// Config holds the controller tuning. It is copied on construction and never
// mutated afterwards.
type Config struct {
	// MoveThreshold is the minimum offset of the hand center from the
	// reference point, per axis, before a movement key is pressed.
	MoveThreshold float64

	// ReferenceX and ReferenceY are the neutral hand position.
	ReferenceX float64
	ReferenceY float64

	// Cooldown is the minimum gap between an accepted gesture and the next
	// one-shot action.
	Cooldown time.Duration

	// Bindings maps one-shot gestures to the key they tap.
	Bindings map[gesture.Label]Key
}

// DefaultBindings returns the stock gesture key map.
func DefaultBindings() map[gesture.Label]Key {
	return map[gesture.Label]Key{
		gesture.ThumbsUp:    "space",
		gesture.TwoFingers:  "ctrl",
		gesture.Pointing:    "e",
		gesture.FiveFingers: "i",
	}
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MoveThreshold: DefaultMoveThreshold,
		ReferenceX:    DefaultReference,
		ReferenceY:    DefaultReference,
		Cooldown:      DefaultCooldown,
		Bindings:      DefaultBindings(),
	}
}

func (c Config) clone() Config {
	out := c
	out.Bindings = make(map[gesture.Label]Key, len(c.Bindings))
	for l, k := range c.Bindings {
		out.Bindings[l] = k
	}
	return out
}
