package control_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/input"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestController(t *testing.T) (*control.Controller, *input.Recorder, *fakeClock) {
	t.Helper()
	rec := input.NewRecorder()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := control.New(control.DefaultConfig(), rec)
	c.SetNowFunc(clock.now)
	return c, rec, clock
}

func palmAt(x, y float64) []detector.Point3D {
	h := detector.OpenPalmLandmarks().MoveCenterTo(x, y)
	return h.Points[:]
}

func TestController_NoneIsIdempotent(t *testing.T) {
	c, rec, _ := newTestController(t)

	for i := 0; i < 5; i++ {
		actions, err := c.Handle(gesture.None, nil)
		require.NoError(t, err)
		assert.Empty(t, actions)
	}
	assert.Empty(t, rec.Calls())
	assert.Empty(t, c.HeldKeys())
	assert.False(t, c.Dragging())
	assert.True(t, c.State().LastAction.IsZero(), "none must not refresh the cooldown")
}

func TestController_ThumbsUpTapsSpaceOnce(t *testing.T) {
	c, rec, clock := newTestController(t)
	stab := gesture.NewStabilizer(2)

	// Three consecutive frames at 30 FPS
	for i := 0; i < 3; i++ {
		_, err := c.Handle(stab.Update(gesture.ThumbsUp), nil)
		require.NoError(t, err)
		clock.advance(33 * time.Millisecond)
	}

	assert.Equal(t, 1, rec.Count(control.ActionKeyTap, "space"))
	assert.Empty(t, c.HeldKeys())
}

func TestController_OneShotCooldown(t *testing.T) {
	c, rec, clock := newTestController(t)

	actions, err := c.Handle(gesture.Pointing, nil)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, control.ActionKeyTap, actions[0].Kind)
	assert.Equal(t, control.Key("e"), actions[0].Key)
	assert.Equal(t, gesture.Pointing, actions[0].Gesture)

	clock.advance(100 * time.Millisecond)
	actions, err = c.Handle(gesture.Pointing, nil)
	require.NoError(t, err)
	assert.Empty(t, actions)

	clock.advance(150 * time.Millisecond)
	_, err = c.Handle(gesture.Pointing, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, rec.Count(control.ActionKeyTap, "e"))
}

func TestController_CooldownDropLeavesStateAlone(t *testing.T) {
	c, rec, clock := newTestController(t)

	_, err := c.Handle(gesture.OpenHand, palmAt(0.65, 0.5))
	require.NoError(t, err)
	require.Equal(t, []control.Key{control.KeyD}, c.HeldKeys())

	// Within the cooldown of the open hand: the tap is dropped and d stays held
	clock.advance(50 * time.Millisecond)
	actions, err := c.Handle(gesture.TwoFingers, nil)
	require.NoError(t, err)
	assert.Empty(t, actions)
	assert.Equal(t, []control.Key{control.KeyD}, c.HeldKeys())
	assert.Equal(t, 0, rec.Count(control.ActionKeyTap, ""))
}

func TestController_ContinuousGesturesIgnoreCooldown(t *testing.T) {
	c, rec, clock := newTestController(t)

	_, err := c.Handle(gesture.ThumbsUp, nil)
	require.NoError(t, err)

	clock.advance(10 * time.Millisecond)
	_, err = c.Handle(gesture.Fist, nil)
	require.NoError(t, err)
	assert.True(t, c.Dragging())

	clock.advance(10 * time.Millisecond)
	_, err = c.Handle(gesture.OpenHand, palmAt(0.35, 0.5))
	require.NoError(t, err)
	assert.False(t, c.Dragging())
	assert.Equal(t, []control.Key{control.KeyA}, c.HeldKeys())
	assert.Equal(t, 1, rec.Count(control.ActionMouseUp, ""))
}

func TestController_SteeringReleasesOppositeKey(t *testing.T) {
	c, rec, clock := newTestController(t)

	_, err := c.Handle(gesture.OpenHand, palmAt(0.65, 0.5))
	require.NoError(t, err)
	assert.Equal(t, []control.Key{control.KeyD}, c.HeldKeys())
	assert.Equal(t, control.ModeMovement, c.Mode())

	clock.advance(33 * time.Millisecond)
	actions, err := c.Handle(gesture.OpenHand, palmAt(0.35, 0.5))
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, control.ActionKeyUp, actions[0].Kind)
	assert.Equal(t, control.KeyD, actions[0].Key)
	assert.Equal(t, control.ActionKeyDown, actions[1].Kind)
	assert.Equal(t, control.KeyA, actions[1].Key)

	assert.Equal(t, []control.Key{control.KeyA}, c.HeldKeys())
	assert.Equal(t, []control.Key{control.KeyA}, rec.Down())
}

func TestController_SteeringDiagonalAndDeadZone(t *testing.T) {
	c, _, clock := newTestController(t)

	_, err := c.Handle(gesture.OpenHand, palmAt(0.3, 0.3))
	require.NoError(t, err)
	assert.Equal(t, []control.Key{control.KeyW, control.KeyA}, c.HeldKeys())

	clock.advance(33 * time.Millisecond)
	_, err = c.Handle(gesture.OpenHand, palmAt(0.7, 0.7))
	require.NoError(t, err)
	assert.Equal(t, []control.Key{control.KeyS, control.KeyD}, c.HeldKeys())

	// Inside the dead zone everything is released
	clock.advance(33 * time.Millisecond)
	actions, err := c.Handle(gesture.OpenHand, palmAt(0.52, 0.47))
	require.NoError(t, err)
	assert.Len(t, actions, 2)
	assert.Empty(t, c.HeldKeys())
}

func TestController_SteadyHandEmitsNothing(t *testing.T) {
	c, rec, clock := newTestController(t)

	_, err := c.Handle(gesture.OpenHand, palmAt(0.65, 0.5))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		clock.advance(33 * time.Millisecond)
		actions, err := c.Handle(gesture.OpenHand, palmAt(0.66, 0.5))
		require.NoError(t, err)
		assert.Empty(t, actions)
	}
	assert.Equal(t, 1, rec.Count(control.ActionKeyDown, control.KeyD))
}

func TestController_FistDrag(t *testing.T) {
	c, rec, clock := newTestController(t)

	_, err := c.Handle(gesture.Fist, nil)
	require.NoError(t, err)
	clock.advance(33 * time.Millisecond)
	actions, err := c.Handle(gesture.Fist, nil)
	require.NoError(t, err)
	assert.Empty(t, actions)

	assert.Equal(t, 1, rec.Count(control.ActionMouseDown, ""))
	assert.True(t, c.Dragging())
	assert.Equal(t, control.ModeMouse, c.Mode())

	clock.advance(33 * time.Millisecond)
	_, err = c.Handle(gesture.OpenHand, palmAt(0.5, 0.5))
	require.NoError(t, err)

	assert.Equal(t, 1, rec.Count(control.ActionMouseUp, ""))
	assert.False(t, c.Dragging())
	assert.Equal(t, control.ModeMovement, c.Mode())
	assert.False(t, rec.MousePressed())
}

func TestController_FistReleasesMovementKeys(t *testing.T) {
	c, rec, clock := newTestController(t)

	_, err := c.Handle(gesture.OpenHand, palmAt(0.3, 0.3))
	require.NoError(t, err)
	require.Len(t, c.HeldKeys(), 2)

	clock.advance(33 * time.Millisecond)
	actions, err := c.Handle(gesture.Fist, nil)
	require.NoError(t, err)

	require.Len(t, actions, 3)
	assert.Equal(t, control.ActionKeyUp, actions[0].Kind)
	assert.Equal(t, control.KeyW, actions[0].Key)
	assert.Equal(t, control.ActionKeyUp, actions[1].Kind)
	assert.Equal(t, control.KeyA, actions[1].Key)
	assert.Equal(t, control.ActionMouseDown, actions[2].Kind)
	assert.Empty(t, c.HeldKeys())
	assert.Empty(t, rec.Down())
}

func TestController_OneShotResetsBeforeTap(t *testing.T) {
	c, _, clock := newTestController(t)

	_, err := c.Handle(gesture.Fist, nil)
	require.NoError(t, err)

	clock.advance(time.Second)
	actions, err := c.Handle(gesture.FiveFingers, nil)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, control.ActionMouseUp, actions[0].Kind)
	assert.Equal(t, control.ActionKeyTap, actions[1].Kind)
	assert.Equal(t, control.Key("i"), actions[1].Key)
	assert.False(t, c.Dragging())
}

func TestController_UnknownReleasesEverything(t *testing.T) {
	c, rec, clock := newTestController(t)

	_, err := c.Handle(gesture.OpenHand, palmAt(0.65, 0.5))
	require.NoError(t, err)
	clock.advance(33 * time.Millisecond)

	lastAction := c.State().LastAction
	_, err = c.Handle(gesture.Unknown, nil)
	require.NoError(t, err)

	assert.Empty(t, c.HeldKeys())
	assert.Empty(t, rec.Down())
	assert.Equal(t, lastAction, c.State().LastAction, "unknown must not refresh the cooldown")
}

func TestController_OpenHandWithoutLandmarksResets(t *testing.T) {
	c, _, clock := newTestController(t)

	_, err := c.Handle(gesture.Fist, nil)
	require.NoError(t, err)
	clock.advance(33 * time.Millisecond)

	actions, err := c.Handle(gesture.OpenHand, nil)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, control.ActionMouseUp, actions[0].Kind)
	assert.False(t, c.Dragging())
	assert.Empty(t, c.HeldKeys())
}

func TestController_UnboundGestureStillConsumesCooldown(t *testing.T) {
	rec := input.NewRecorder()
	cfg := control.DefaultConfig()
	delete(cfg.Bindings, gesture.ThumbsUp)
	c := control.New(cfg, rec)

	actions, err := c.Handle(gesture.ThumbsUp, nil)
	require.NoError(t, err)
	assert.Empty(t, actions)
	assert.Empty(t, rec.Calls())
	assert.False(t, c.State().LastAction.IsZero())
}

func TestController_ConfigIsCopied(t *testing.T) {
	cfg := control.DefaultConfig()
	c := control.New(cfg, input.NewRecorder())

	cfg.Bindings[gesture.Pointing] = "q"
	assert.Equal(t, control.Key("e"), c.Config().Bindings[gesture.Pointing])
}

func TestController_SetBindings(t *testing.T) {
	c, rec, _ := newTestController(t)

	bindings := map[gesture.Label]control.Key{gesture.Pointing: "f"}
	c.SetBindings(bindings)
	bindings[gesture.Pointing] = "g"

	_, err := c.Handle(gesture.Pointing, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Count(control.ActionKeyTap, "f"))
	_, ok := c.Config().Bindings[gesture.ThumbsUp]
	assert.False(t, ok)
}

func TestController_SinkFailureKeepsHeldSetAccurate(t *testing.T) {
	c, rec, clock := newTestController(t)

	_, err := c.Handle(gesture.OpenHand, palmAt(0.65, 0.5))
	require.NoError(t, err)

	boom := errors.New("injection failed")
	rec.SetError(boom)
	clock.advance(33 * time.Millisecond)

	_, err = c.Handle(gesture.OpenHand, palmAt(0.35, 0.5))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	// The release of d failed, so d is still considered held
	assert.Equal(t, []control.Key{control.KeyD}, c.HeldKeys())

	rec.SetError(nil)
	clock.advance(33 * time.Millisecond)
	_, err = c.Handle(gesture.OpenHand, palmAt(0.35, 0.5))
	require.NoError(t, err)
	assert.Equal(t, []control.Key{control.KeyA}, c.HeldKeys())
	assert.Equal(t, []control.Key{control.KeyA}, rec.Down())
}

func TestController_CloseDrainsOnce(t *testing.T) {
	c, rec, _ := newTestController(t)

	_, err := c.Handle(gesture.OpenHand, palmAt(0.3, 0.3))
	require.NoError(t, err)
	require.Len(t, c.HeldKeys(), 2)

	require.NoError(t, c.Close())
	assert.Empty(t, rec.Down())
	assert.Empty(t, c.HeldKeys())
	calls := len(rec.Calls())

	require.NoError(t, c.Close())
	assert.Len(t, rec.Calls(), calls)

	_, err = c.Handle(gesture.Fist, nil)
	assert.ErrorIs(t, err, control.ErrClosed)
	assert.False(t, rec.MousePressed())
}

func TestController_CloseReleasesDrag(t *testing.T) {
	c, rec, _ := newTestController(t)

	_, err := c.Handle(gesture.Fist, nil)
	require.NoError(t, err)
	require.True(t, rec.MousePressed())

	require.NoError(t, c.Close())
	assert.False(t, rec.MousePressed())
	assert.False(t, c.Dragging())
}

func TestController_CloseJoinsErrors(t *testing.T) {
	c, rec, _ := newTestController(t)

	_, err := c.Handle(gesture.OpenHand, palmAt(0.3, 0.3))
	require.NoError(t, err)

	boom := errors.New("stuck")
	rec.SetError(boom)
	err = c.Close()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "key up w")
	assert.Contains(t, err.Error(), "key up a")
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "key_tap(space)", control.Action{Kind: control.ActionKeyTap, Key: "space"}.String())
	assert.Equal(t, "mouse_down", control.Action{Kind: control.ActionMouseDown}.String())
}
