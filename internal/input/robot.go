package input

import (
	"github.com/go-vgo/robotgo"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/control"
)

var log = logrus.WithField("component", "input")

// RobotSink injects keyboard and mouse events into the focused window.
type RobotSink struct{}

// NewRobotSink creates a RobotSink.
func NewRobotSink() *RobotSink {
	return &RobotSink{}
}

// KeyDown presses and holds a key.
func (s *RobotSink) KeyDown(key control.Key) error {
	return robotgo.KeyToggle(string(key), "down")
}

// KeyUp releases a held key.
func (s *RobotSink) KeyUp(key control.Key) error {
	return robotgo.KeyToggle(string(key), "up")
}

// KeyTap presses and releases a key.
func (s *RobotSink) KeyTap(key control.Key) error {
	return robotgo.KeyTap(string(key))
}

// MouseDown presses the left button wherever the cursor currently is.
func (s *RobotSink) MouseDown() error {
	x, y := robotgo.Location()
	log.WithFields(logrus.Fields{"x": x, "y": y}).Debug("mouse down")
	return robotgo.Toggle("left")
}

// MouseUp releases the left button.
func (s *RobotSink) MouseUp() error {
	return robotgo.Toggle("left", "up")
}
