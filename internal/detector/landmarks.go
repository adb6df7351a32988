// Package detector provides hand landmark sources and the landmark data model.
package detector

import (
	"errors"
	"fmt"
	"math"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// ErrInvalidLandmarks is returned for landmark sets that do not hold exactly
// NumLandmarks finite points inside the normalized [0,1] image square.
var ErrInvalidLandmarks = errors.New("invalid landmarks")

// Point3D is a landmark position. X and Y are normalized image coordinates,
// Z is relative depth and is not used for classification.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// NewHandLandmarks builds a HandLandmarks from a raw point slice.
// The slice must contain exactly NumLandmarks valid points.
func NewHandLandmarks(points []Point3D, handedness string, score float64) (HandLandmarks, error) {
	h := HandLandmarks{Handedness: handedness, Score: score}
	if err := Validate(points); err != nil {
		return h, err
	}
	copy(h.Points[:], points)
	return h, nil
}

// Validate checks that points is a complete, in-range landmark set.
func Validate(points []Point3D) error {
	if len(points) != NumLandmarks {
		return fmt.Errorf("%w: got %d points, want %d", ErrInvalidLandmarks, len(points), NumLandmarks)
	}
	for i, p := range points {
		if !inUnitRange(p.X) || !inUnitRange(p.Y) {
			return fmt.Errorf("%w: point %d (%.3f, %.3f) outside [0,1]", ErrInvalidLandmarks, i, p.X, p.Y)
		}
	}
	return nil
}

func inUnitRange(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// Distance2D calculates the Euclidean distance between two points in the image plane.
func Distance2D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Center returns the mean x and y over all points.
// An empty slice yields (0, 0).
func Center(points []Point3D) (x, y float64) {
	if len(points) == 0 {
		return 0, 0
	}
	for _, p := range points {
		x += p.X
		y += p.Y
	}
	n := float64(len(points))
	return x / n, y / n
}

// Translate returns a copy of the hand shifted by (dx, dy) in image space.
func (h HandLandmarks) Translate(dx, dy float64) HandLandmarks {
	out := h
	for i := range out.Points {
		out.Points[i].X += dx
		out.Points[i].Y += dy
	}
	return out
}

// MoveCenterTo returns a copy of the hand translated so that its center lands on (x, y).
func (h HandLandmarks) MoveCenterTo(x, y float64) HandLandmarks {
	cx, cy := Center(h.Points[:])
	return h.Translate(x-cx, y-cy)
}
