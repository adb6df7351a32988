package detector

import "gocv.io/x/gocv"

// Detector finds hands in camera frames.
type Detector interface {
	// Detect returns the hands found in frame, best first. No hands is an
	// empty result, not an error.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)
	Close() error
}

// Config tunes the landmark model.
type Config struct {
	MaxHands        int
	MinConfidence   float64 // detection, 0..1
	MinTrackingConf float64 // tracking between frames, 0..1

	// ScriptPath overrides the lookup of mediapipe_service.py.
	ScriptPath string
}

// DefaultConfig returns a Config tuned for single-hand game control.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.7,
		MinTrackingConf: 0.7,
	}
}

// FirstHand returns the first detected hand, if any.
func FirstHand(hands []HandLandmarks) (*HandLandmarks, bool) {
	if len(hands) == 0 {
		return nil, false
	}
	return &hands[0], true
}
