package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu       sync.Mutex
	hands    []HandLandmarks
	sequence [][]HandLandmarks
	err      error
	calls    int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by every Detect call.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
	m.sequence = nil
}

// SetSequence makes Detect return one entry per call, in order.
// Once the sequence is exhausted Detect reports no hands.
func (m *MockDetector) SetSequence(frames [][]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = frames
	m.hands = nil
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.sequence != nil {
		if len(m.sequence) == 0 {
			return nil, nil
		}
		next := m.sequence[0]
		m.sequence = m.sequence[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// FistLandmarks returns a preset HandLandmarks with every finger curled and
// the thumb tucked across the palm.
func FistLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb folded: the tip sits closer to the wrist than the IP joint
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76, Z: 0.0}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.70, Z: -0.01}
	landmarks.Points[ThumbIP] = Point3D{X: 0.57, Y: 0.64, Z: -0.02}
	landmarks.Points[ThumbTip] = Point3D{X: 0.53, Y: 0.68, Z: -0.03}

	setCurled(&landmarks)
	return landmarks
}

// ThumbsUpLandmarks returns a preset HandLandmarks representing a thumbs up gesture.
// The thumb is extended upward while other fingers are curled.
func ThumbsUpLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended upward (pointing up, Y decreases going up)
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.0}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.65, Z: 0.0}
	landmarks.Points[ThumbIP] = Point3D{X: 0.58, Y: 0.50, Z: 0.0}
	landmarks.Points[ThumbTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	setCurled(&landmarks)
	return landmarks
}

// PointingLandmarks returns a fist with only the index finger raised.
func PointingLandmarks() HandLandmarks {
	landmarks := FistLandmarks()
	setIndexExtended(&landmarks)
	return landmarks
}

// TwoFingersLandmarks returns a fist with the index and middle fingers raised.
func TwoFingersLandmarks() HandLandmarks {
	landmarks := FistLandmarks()
	setIndexExtended(&landmarks)
	setMiddleExtended(&landmarks)
	return landmarks
}

// PinkyOnlyLandmarks returns a fist with only the pinky raised, a single-finger
// pose that maps to no action.
func PinkyOnlyLandmarks() HandLandmarks {
	landmarks := FistLandmarks()
	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	landmarks.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}
	return landmarks
}

// OpenPalmLandmarks returns a preset HandLandmarks representing an open palm gesture.
// All fingers are extended outward.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended to the side
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	setIndexExtended(&landmarks)
	setMiddleExtended(&landmarks)

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	landmarks.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	landmarks.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	landmarks.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return landmarks
}

// setCurled folds index through pinky back toward the palm.
func setCurled(l *HandLandmarks) {
	l.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.70, Z: -0.02}
	l.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.68, Z: -0.05}
	l.Points[IndexDIP] = Point3D{X: 0.52, Y: 0.70, Z: -0.04}
	l.Points[IndexTip] = Point3D{X: 0.50, Y: 0.72, Z: -0.02}

	l.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.68, Z: -0.02}
	l.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.66, Z: -0.05}
	l.Points[MiddleDIP] = Point3D{X: 0.47, Y: 0.68, Z: -0.04}
	l.Points[MiddleTip] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}

	l.Points[RingMCP] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}
	l.Points[RingPIP] = Point3D{X: 0.45, Y: 0.68, Z: -0.05}
	l.Points[RingDIP] = Point3D{X: 0.42, Y: 0.70, Z: -0.04}
	l.Points[RingTip] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}

	l.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}
	l.Points[PinkyPIP] = Point3D{X: 0.40, Y: 0.70, Z: -0.05}
	l.Points[PinkyDIP] = Point3D{X: 0.37, Y: 0.72, Z: -0.04}
	l.Points[PinkyTip] = Point3D{X: 0.35, Y: 0.74, Z: -0.02}
}

func setIndexExtended(l *HandLandmarks) {
	l.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	l.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	l.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	l.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}
}

func setMiddleExtended(l *HandLandmarks) {
	l.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	l.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	l.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	l.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}
}
