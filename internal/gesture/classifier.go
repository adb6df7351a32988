package gesture

import (
	"github.com/ayusman/mudra/internal/detector"
)

// Finger indices into the per-finger landmark tables.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
	numFingers
)

var (
	fingerTips = [numFingers]int{detector.ThumbTip, detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}
	fingerDIPs = [numFingers]int{detector.ThumbIP, detector.IndexDIP, detector.MiddleDIP, detector.RingDIP, detector.PinkyDIP}
	fingerPIPs = [numFingers]int{detector.ThumbMCP, detector.IndexPIP, detector.MiddlePIP, detector.RingPIP, detector.PinkyPIP}
	fingerMCPs = [numFingers]int{detector.ThumbCMC, detector.IndexMCP, detector.MiddleMCP, detector.RingMCP, detector.PinkyMCP}
)

// Classifier maps a landmark set to a gesture label.
// It holds no state and is safe for concurrent use.
type Classifier struct{}

// NewClassifier creates a new Classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify returns the gesture for a set of 21 normalized landmarks.
//
// Rules, first match wins:
//  1. no finger extended          -> fist
//  2. only the thumb              -> thumbs_up
//  3. only the index finger       -> pointing
//  4. index and middle only       -> two_fingers
//  5. all five fingers            -> open_hand
//  6. anything else               -> unknown
//
// Malformed input returns Unknown with an error wrapping detector.ErrInvalidLandmarks.
func (c *Classifier) Classify(points []detector.Point3D) (Label, error) {
	if err := detector.Validate(points); err != nil {
		return Unknown, err
	}

	fingers := extendedFingers(points)
	count := 0
	for _, up := range fingers {
		if up {
			count++
		}
	}

	switch count {
	case 0:
		return Fist, nil
	case 1:
		switch {
		case fingers[Thumb]:
			return ThumbsUp, nil
		case fingers[Index]:
			return Pointing, nil
		}
		return Unknown, nil
	case 2:
		if fingers[Index] && fingers[Middle] {
			return TwoFingers, nil
		}
		return Unknown, nil
	case numFingers:
		return OpenHand, nil
	}
	return Unknown, nil
}

// FingerStates reports which fingers are extended, thumb first.
func (c *Classifier) FingerStates(points []detector.Point3D) ([numFingers]bool, error) {
	if err := detector.Validate(points); err != nil {
		return [numFingers]bool{}, err
	}
	return extendedFingers(points), nil
}

// CountExtended returns the number of extended fingers.
func (c *Classifier) CountExtended(points []detector.Point3D) (int, error) {
	fingers, err := c.FingerStates(points)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, up := range fingers {
		if up {
			n++
		}
	}
	return n, nil
}

func extendedFingers(points []detector.Point3D) [numFingers]bool {
	var out [numFingers]bool
	for f := 0; f < numFingers; f++ {
		out[f] = isExtended(points, f)
	}
	return out
}

// isExtended tests a single finger. The thumb swings sideways, so it is
// judged by distance from the wrist; the other fingers by image height
// (smaller y is higher).
func isExtended(points []detector.Point3D, finger int) bool {
	tip := points[fingerTips[finger]]

	if finger == Thumb {
		wrist := points[detector.Wrist]
		ip := points[fingerDIPs[Thumb]]
		return detector.Distance2D(tip, wrist) > detector.Distance2D(ip, wrist)
	}

	dip := points[fingerDIPs[finger]]
	pip := points[fingerPIPs[finger]]
	mcp := points[fingerMCPs[finger]]
	return tip.Y < dip.Y && tip.Y < pip.Y && pip.Y < mcp.Y
}
