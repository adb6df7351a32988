package gesture

// DefaultStabilityFrames is the number of agreeing frames required by default.
const DefaultStabilityFrames = 2

// Stabilizer debounces per-frame labels. A label is passed through only after
// it has been seen on Threshold consecutive frames; until then None is emitted.
//
// A Stabilizer is not safe for concurrent use.
type Stabilizer struct {
	threshold int
	previous  Label
	run       int
}

// NewStabilizer creates a Stabilizer. Thresholds below 1 are treated as 1.
func NewStabilizer(threshold int) *Stabilizer {
	if threshold < 1 {
		threshold = 1
	}
	return &Stabilizer{
		threshold: threshold,
		previous:  None,
	}
}

// Update feeds one raw label and returns the stable label for this frame.
func (s *Stabilizer) Update(raw Label) Label {
	if raw == s.previous {
		s.run++
	} else {
		s.previous = raw
		s.run = 1
	}

	if s.run >= s.threshold {
		return raw
	}
	return None
}

// Reset forgets the current run.
func (s *Stabilizer) Reset() {
	s.previous = None
	s.run = 0
}

// Threshold returns the configured number of agreeing frames.
func (s *Stabilizer) Threshold() int {
	return s.threshold
}

// Run returns the length of the current run of identical labels.
func (s *Stabilizer) Run() int {
	return s.run
}
