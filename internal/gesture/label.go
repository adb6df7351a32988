// Package gesture classifies hand landmarks into discrete gesture labels and
// debounces the per-frame result.
package gesture

import "fmt"

// Label is a discrete classification of a hand pose.
type Label string

const (
	Fist        Label = "fist"
	OpenHand    Label = "open_hand"
	ThumbsUp    Label = "thumbs_up"
	TwoFingers  Label = "two_fingers"
	Pointing    Label = "pointing"
	FiveFingers Label = "five_fingers"
	None        Label = "none"
	Unknown     Label = "unknown"
)

// Labels lists every label in a stable order.
var Labels = []Label{Fist, OpenHand, ThumbsUp, TwoFingers, Pointing, FiveFingers, None, Unknown}

// OneShot reports whether the label triggers a single key tap rather than a
// continuous control.
func (l Label) OneShot() bool {
	switch l {
	case ThumbsUp, TwoFingers, Pointing, FiveFingers:
		return true
	}
	return false
}

// Continuous reports whether the label drives held keys or a mouse drag.
func (l Label) Continuous() bool {
	return l == Fist || l == OpenHand
}

// Recognized reports whether the label maps to an action at all.
func (l Label) Recognized() bool {
	return l.OneShot() || l.Continuous()
}

// ParseLabel converts a string to a Label.
func ParseLabel(s string) (Label, error) {
	for _, l := range Labels {
		if string(l) == s {
			return l, nil
		}
	}
	return Unknown, fmt.Errorf("unknown gesture %q", s)
}

// ActionLabels lists the one-shot labels that carry a key binding.
func ActionLabels() []Label {
	return []Label{ThumbsUp, TwoFingers, Pointing, FiveFingers}
}
