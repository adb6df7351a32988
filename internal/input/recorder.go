package input

import (
	"sync"

	"github.com/ayusman/mudra/internal/control"
)

// Call is one recorded sink invocation.
type Call struct {
	Kind control.ActionKind
	Key  control.Key
}

// Recorder is an InputSink that records calls instead of injecting them.
// It is used by tests and by dry runs.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
	down  map[control.Key]bool
	mouse bool
	err   error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{down: make(map[control.Key]bool)}
}

// SetError makes every following call fail with err. Pass nil to clear it.
func (r *Recorder) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *Recorder) add(kind control.ActionKind, key control.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}
	r.calls = append(r.calls, Call{Kind: kind, Key: key})

	switch kind {
	case control.ActionKeyDown:
		r.down[key] = true
	case control.ActionKeyUp:
		delete(r.down, key)
	case control.ActionMouseDown:
		r.mouse = true
	case control.ActionMouseUp:
		r.mouse = false
	}
	return nil
}

// KeyDown records a key press.
func (r *Recorder) KeyDown(key control.Key) error { return r.add(control.ActionKeyDown, key) }

// KeyUp records a key release.
func (r *Recorder) KeyUp(key control.Key) error { return r.add(control.ActionKeyUp, key) }

// KeyTap records a tap.
func (r *Recorder) KeyTap(key control.Key) error { return r.add(control.ActionKeyTap, key) }

// MouseDown records a left button press.
func (r *Recorder) MouseDown() error { return r.add(control.ActionMouseDown, "") }

// MouseUp records a left button release.
func (r *Recorder) MouseUp() error { return r.add(control.ActionMouseUp, "") }

// Calls returns a copy of every recorded call.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Count returns how many calls of the given kind (and key, if non-empty) were made.
func (r *Recorder) Count(kind control.ActionKind, key control.Key) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Kind == kind && (key == "" || c.Key == key) {
			n++
		}
	}
	return n
}

// Down returns the keys the recorder considers pressed, in w, a, s, d order
// followed by any other key.
func (r *Recorder) Down() []control.Key {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keys []control.Key
	for _, k := range control.MovementKeys {
		if r.down[k] {
			keys = append(keys, k)
		}
	}
	for k := range r.down {
		if k != control.KeyW && k != control.KeyA && k != control.KeyS && k != control.KeyD {
			keys = append(keys, k)
		}
	}
	return keys
}

// MousePressed reports whether the left button is down.
func (r *Recorder) MousePressed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mouse
}

// Reset forgets all recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	r.down = make(map[control.Key]bool)
	r.mouse = false
}
