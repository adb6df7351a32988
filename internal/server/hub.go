package server

import (
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/gesture"
)

// Snapshot is the controller state published after each frame.
type Snapshot struct {
	Enabled      bool             `json:"enabled"`
	HandDetected bool             `json:"hand_detected"`
	RawGesture   gesture.Label    `json:"raw_gesture"`
	Gesture      gesture.Label    `json:"gesture"`
	Mode         control.Mode     `json:"mode"`
	HeldKeys     []control.Key    `json:"held_keys"`
	Dragging     bool             `json:"dragging"`
	LastAction   time.Time        `json:"last_action"`
	Actions      []control.Action `json:"actions,omitempty"`
	Frame        uint64           `json:"frame"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// Hub hands the frame loop's state to HTTP handlers and the tray. The frame
// loop is the only publisher; any number of goroutines may read.
type Hub struct {
	mu       sync.RWMutex
	snapshot Snapshot
	jpeg     []byte
	frameSeq uint64
	subs     map[chan Snapshot]struct{}
	viewers  int
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Snapshot]struct{})}
}

// Publish replaces the current snapshot and notifies subscribers. Slow
// subscribers only ever see the latest snapshot.
func (h *Hub) Publish(s Snapshot) {
	s.HeldKeys = append([]control.Key(nil), s.HeldKeys...)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.snapshot = s
	for ch := range h.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

// Snapshot returns the latest published snapshot.
func (h *Hub) Snapshot() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s := h.snapshot
	s.HeldKeys = append([]control.Key(nil), s.HeldKeys...)
	return s
}

// Subscribe returns a channel that receives every published snapshot, and a
// function that unsubscribes it.
func (h *Hub) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
		})
	}
}

// SetFrame stores the latest JPEG-encoded camera frame.
func (h *Hub) SetFrame(jpeg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.jpeg = jpeg
	h.frameSeq++
}

// Frame returns the latest JPEG frame and its sequence number.
func (h *Hub) Frame() ([]byte, uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.jpeg, h.frameSeq
}

// HasViewers reports whether any stream client wants frames.
func (h *Hub) HasViewers() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.viewers > 0
}

func (h *Hub) addViewer() {
	h.mu.Lock()
	h.viewers++
	h.mu.Unlock()
}

func (h *Hub) removeViewer() {
	h.mu.Lock()
	h.viewers--
	h.mu.Unlock()
}
