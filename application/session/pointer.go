package session

import (
	"sync"

	"mindmapx/domain/core/valueobjects"
)

// PointerKind is informational; mouse, touch and pen are handled identically.
type PointerKind string

const (
	PointerMouse PointerKind = "mouse"
	PointerTouch PointerKind = "touch"
	PointerPen   PointerKind = "pen"
)

// PointerEvent is a single pointer sample in screen coordinates. Origin is
// the top-left of the canvas element in the same space.
type PointerEvent struct {
	ClientX float64     `json:"clientX"`
	ClientY float64     `json:"clientY"`
	OriginX float64     `json:"originX"`
	OriginY float64     `json:"originY"`
	Kind    PointerKind `json:"kind,omitempty"`
}

// Client returns the pointer position
func (e PointerEvent) Client() valueobjects.Position {
	return valueobjects.MustPosition(e.ClientX, e.ClientY)
}

// Origin returns the canvas origin
func (e PointerEvent) Origin() valueobjects.Position {
	return valueobjects.MustPosition(e.OriginX, e.OriginY)
}

// Valid reports whether every coordinate is finite
func (e PointerEvent) Valid() bool {
	_, err1 := valueobjects.NewPosition(e.ClientX, e.ClientY)
	_, err2 := valueobjects.NewPosition(e.OriginX, e.OriginY)
	return err1 == nil && err2 == nil
}

// PointerTracker hands out move/release subscriptions for the duration of a
// drag. Active() must be zero whenever no drag is in progress.
type PointerTracker struct {
	mu     sync.Mutex
	active int
	issued int
}

// NewPointerTracker creates an empty tracker
func NewPointerTracker() *PointerTracker {
	return &PointerTracker{}
}

// Acquire opens a subscription for a drag of nodeID
func (t *PointerTracker) Acquire(nodeID valueobjects.NodeID) *Subscription {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active++
	t.issued++
	return &Subscription{tracker: t, nodeID: nodeID}
}

// Active returns the number of unreleased subscriptions
func (t *PointerTracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Issued returns the number of subscriptions ever acquired
func (t *PointerTracker) Issued() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.issued
}

func (t *PointerTracker) release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active--
}

// Subscription is held while a node is being dragged.
type Subscription struct {
	tracker  *PointerTracker
	nodeID   valueobjects.NodeID
	once     sync.Once
	released bool
}

// NodeID returns the node the subscription was opened for
func (s *Subscription) NodeID() valueobjects.NodeID {
	return s.nodeID
}

// Release returns the subscription; later calls do nothing.
func (s *Subscription) Release() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.released = true
		s.tracker.release()
	})
}

// Released reports whether Release has run
func (s *Subscription) Released() bool {
	return s != nil && s.released
}
