// Package gesture turns touch or drag coordinates into a left/right
// navigation intent.
package gesture

import (
	"math"
	"sync"

	"github.com/Zachkp/webresume/internal/carousel"
)

// MinDistance is the horizontal travel, in sample units, a gesture must
// exceed to count as a swipe.
const MinDistance = 50

// Direction is the navigation intent of a resolved gesture.
type Direction int

const (
	None Direction = iota
	Next
	Previous
)

func (d Direction) String() string {
	switch d {
	case Next:
		return "next"
	case Previous:
		return "previous"
	default:
		return "none"
	}
}

// Sample is one screen coordinate.
type Sample struct {
	X float64 `json:"x" form:"x"`
	Y float64 `json:"y" form:"y"`
}

// Resolve classifies the gesture from start to end. Vertical-dominant and
// short gestures resolve to None. A finger moving left (start.X > end.X)
// means Next.
func Resolve(start, end Sample) Direction {
	dx := start.X - end.X
	dy := start.Y - end.Y

	if math.Abs(dx) <= math.Abs(dy) {
		return None
	}
	if math.Abs(dx) <= MinDistance {
		return None
	}
	if dx > 0 {
		return Next
	}
	return Previous
}

// Apply performs d on nav.
func Apply(d Direction, nav carousel.Navigator) {
	switch d {
	case Next:
		nav.Next()
	case Previous:
		nav.Previous()
	}
}

// Tracker collects the samples of one gesture at a time. The decision is
// made once, on End, from the start sample and the last move sample.
type Tracker struct {
	mu      sync.Mutex
	active  bool
	moved   bool
	start   Sample
	current Sample
}

// Start begins a gesture at s, discarding any unfinished one.
func (t *Tracker) Start(s Sample) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = true
	t.moved = false
	t.start = s
	t.current = s
}

// Move records the latest position of an active gesture.
func (t *Tracker) Move(s Sample) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		return
	}
	t.moved = true
	t.current = s
}

// End resolves the active gesture and resets the tracker. A gesture without
// any move sample resolves to None.
func (t *Tracker) End() Direction {
	t.mu.Lock()
	defer t.mu.Unlock()

	d := None
	if t.active && t.moved {
		d = Resolve(t.start, t.current)
	}
	t.active = false
	t.moved = false
	t.start = Sample{}
	t.current = Sample{}
	return d
}
