// Package carousel tracks which resume section is visible and applies
// bounds-checked navigation to it.
package carousel

import (
	"sync"
)

// Navigator is the handle given to anything that drives the carousel: the
// navigation bar, dot indicators and the swipe surface.
type Navigator interface {
	GoTo(index int)
	Next()
	Previous()
}

// Controller holds the current section index. The index always satisfies
// 0 <= index < size.
type Controller struct {
	mu          sync.Mutex
	size        int
	index       int
	nextID      int
	subscribers map[int]func(index int)
}

// New returns a controller over size sections positioned at index 0.
// A size below 1 is treated as 1.
func New(size int) *Controller {
	if size < 1 {
		size = 1
	}
	return &Controller{
		size:        size,
		subscribers: make(map[int]func(int)),
	}
}

// Index returns the current section index.
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Len returns the number of sections the controller navigates.
func (c *Controller) Len() int {
	return c.size
}

// GoTo moves to index. Out-of-range requests are ignored.
func (c *Controller) GoTo(index int) {
	c.mu.Lock()
	if index < 0 || index >= c.size {
		c.mu.Unlock()
		return
	}
	c.set(index)
}

// Next advances one section. It does not wrap.
func (c *Controller) Next() {
	c.mu.Lock()
	if c.index >= c.size-1 {
		c.mu.Unlock()
		return
	}
	c.set(c.index + 1)
}

// Previous goes back one section. It does not wrap.
func (c *Controller) Previous() {
	c.mu.Lock()
	if c.index <= 0 {
		c.mu.Unlock()
		return
	}
	c.set(c.index - 1)
}

// Subscribe registers fn to be called with the new index after every change.
// The returned func removes the subscription.
func (c *Controller) Subscribe(fn func(index int)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

// set stores index and notifies subscribers. Called with c.mu held; releases it.
func (c *Controller) set(index int) {
	if index == c.index {
		c.mu.Unlock()
		return
	}
	c.index = index

	fns := make([]func(int), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(index)
	}
}
