// Package session keeps per-visitor state for the server-rendered site: the
// carousel position and the chat conversation.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Zachkp/webresume/internal/carousel"
	"github.com/Zachkp/webresume/internal/chat"
	"github.com/Zachkp/webresume/internal/section"
)

// CookieName is the cookie holding the session id.
const CookieName = "resume_session"

// DefaultLimit is the number of live sessions kept before the least recently
// seen one is evicted.
const DefaultLimit = 10000

// Session is one visitor's state.
type Session struct {
	ID       string
	Carousel *carousel.Controller
	Chat     *chat.Conversation

	lastSeen time.Time
}

// Registry owns all live sessions.
type Registry struct {
	ttl     time.Duration
	limit   int
	replier chat.Replier
	persona string
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates a registry whose sessions expire after ttl of
// inactivity. Conversations reply through replier.
func NewRegistry(ttl time.Duration, replier chat.Replier, persona string) *Registry {
	return &Registry{
		ttl:      ttl,
		limit:    DefaultLimit,
		replier:  replier,
		persona:  persona,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// SetLimit caps the number of live sessions. A non-positive n restores
// DefaultLimit.
func (r *Registry) SetLimit(n int) {
	if n <= 0 {
		n = DefaultLimit
	}
	r.mu.Lock()
	r.limit = n
	r.mu.Unlock()
}

// Find returns the live session for id without creating one.
func (r *Registry) Find(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	s, ok := r.sessions[id]
	if !ok || now.Sub(s.lastSeen) >= r.ttl {
		return nil, false
	}
	s.lastSeen = now
	return s, true
}

// Lookup returns the session for id, creating a new one when id is unknown
// or expired. created reports whether a new session was made, in which case
// its ID differs from id.
func (r *Registry) Lookup(id string) (s *Session, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if s, ok := r.sessions[id]; ok && now.Sub(s.lastSeen) < r.ttl {
		s.lastSeen = now
		return s, false
	}
	delete(r.sessions, id)
	for len(r.sessions) >= r.limit {
		r.evictOldest()
	}

	s = &Session{
		ID:       uuid.NewString(),
		Carousel: carousel.New(section.Len()),
		Chat:     chat.NewConversation(r.replier, r.persona),
		lastSeen: now,
	}
	r.sessions[s.ID] = s
	return s, true
}

func (r *Registry) evictOldest() {
	var oldest *Session
	for _, s := range r.sessions {
		if oldest == nil || s.lastSeen.Before(oldest.lastSeen) {
			oldest = s
		}
	}
	if oldest != nil {
		delete(r.sessions, oldest.ID)
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	n := 0
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) >= r.ttl {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
