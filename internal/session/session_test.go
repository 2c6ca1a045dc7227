package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/webresume/internal/chat"
)

type nopReplier struct{}

func (nopReplier) Reply(context.Context, string, []chat.Message) (string, error) { return "ok", nil }

func TestLookupCreatesAndReuses(t *testing.T) {
	r := NewRegistry(time.Hour, nopReplier{}, "persona")

	s, created := r.Lookup("")
	require.True(t, created)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 0, s.Carousel.Index())

	s.Carousel.Next()
	again, created := r.Lookup(s.ID)
	assert.False(t, created)
	assert.Same(t, s, again)
	assert.Equal(t, 1, again.Carousel.Index())

	_, created = r.Lookup("unknown")
	assert.True(t, created)
	assert.Equal(t, 2, r.Len())
}

func TestSessionsExpire(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(time.Hour, nopReplier{}, "persona")
	r.now = func() time.Time { return now }

	s, _ := r.Lookup("")
	old, _ := r.Lookup("")

	now = now.Add(30 * time.Minute)
	_, created := r.Lookup(s.ID)
	assert.False(t, created)

	now = now.Add(45 * time.Minute)
	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Len())

	_, created = r.Lookup(old.ID)
	assert.True(t, created)
}

func TestFindDoesNotCreate(t *testing.T) {
	r := NewRegistry(time.Hour, nopReplier{}, "persona")

	for range 1000 {
		_, ok := r.Find("")
		assert.False(t, ok)
	}
	assert.Equal(t, 0, r.Len())

	s, _ := r.Lookup("")
	found, ok := r.Find(s.ID)
	require.True(t, ok)
	assert.Same(t, s, found)
}

func TestLimitEvictsLeastRecentlySeen(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(time.Hour, nopReplier{}, "persona")
	r.now = func() time.Time { return now }
	r.SetLimit(3)

	var ids []string
	for range 3 {
		s, _ := r.Lookup("")
		ids = append(ids, s.ID)
		now = now.Add(time.Second)
	}
	// Touch the first so the second becomes the oldest.
	_, ok := r.Find(ids[0])
	require.True(t, ok)

	now = now.Add(time.Second)
	r.Lookup("")
	assert.Equal(t, 3, r.Len())

	_, ok = r.Find(ids[1])
	assert.False(t, ok)
	_, ok = r.Find(ids[0])
	assert.True(t, ok)
	_, ok = r.Find(ids[2])
	assert.True(t, ok)

	for range 100 {
		now = now.Add(time.Second)
		r.Lookup("")
	}
	assert.Equal(t, 3, r.Len())
}
