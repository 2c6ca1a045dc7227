package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Zachkp/webresume/internal/carousel"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		start Sample
		end   Sample
		want  Direction
	}{
		{name: "left swipe", start: Sample{X: 160}, end: Sample{X: 100}, want: Next},
		{name: "right swipe", start: Sample{X: 100}, end: Sample{X: 160}, want: Previous},
		{name: "below threshold", start: Sample{X: 130}, end: Sample{X: 100}, want: None},
		{name: "exactly threshold", start: Sample{X: 150}, end: Sample{X: 100}, want: None},
		{name: "vertical dominant", start: Sample{X: 110, Y: 160}, end: Sample{X: 100, Y: 100}, want: None},
		{name: "diagonal tie", start: Sample{X: 200, Y: 200}, end: Sample{X: 100, Y: 100}, want: None},
		{name: "mostly horizontal", start: Sample{X: 200, Y: 130}, end: Sample{X: 100, Y: 100}, want: Next},
		{name: "no movement", start: Sample{X: 5, Y: 5}, end: Sample{X: 5, Y: 5}, want: None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.start, tt.end))
		})
	}
}

func TestApply(t *testing.T) {
	c := carousel.New(10)

	Apply(Next, c)
	assert.Equal(t, 1, c.Index())

	Apply(None, c)
	assert.Equal(t, 1, c.Index())

	Apply(Previous, c)
	assert.Equal(t, 0, c.Index())

	Apply(Previous, c)
	assert.Equal(t, 0, c.Index())
}

func TestSwipeEquivalentToNext(t *testing.T) {
	swiped := carousel.New(10)
	Apply(Resolve(Sample{X: 260}, Sample{X: 200}), swiped)

	stepped := carousel.New(10)
	stepped.Next()

	assert.Equal(t, stepped.Index(), swiped.Index())
}

func TestTrackerUsesLastMove(t *testing.T) {
	var tr Tracker
	tr.Start(Sample{X: 300, Y: 100})
	tr.Move(Sample{X: 280, Y: 100})
	tr.Move(Sample{X: 200, Y: 105})

	assert.Equal(t, Next, tr.End())
}

func TestTrackerWithoutMoveIsNone(t *testing.T) {
	var tr Tracker

	// A completed swipe must not leave its end sample behind for a later tap.
	tr.Start(Sample{X: 300})
	tr.Move(Sample{X: 100})
	assert.Equal(t, Next, tr.End())

	tr.Start(Sample{X: 300})
	assert.Equal(t, None, tr.End())
}

func TestTrackerMoveWithoutStartIgnored(t *testing.T) {
	var tr Tracker
	tr.Move(Sample{X: 500})
	assert.Equal(t, None, tr.End())
}

func TestTrackerRestart(t *testing.T) {
	var tr Tracker
	tr.Start(Sample{X: 0})
	tr.Move(Sample{X: 200})
	tr.Start(Sample{X: 400})
	tr.Move(Sample{X: 300})

	assert.Equal(t, Next, tr.End())
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "next", Next.String())
	assert.Equal(t, "previous", Previous.String())
	assert.Equal(t, "none", None.String())
}
