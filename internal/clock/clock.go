package clock

import "time"

// Clock provides the current time so storage timestamps can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time in UTC.
func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a Clock frozen at a point in time until moved.
type Fixed struct {
	CurrentTime time.Time
}

var _ Clock = (*Fixed)(nil)

// NewFixed creates a Fixed clock set to t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{CurrentTime: t}
}

func (c *Fixed) Now() time.Time {
	return c.CurrentTime
}

// Advance moves the clock forward by d.
func (c *Fixed) Advance(d time.Duration) {
	c.CurrentTime = c.CurrentTime.Add(d)
}
