package clock

import "time"

// Clock provides time operations that can be substituted in tests.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// New creates a new RealClock.
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time.
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// Fake is a settable clock for tests.
type Fake struct {
	Time time.Time
}

// NewFake creates a Fake pinned to the given instant.
func NewFake(t time.Time) *Fake {
	return &Fake{Time: t}
}

// Now returns the pinned instant.
func (f *Fake) Now() time.Time {
	return f.Time
}

// Advance moves the fake clock forward.
func (f *Fake) Advance(d time.Duration) {
	f.Time = f.Time.Add(d)
}
