package clock

import "time"

// Clock provides time operations that can be mocked for testing.
// Sleep is part of the interface because the round-result and final-screen
// reading pauses are observable protocol timing, not an implementation detail.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// Sleep blocks the calling goroutine for the given duration
func (c *RealClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
