package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	// Now is always in UTC. Player records, token claims and rate windows
	// all compare against it.
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current UTC time
func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}
