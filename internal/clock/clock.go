// Package clock provides the simulated system time for the historical
// terminal session. It is an explicit state object: construct one per
// deployment and pass it to whichever components need the virtual "now".
package clock

import "time"

// DefaultEpoch is where the simulated system boots: just before two in the
// morning on December 11th, 1995.
var DefaultEpoch = time.Date(1995, time.December, 11, 1, 45, 0, 0, time.UTC)

// Clock tracks simulated system time. It is not safe for concurrent use;
// each session owns its own instance.
type Clock struct {
	current time.Time
	start   time.Time
}

// New creates a clock starting at DefaultEpoch.
func New() *Clock {
	return NewAt(DefaultEpoch)
}

// NewAt creates a clock starting at the given instant.
func NewAt(start time.Time) *Clock {
	return &Clock{current: start, start: start}
}

// Now returns the current simulated time.
func (c *Clock) Now() time.Time {
	return c.current
}

// Start returns the instant the simulated system booted.
func (c *Clock) Start() time.Time {
	return c.start
}

// Set moves the simulated time to a specific instant.
func (c *Clock) Set(t time.Time) {
	c.current = t
}

// Advance moves the simulated time forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
