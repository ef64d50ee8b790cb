package clock

import "time"

// Clock abstracts time so services can pin "now" in tests
type Clock interface {
	Now() time.Time
}

// DefaultClock implements the Clock interface using the system clock
type DefaultClock struct{}

// Now returns the current time
func (c *DefaultClock) Now() time.Time {
	return time.Now()
}

// Fixed is a Clock pinned to a settable instant, for tests
type Fixed struct {
	Time time.Time
}

// Now returns the pinned time
func (c *Fixed) Now() time.Time {
	return c.Time
}

// Advance moves the pinned time forward
func (c *Fixed) Advance(d time.Duration) {
	c.Time = c.Time.Add(d)
}
