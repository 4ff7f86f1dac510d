package engine

import "time"

// Clock supplies the absolute monotonic time base for all scheduling decisions
// Frame counts are never used for timing
type Clock interface {
	Now() time.Time
}

// MonotonicClock is the production clock backed by the runtime monotonic reading
type MonotonicClock struct{}

// NewMonotonicClock creates a monotonic clock
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{}
}

// Now returns the current time with monotonic clock reading
func (c *MonotonicClock) Now() time.Time {
	return time.Now()
}
