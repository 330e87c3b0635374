package testutil

import (
	"sync"
	"time"
)

// FixedTime is the instant NewFixedClock starts at: 2024-03-15 10:00 UTC.
var FixedTime = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

// FixedClock is a settable clock for tests that depend on the current date.
//
// Pass clock.Now wherever a func() time.Time is expected. Time only moves
// when Advance or Set is called.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock stopped at FixedTime.
func NewFixedClock() *FixedClock {
	return &FixedClock{now: FixedTime}
}

// Now returns the clock's current instant.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d (backward when d is negative).
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
