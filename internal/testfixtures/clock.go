package testfixtures

import (
	"sync"
	"time"

	"github.com/example/timeclock/internal/timeutil"
)

// Clock is a controllable clock for tests. It implements timeutil.Clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a clock frozen at the given instant.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the current fixed instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to the given instant.
func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Advance moves the clock forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// LocalDate formats the instant's calendar date in the clock's location.
func (c *Clock) LocalDate(t time.Time) string {
	return t.Format(timeutil.DateLayout)
}

// NowFunc returns a func bound to this clock, for components that take a
// bare now func rather than the full interface.
func (c *Clock) NowFunc() func() time.Time {
	return c.Now
}
