// Package activity tracks the instant of the most recent client activity.
//
// A single Clock is created at process start and shared by reference between
// the request handlers, which touch it, and the idle watchdog, which reads it.
package activity

import (
	"sync"
	"time"
)

// Clock records the last observed client activity.
//
// It is safe for concurrent use. The lock is held only for the assignment or
// the read of the stored instant.
type Clock struct {
	mu   sync.RWMutex
	last time.Time
	now  func() time.Time
}

// Option configures a Clock.
type Option func(*Clock)

// WithNow sets the time source. Intended for tests.
func WithNow(now func() time.Time) Option {
	return func(c *Clock) {
		c.now = now
	}
}

// NewClock creates a clock whose last activity is the moment of creation.
func NewClock(opts ...Option) *Clock {
	c := &Clock{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.last = c.now()
	return c
}

// Touch records now as the latest activity instant.
func (c *Clock) Touch() {
	now := c.now()

	c.mu.Lock()
	c.last = now
	c.mu.Unlock()
}

// LastTouch returns the latest recorded activity instant.
func (c *Clock) LastTouch() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// SinceLastTouch returns the time elapsed since the latest activity.
// It never returns a negative duration, even if the time source goes backwards.
func (c *Clock) SinceLastTouch() time.Duration {
	last := c.LastTouch()
	elapsed := c.now().Sub(last)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}
