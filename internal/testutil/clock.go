package testutil

import (
	"sync"
	"time"
)

// Epoch is the instant FixedClock starts at.
var Epoch = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

// FixedClock is a deterministic clock for run timestamps.
//
// Each call to Now advances the clock by Step, so consecutive runs get
// distinct, reproducible timestamps.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu   sync.Mutex
	now  time.Time
	Step time.Duration
}

// NewFixedClock creates a clock starting at Epoch that advances one second
// per reading.
func NewFixedClock() *FixedClock {
	return &FixedClock{now: Epoch, Step: time.Second}
}

// Now returns the current instant and advances the clock.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.Step)
	return t
}

// Reset rewinds the clock to Epoch.
func (c *FixedClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = Epoch
}
