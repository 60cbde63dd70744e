package testutil

import (
	"sync"
	"time"
)

// SteppingClock is a reproducible clock for tests.
//
// Every call to Now advances by a fixed step, so version times are known in
// advance and golden output stays byte-identical between runs.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SteppingClock struct {
	mu    sync.Mutex
	start time.Time
	last  time.Time
	step  time.Duration
}

// DefaultStart is the first instant returned by a clock from NewSteppingClock.
// It lies far enough in the future that fixture files written by a test
// always have older modification times.
var DefaultStart = time.Date(2040, time.January, 1, 12, 0, 0, 0, time.UTC)

// NewSteppingClock creates a clock starting at DefaultStart with a one
// second step.
func NewSteppingClock() *SteppingClock {
	return NewSteppingClockAt(DefaultStart, time.Second)
}

// NewSteppingClockAt creates a clock whose first reading is start.
func NewSteppingClockAt(start time.Time, step time.Duration) *SteppingClock {
	return &SteppingClock{start: start, last: start.Add(-step), step: step}
}

// Now advances by one step and returns the new reading.
func (c *SteppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = c.last.Add(c.step)
	return c.last
}

// Observe raises the clock so the next reading is after t.
func (c *SteppingClock) Observe(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.After(c.last) {
		c.last = t
	}
}

// Last returns the most recent reading without advancing.
func (c *SteppingClock) Last() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Between returns an instant strictly between the last reading and the next
// one. Files stamped with it look modified after every recorded version.
func (c *SteppingClock) Between() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last.Add(c.step / 2)
}

// Reset rewinds the clock to its start.
func (c *SteppingClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = c.start.Add(-c.step)
}
