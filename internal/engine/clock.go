package engine

import (
	"sync"
	"time"
)

// Clock stamps versions and scans.
//
// Implementations must be strictly increasing: two calls never return the
// same instant, so Mod logs stay ordered by time even when commits land
// within the system clock's resolution. Observe raises the floor, used on
// load to resume after the newest recorded version.
type Clock interface {
	Now() time.Time
	Observe(t time.Time)
}

// WallClock is a strictly increasing wall clock.
//
// Returned times carry no monotonic reading, so they compare equal to the
// same instants read back from the state file.
//
// Thread-safety: WallClock is safe for concurrent use, though the engine
// only calls it from one goroutine.
type WallClock struct {
	mu   sync.Mutex
	last time.Time
}

// NewWallClock creates a clock with no floor.
func NewWallClock() *WallClock {
	return &WallClock{}
}

// NewWallClockAt creates a clock that never returns anything at or before floor.
func NewWallClockAt(floor time.Time) *WallClock {
	return &WallClock{last: floor.Round(0)}
}

// Now returns the current time, nudged forward by a nanosecond when the
// system clock has not moved past the previous reading.
func (c *WallClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now().Round(0)
	if !now.After(c.last) {
		now = c.last.Add(time.Nanosecond)
	}
	c.last = now
	return now
}

// Observe raises the floor to t if t is later than every reading so far.
func (c *WallClock) Observe(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.After(c.last) {
		c.last = t.Round(0)
	}
}
