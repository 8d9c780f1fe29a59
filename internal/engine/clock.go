package engine

import "sync/atomic"

// FirstEventID is the id of the first event in a batch. RMMZ reserves index
// 0 of a map's event array for null.
const FirstEventID = 1

// Clock hands out event ids in strictly increasing order.
//
// Ids are logical, never derived from wall time, so a replayed batch gets
// the same ids as the original.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// A Placer only calls it from the goroutine running PlaceEvents.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock whose first Next() returns start+1.
// Used to continue numbering after the events already on a map.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next id and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last id handed out without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
