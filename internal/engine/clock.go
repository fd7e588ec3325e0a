package engine

import "sync/atomic"

// Clock counts driver ticks within a job.
//
// Every Advance call takes one tick, so a finished job's count is
// records × stages plus the finalizing tick. The count is reported when
// the job completes and reset for the next one.
//
// Clock is safe for concurrent use so that status readers outside the Run
// loop can call Current.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next tick and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current tick without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// Reset zeroes the clock and returns the count it held.
func (c *Clock) Reset() int64 {
	return c.seq.Swap(0)
}
