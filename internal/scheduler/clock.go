package scheduler

import "sync/atomic"

// Ticker is the logical clock contract the scheduler stamps enqueues
// with. *Clock satisfies it; tests inject a resettable double via
// WithClock to replay a scenario with identical seq values.
type Ticker interface {
	Next() int64
	Current() int64
}

// Clock is a monotonic logical clock. Enqueue order and pass numbering
// are derived from it; wall-clock timestamps are never used for
// ordering.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
