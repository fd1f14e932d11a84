package scheduler

import (
	"sort"
	"sync"

	"github.com/loomui/loom/internal/vnode"
)

// renderQueue is a thread-safe priority queue of pending render units,
// deduplicated by TaskID and ordered by (depth, enqueue seq).
//
// The queue is unbounded: a cascading render pass may enqueue
// arbitrarily many child renders without blocking.
//
// The queue uses a channel for signaling so a driver's Run loop can wait
// for work with context awareness.
type renderQueue struct {
	mu      sync.Mutex
	entries []queueEntry
	ids     map[uint64]struct{}
	closed  bool
	signal  chan struct{} // Signals work availability (buffered, size 1)
}

type queueEntry struct {
	task vnode.Renderable
	seq  int64
}

func newRenderQueue() *renderQueue {
	return &renderQueue{
		ids:    make(map[uint64]struct{}),
		signal: make(chan struct{}, 1),
	}
}

// Push enqueues a render unit. Returns false when the unit is already
// pending (coalesced) or the queue is closed.
// Thread-safe: may be called from any goroutine.
func (q *renderQueue) Push(t vnode.Renderable, seq int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	if _, dup := q.ids[t.TaskID()]; dup {
		return false
	}
	q.ids[t.TaskID()] = struct{}{}

	e := queueEntry{task: t, seq: seq}
	// Keep entries sorted by (depth, seq) so Pop is O(1).
	i := sort.Search(len(q.entries), func(i int) bool {
		a, b := q.entries[i], e
		if a.task.Depth() != b.task.Depth() {
			return a.task.Depth() > b.task.Depth()
		}
		return a.seq > b.seq
	})
	q.entries = append(q.entries, queueEntry{})
	copy(q.entries[i+1:], q.entries[i:])
	q.entries[i] = e

	// Signal availability (non-blocking - buffer of 1 coalesces signals).
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// Pop removes and returns the highest-priority unit.
// Returns (nil, false) when the queue is empty.
func (q *renderQueue) Pop() (vnode.Renderable, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return nil, false
	}
	e := q.entries[0]

	// Nil out the slot so the backing array does not retain the task.
	q.entries[0] = queueEntry{}
	q.entries = q.entries[1:]
	if len(q.entries) == 0 {
		q.entries = nil
	}
	delete(q.ids, e.task.TaskID())
	return e.task, true
}

// Drop discards all pending units. Used when a pass exceeds its quota.
func (q *renderQueue) Drop() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.entries)
	q.entries = nil
	q.ids = make(map[uint64]struct{})
	return n
}

// Len returns the number of pending units.
func (q *renderQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Wait returns the availability signal channel.
func (q *renderQueue) Wait() <-chan struct{} {
	return q.signal
}

// Close marks the queue closed and wakes all waiters.
func (q *renderQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
