package suspense

import (
	"log/slog"
	"sync"

	"github.com/loomui/loom/internal/scheduler"
	"github.com/loomui/loom/internal/vnode"
)

// Controller owns the suspension bookkeeping for every mounted boundary.
//
// Thread-safety: all methods are safe for concurrent use. Suspend and
// Destroy are called from the UI goroutine by the reconciler; wake-ups
// arrive from arbitrary goroutines via suspension resolution.
type Controller struct {
	sched *scheduler.Scheduler

	mu      sync.Mutex
	entries map[uint64]*entry
}

// entry tracks one boundary. epoch increments every time the boundary
// (re-)suspends; consumed records the latest epoch whose wake already
// triggered a retry, which is what makes stale handles inert.
type entry struct {
	epoch    uint64
	consumed uint64
	retry    vnode.Renderable
}

// NewController creates a controller that schedules retries on sched.
func NewController(sched *scheduler.Scheduler) *Controller {
	return &Controller{
		sched:   sched,
		entries: make(map[uint64]*entry),
	}
}

// Suspend registers a new suspension generation for boundaryID. Every
// given suspension is bound to the same generation: the first one to
// resolve schedules retry, the rest become stale no-ops. A boundary that
// suspends again after a retry gets a fresh generation, so handles from
// the earlier attempt can never resume it twice.
//
// Resolution before Bind is not lost: the suspension fires its wake
// immediately in that case.
func (c *Controller) Suspend(boundaryID uint64, retry vnode.Renderable, susps ...*vnode.Suspension) {
	c.mu.Lock()
	e, ok := c.entries[boundaryID]
	if !ok {
		e = &entry{}
		c.entries[boundaryID] = e
	}
	e.epoch++
	e.retry = retry
	epoch := e.epoch
	c.mu.Unlock()

	slog.Debug("boundary suspended",
		"boundary", boundaryID,
		"epoch", epoch,
		"suspensions", len(susps),
	)

	for _, s := range susps {
		s := s
		s.Bind(func() { c.wake(boundaryID, epoch, s.Token()) })
	}
}

// wake handles one suspension resolution. May run on any goroutine; the
// only cross-thread effect is a scheduler enqueue.
func (c *Controller) wake(boundaryID, epoch uint64, token string) {
	c.mu.Lock()
	e, ok := c.entries[boundaryID]
	if !ok {
		c.mu.Unlock()
		slog.Warn("resume for destroyed boundary ignored",
			"boundary", boundaryID,
			"token", token,
		)
		return
	}
	if epoch <= e.consumed || epoch < e.epoch {
		c.mu.Unlock()
		slog.Warn("stale suspension resume ignored",
			"boundary", boundaryID,
			"epoch", epoch,
			"current", e.epoch,
			"token", token,
		)
		return
	}
	e.consumed = epoch
	retry := e.retry
	c.mu.Unlock()

	slog.Debug("boundary resuming",
		"boundary", boundaryID,
		"epoch", epoch,
		"token", token,
	)
	c.sched.Schedule(retry)
}

// Pending reports whether boundaryID has a suspension generation whose
// wake has not fired yet.
func (c *Controller) Pending(boundaryID uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[boundaryID]
	return ok && e.epoch > e.consumed
}

// Destroy forgets boundaryID. Outstanding handles become inert; a late
// resolution logs a diagnostic and has no observable effect.
func (c *Controller) Destroy(boundaryID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, boundaryID)
}
