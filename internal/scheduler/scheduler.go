package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/loomui/loom/internal/vnode"
)

// DefaultMaxTasksPerFlush is the default render-unit quota per pass.
// This prevents a render loop from consuming unbounded resources.
const DefaultMaxTasksPerFlush = 4096

// ErrPassQuota is returned by Flush when a pass exceeds its quota.
var ErrPassQuota = errors.New("render pass exceeded task quota")

// ErrClosed is returned when work is submitted after Close.
var ErrClosed = errors.New("scheduler closed")

// Scheduler is the process-wide render queue and cross-thread mailbox.
//
// Thread-safety model:
//   - Schedule(), Post(): safe from any goroutine
//   - Flush(), Run(): must be called from exactly one goroutine, the UI
//     goroutine; all tree mutation happens inside it
//
// INVARIANTS:
//   - A renderable with a pending queue entry is never enqueued twice
//   - A pass runs to exhaustion: units enqueued mid-pass run in-pass
//   - Units run in (depth, enqueue seq) order: parents before children,
//     siblings in enqueue order
type Scheduler struct {
	queue *renderQueue
	clock Ticker

	mu     sync.Mutex
	posted []func()
	closed bool
	signal chan struct{} // mailbox availability (buffered, size 1)

	flushing bool // UI goroutine only
	maxTasks int
	passes   *Clock
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the logical clock stamping enqueues. Tests use a
// resettable clock to replay a scenario with identical seq values.
func WithClock(c Ticker) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithMaxTasksPerFlush sets the render-unit quota per pass.
//
// Default: 4096 (DefaultMaxTasksPerFlush).
// Use a small value (e.g. 8) for testing quota enforcement.
func WithMaxTasksPerFlush(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxTasks = n
		}
	}
}

// New creates a Scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		queue:    newRenderQueue(),
		clock:    NewClock(),
		signal:   make(chan struct{}, 1),
		maxTasks: DefaultMaxTasksPerFlush,
		passes:   NewClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clock returns the scheduler's logical clock.
func (s *Scheduler) Clock() Ticker { return s.clock }

// Schedule enqueues one render pass for r, deduplicated by TaskID.
// Thread-safe: may be called from any goroutine.
// Returns false when coalesced with a pending entry or after Close.
func (s *Scheduler) Schedule(r vnode.Renderable) bool {
	return s.queue.Push(r, s.clock.Next())
}

// Post hands fn to the UI goroutine. The next Flush runs all posted
// functions, in post order, before the render pass. This is the only
// legal way for asynchronous completions to reach the tree.
// Thread-safe: may be called from any goroutine.
func (s *Scheduler) Post(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.posted = append(s.posted, fn)
	select {
	case s.signal <- struct{}{}:
	default:
	}
	return nil
}

// Pending returns the number of queued render units. Useful for tests
// and monitoring.
func (s *Scheduler) Pending() int { return s.queue.Len() }

// Passes returns how many flush passes have run.
func (s *Scheduler) Passes() int64 { return s.passes.Current() }

// Flush runs one complete scheduling turn on the calling goroutine:
// posted functions first, then the render queue to exhaustion. Work
// enqueued while draining (child re-renders, posted resumes that
// schedule units) is processed within the same turn, so the driver never
// observes a partially-patched tree.
//
// Flush is not reentrant; a render unit must never call it.
func (s *Scheduler) Flush() error {
	if s.flushing {
		return fmt.Errorf("flush: reentrant call")
	}
	s.flushing = true
	defer func() { s.flushing = false }()

	pass := s.passes.Next()
	ran := 0

	for {
		progressed := false

		for _, fn := range s.takePosted() {
			fn()
			progressed = true
		}

		for {
			t, ok := s.queue.Pop()
			if !ok {
				break
			}
			ran++
			if ran > s.maxTasks {
				dropped := s.queue.Drop()
				slog.Error("render pass quota exceeded",
					"pass", pass,
					"ran", ran-1,
					"dropped", dropped,
					"limit", s.maxTasks,
				)
				return fmt.Errorf("pass %d: %w", pass, ErrPassQuota)
			}
			slog.Debug("running render unit",
				"pass", pass,
				"task", t.TaskID(),
				"depth", t.Depth(),
			)
			t.Run()
			progressed = true
		}

		if !progressed {
			return nil
		}
	}
}

func (s *Scheduler) takePosted() []func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fns := s.posted
	s.posted = nil
	return fns
}

// Run drives Flush in a blocking loop until ctx is cancelled or Close is
// called. It must be called from exactly one goroutine; that goroutine
// becomes the UI goroutine.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("scheduler starting")

	for {
		if err := s.Flush(); err != nil {
			// Quota failures drop the queue and continue; determinism
			// is preserved because nothing retries automatically.
			slog.Error("flush failed", "error", err)
		}

		select {
		case <-ctx.Done():
			slog.Info("scheduler stopping: context cancelled")
			s.Close()
			return ctx.Err()

		case <-s.queue.Wait():
			if s.isClosed() && s.queue.Len() == 0 {
				slog.Info("scheduler stopping: closed")
				return nil
			}

		case <-s.signal:
			if s.isClosed() && !s.hasPosted() {
				slog.Info("scheduler stopping: closed")
				return nil
			}
		}
	}
}

// Close stops accepting work and wakes a blocked Run loop.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.signal)
	s.mu.Unlock()

	s.queue.Close()
}

func (s *Scheduler) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Scheduler) hasPosted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posted) > 0
}
