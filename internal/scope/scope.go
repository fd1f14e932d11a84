package scope

import (
	"log/slog"
	"sync"

	"github.com/loomui/loom/internal/vnode"
)

// phase is the scope lifecycle state.
type phase int

const (
	phaseCreated phase = iota + 1
	phaseRendering
	phaseIdle
	phaseDestroyed
)

// Scope is the runtime state of one mounted component instance. It owns
// the typed inbox and drives the message→update→render cycle.
//
// Thread-safety model:
//   - Send, SendBatch, callbacks: safe from any goroutine
//   - Receive, Run, Destroy: UI goroutine only (reconciler/scheduler)
//
// INVARIANTS:
//   - At most one pending render enqueue at a time (enqueued flag);
//     Send before the next render coalesces
//   - The inbox drains as one batch per render; render count is
//     decoupled from message count
//   - After Destroy every external entry point is a silent no-op
type Scope[P vnode.Props, M any] struct {
	comp Component[P, M]
	host vnode.Host

	mu       sync.Mutex
	inbox    []M
	enqueued bool
	phase    phase

	// UI goroutine only.
	props        P
	propsChanged bool
}

// ID returns the scope identity (also its render task identity).
func (s *Scope[P, M]) ID() uint64 { return s.host.ID() }

// TaskID implements vnode.Renderable.
func (s *Scope[P, M]) TaskID() uint64 { return s.host.ID() }

// Depth implements vnode.Renderable.
func (s *Scope[P, M]) Depth() int { return s.host.Depth() }

// Send appends one message to the inbox and requests a render enqueue.
// Multiple sends before the next render coalesce into one enqueue.
// Safe from any goroutine; a no-op after Destroy.
func (s *Scope[P, M]) Send(msg M) {
	s.mu.Lock()
	if s.phase == phaseDestroyed {
		s.mu.Unlock()
		return
	}
	s.inbox = append(s.inbox, msg)
	enqueue := !s.enqueued
	s.enqueued = true
	s.mu.Unlock()

	if enqueue {
		s.host.Enqueue(s)
	}
}

// SendBatch appends all messages atomically. An empty batch is a no-op
// with zero enqueues; a non-empty one requests at most one enqueue, so
// the whole batch yields at most one render.
// Safe from any goroutine; a no-op after Destroy.
func (s *Scope[P, M]) SendBatch(msgs []M) {
	if len(msgs) == 0 {
		return
	}
	s.mu.Lock()
	if s.phase == phaseDestroyed {
		s.mu.Unlock()
		return
	}
	s.inbox = append(s.inbox, msgs...)
	enqueue := !s.enqueued
	s.enqueued = true
	s.mu.Unlock()

	if enqueue {
		s.host.Enqueue(s)
	}
}

// Callback adapts a value handler into a message send: the returned
// function performs Send(f(v)). It may be handed to event sources and
// invoked from any goroutine, including after the scope is destroyed
// (the send becomes a no-op).
func Callback[V any, P vnode.Props, M any](s *Scope[P, M], f func(V) M) func(V) {
	return func(v V) {
		s.Send(f(v))
	}
}

// Receive implements vnode.Mounted: the parent produced a new props
// snapshot. The changed-props policy decides whether this schedules a
// re-render; the default compares snapshots by value equality, a
// component implementing Changer overrides it.
// UI goroutine only.
func (s *Scope[P, M]) Receive(props vnode.Props) {
	p, ok := props.(P)
	if !ok {
		slog.Error("props snapshot type mismatch ignored",
			"scope", s.ID(),
			"got", props,
		)
		return
	}

	s.mu.Lock()
	if s.phase == phaseDestroyed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	changed := false
	if ch, ok := s.comp.(Changer[P]); ok {
		changed = ch.Changed(s.props, p)
	} else {
		changed = !vnode.PropsEqual(s.props, p)
	}
	s.props = p
	if !changed {
		return
	}

	s.mu.Lock()
	s.propsChanged = true
	enqueue := !s.enqueued
	s.enqueued = true
	s.mu.Unlock()

	if enqueue {
		s.host.Enqueue(s)
	}
}

// Run implements vnode.Renderable: one render pass for this scope.
// Drains the inbox as a single batch, applies Update per message, and
// renders at most once; if no Update requested a render and props did
// not change, the pass produces nothing.
// UI goroutine only.
func (s *Scope[P, M]) Run() {
	s.mu.Lock()
	if s.phase == phaseDestroyed {
		s.mu.Unlock()
		return
	}
	batch := s.inbox
	s.inbox = nil
	s.enqueued = false
	propsChanged := s.propsChanged
	s.propsChanged = false
	s.phase = phaseRendering
	s.mu.Unlock()

	render := propsChanged
	for _, msg := range batch {
		if s.comp.Update(msg) {
			render = true
		}
	}

	if render {
		s.host.Commit(s.comp.View(s.props))
	}

	s.mu.Lock()
	if s.phase == phaseRendering {
		s.phase = phaseIdle
	}
	s.mu.Unlock()
}

// initialRender runs Create and the first View. Called once from
// Def.Mount; the reconciler interprets the result.
func (s *Scope[P, M]) initialRender() vnode.RenderResult {
	s.comp.Create(s.props)

	s.mu.Lock()
	s.phase = phaseRendering
	s.mu.Unlock()

	res := s.comp.View(s.props)

	s.mu.Lock()
	if s.phase == phaseRendering {
		s.phase = phaseIdle
	}
	s.mu.Unlock()
	return res
}

// Destroy implements vnode.Mounted. The inbox is drained and discarded;
// no further messages are processed and outstanding callbacks become
// inert. UI goroutine only; idempotent.
func (s *Scope[P, M]) Destroy() {
	s.mu.Lock()
	if s.phase == phaseDestroyed {
		s.mu.Unlock()
		return
	}
	dropped := len(s.inbox)
	s.inbox = nil
	s.phase = phaseDestroyed
	s.mu.Unlock()

	if dropped > 0 {
		slog.Debug("scope destroyed with undelivered messages",
			"scope", s.ID(),
			"dropped", dropped,
		)
	}
}
