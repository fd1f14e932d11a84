package vnode

import (
	"log/slog"
	"sync"
)

// Suspension is a token representing a pending asynchronous dependency
// blocking a subtree's render.
//
// A suspension is either pending (its handle is retained by exactly one
// external waiter) or resolved (the handle has been consumed). Resolution
// happens exactly once: the first call to Handle.Resume or Handle.Release
// wins and every later call is a no-op.
//
// The suspense controller binds a wake callback to the suspension when it
// associates it with a boundary. Resolution fires the callback exactly
// once, from whatever goroutine resolved the token; the callback is
// responsible for handing off to the UI scheduler.
type Suspension struct {
	token string

	mu       sync.Mutex
	resolved bool
	implicit bool
	woken    bool
	wake     func()
}

// NewSuspension creates a pending suspension identified by token.
// Tokens come from a TokenGenerator; they are diagnostic identity only
// and carry no ordering semantics.
func NewSuspension(token string) *Suspension {
	return &Suspension{token: token}
}

// Token returns the suspension's diagnostic identity.
func (s *Suspension) Token() string { return s.token }

// Resolved reports whether the token has been consumed.
func (s *Suspension) Resolved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved
}

// Handle returns the resume capability for this suspension. The handle
// is retained by the single external waiter for the blocking operation.
func (s *Suspension) Handle() *ResumeHandle {
	return &ResumeHandle{s: s}
}

// Bind installs the wake callback. If the suspension already resolved
// before Bind (the asynchronous completion raced the controller), the
// callback fires immediately so the wake-up is not lost.
//
// Bind fires the callback at most once per suspension.
func (s *Suspension) Bind(wake func()) {
	s.mu.Lock()
	s.wake = wake
	fire := s.resolved && !s.woken
	if fire {
		s.woken = true
	}
	s.mu.Unlock()

	if fire {
		wake()
	}
}

// resolve consumes the token. Returns false when already resolved.
func (s *Suspension) resolve(implicit bool) bool {
	s.mu.Lock()
	if s.resolved {
		s.mu.Unlock()
		return false
	}
	s.resolved = true
	s.implicit = implicit
	wake := s.wake
	fire := wake != nil && !s.woken
	if fire {
		s.woken = true
	}
	s.mu.Unlock()

	if implicit {
		slog.Warn("suspension handle released without resume; treating as implicit resume",
			"token", s.token,
		)
	}
	if fire {
		wake()
	}
	return true
}

// ResumeHandle is the resume capability paired with a Suspension.
//
// Exactly one waiter holds the handle while the suspension is pending.
// The waiter must call Resume when the blocking operation completes, or
// Release when it abandons the operation. Dropping the handle without
// either call is a caller error: there is nothing left to wake the
// boundary and the fallback would be mounted forever.
type ResumeHandle struct {
	s *Suspension
}

// Resume consumes the token and wakes the associated boundary.
// Safe to call from any goroutine. Calling Resume more than once, or
// after Release, is a benign no-op.
func (h *ResumeHandle) Resume() {
	h.s.resolve(false)
}

// Release abandons the blocking operation. It behaves as an implicit
// resume attempt (the boundary retries its primary subtree and will
// re-suspend if the dependency is still unmet) and emits a diagnostic,
// because relying on Release instead of Resume is a caller error.
func (h *ResumeHandle) Release() {
	h.s.resolve(true)
}
