package vnode

// RenderStatus classifies a render result.
type RenderStatus int

const (
	// RenderReady means the render produced a tree.
	RenderReady RenderStatus = iota + 1
	// RenderPending means the render hit an unmet asynchronous
	// dependency and the subtree must suspend.
	RenderPending
	// RenderFailed means the render failed outright.
	RenderFailed
)

// String returns the status name for diagnostics.
func (s RenderStatus) String() string {
	switch s {
	case RenderReady:
		return "ready"
	case RenderPending:
		return "pending"
	case RenderFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RenderResult is the explicit tri-state outcome of one render:
// Ready(node), Pending(suspension), or Failed(err). Render logic returns
// this value rather than signalling suspension through panics or
// sentinel errors; the scheduler and suspense controller branch on it.
type RenderResult struct {
	status RenderStatus
	node   Node
	susp   *Suspension
	err    error
}

// Ready wraps a produced tree. A nil node is coerced to Empty.
func Ready(n Node) RenderResult {
	if n == nil {
		n = Empty{}
	}
	return RenderResult{status: RenderReady, node: n}
}

// Pending wraps an unmet dependency. The suspension must be pending and
// its handle retained by the asynchronous operation that will resume it.
func Pending(s *Suspension) RenderResult {
	return RenderResult{status: RenderPending, susp: s}
}

// Failed wraps a hard render failure.
func Failed(err error) RenderResult {
	return RenderResult{status: RenderFailed, err: err}
}

// Status returns the tri-state classification.
func (r RenderResult) Status() RenderStatus { return r.status }

// Node returns the produced tree. Only meaningful when Status is RenderReady.
func (r RenderResult) Node() Node { return r.node }

// Suspension returns the pending token. Only meaningful when Status is
// RenderPending.
func (r RenderResult) Suspension() *Suspension { return r.susp }

// Err returns the failure. Only meaningful when Status is RenderFailed.
func (r RenderResult) Err() error { return r.err }
