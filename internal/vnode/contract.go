package vnode

import "sync"

// Renderable is a deduplicatable unit of render work. The scheduler
// orders pending renderables by (Depth, enqueue order) so a parent's
// render always completes before its affected children render.
type Renderable interface {
	// TaskID is the stable identity used for queue deduplication. A
	// renderable with a pending entry is never enqueued twice.
	TaskID() uint64

	// Depth is the unit's depth in the mounted tree (root = 0).
	Depth() int

	// Run performs the render. Called only on the UI goroutine.
	Run()
}

// Host is the runtime a mounted component talks back to. The reconciler
// implements it; component scopes hold it as their only way to reach the
// scheduler and their mounted subtree.
type Host interface {
	// ID is the scope identity assigned at mount. Doubles as the
	// render task identity.
	ID() uint64

	// Depth is the component's depth in the mounted tree.
	Depth() int

	// Enqueue schedules one render pass for r. Safe from any
	// goroutine; duplicate enqueues coalesce.
	Enqueue(r Renderable)

	// Commit applies a completed render: Ready patches the mounted
	// subtree, Pending suspends the nearest enclosing boundary,
	// Failed reports the error to the external driver. Called only on
	// the UI goroutine, from within a render task.
	Commit(r RenderResult)
}

// Mounted is a live component instance as seen by the reconciler.
type Mounted interface {
	// ID is the scope identity (matches Host.ID).
	ID() uint64

	// Receive swaps the props snapshot. The instance decides whether
	// the change requires a re-render and schedules itself if so.
	Receive(props Props)

	// Destroy tears the scope down. After Destroy, outstanding
	// callbacks and suspension associations become inert no-ops.
	Destroy()
}

// Blueprint creates live instances for a Component node and carries the
// component's type identity. Two Component nodes are diffed in place
// exactly when their blueprints report the same TypeID.
type Blueprint interface {
	TypeID() string

	// Mount creates the instance, runs its initial render, and
	// returns both. The reconciler interprets the result: Ready
	// mounts the subtree, Pending suspends the enclosing boundary,
	// Failed surfaces the error.
	Mount(host Host, props Props) (Mounted, RenderResult)
}

// Ref grants scoped access to the surface handle backing a mounted
// element. The reconciler sets the handle when the element mounts and
// clears it on unmount; user code may read it from event callbacks.
//
// Thread-safety: all methods are safe for concurrent use.
type Ref struct {
	mu sync.Mutex
	h  any
	ok bool
}

// NewRef creates an unattached reference.
func NewRef() *Ref { return &Ref{} }

// Get returns the mounted surface handle, or false when the element is
// not currently mounted.
func (r *Ref) Get() (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.h, r.ok
}

// Attach is called by the reconciler when the element mounts.
func (r *Ref) Attach(h any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.h = h
	r.ok = true
}

// Detach is called by the reconciler when the element unmounts.
func (r *Ref) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.h = nil
	r.ok = false
}
