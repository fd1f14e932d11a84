package actor

import (
	"fmt"
	"sync"
)

// DefinitionConflictError reports two definitions claiming the same
// (name, reach) with different message types.
type DefinitionConflictError struct {
	Name  string
	Reach Reach
}

func (e *DefinitionConflictError) Error() string {
	return fmt.Sprintf("actor %q (%s): conflicting definition types", e.Name, e.Reach)
}

// sharedKey identifies one shared instance slot.
type sharedKey struct {
	name  string
	reach Reach
}

// sharedEntry is one reference-counted shared instance. inst is the
// typed instance, recovered by assertion at connect time.
type sharedEntry struct {
	inst    any
	refs    int
	destroy func(reason error)
}

// Registry owns the shared (Context, Public) actor instances of one
// process. The first bridge to a shared definition creates its
// instance; the last one to disconnect tears it down. Fresh reaches
// (Job, Private) pass through without registration.
//
// Thread-safety: all methods are safe for concurrent use.
type Registry struct {
	exec Executor

	mu     sync.Mutex
	closed bool
	shared map[sharedKey]*sharedEntry
}

// NewRegistry creates a registry that runs host-executor instances and
// reply delivery through exec.
func NewRegistry(exec Executor) *Registry {
	return &Registry{
		exec:   exec,
		shared: make(map[sharedKey]*sharedEntry),
	}
}

// Instances returns how many shared instances are currently live.
func (r *Registry) Instances() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shared)
}

// Close refuses further connections and tears down every shared
// instance; their remaining bridges complete with ErrRegistryClosed.
// Fresh instances are owned by their bridges and unaffected.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	entries := make([]*sharedEntry, 0, len(r.shared))
	for _, e := range r.shared {
		entries = append(entries, e)
	}
	r.shared = make(map[sharedKey]*sharedEntry)
	r.mu.Unlock()

	for _, e := range entries {
		e.destroy(ErrRegistryClosed)
	}
}

func (r *Registry) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// releaseShared drops one reference and tears the instance down when it
// was the last.
func (r *Registry) releaseShared(key sharedKey) {
	r.mu.Lock()
	e, ok := r.shared[key]
	if !ok {
		r.mu.Unlock()
		return
	}
	e.refs--
	if e.refs > 0 {
		r.mu.Unlock()
		return
	}
	delete(r.shared, key)
	r.mu.Unlock()

	e.destroy(nil)
}
