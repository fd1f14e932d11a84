package reconcile

import (
	"fmt"
	"log/slog"

	"github.com/loomui/loom/internal/scheduler"
	"github.com/loomui/loom/internal/surface"
	"github.com/loomui/loom/internal/suspense"
	"github.com/loomui/loom/internal/vnode"
)

// Reconciler mounts vnode trees onto a surface and patches them in
// place. One reconciler can own any number of mounted trees sharing the
// same surface and scheduler.
//
// Thread-safety: none. Every method runs on the UI goroutine.
type Reconciler struct {
	surf  surface.Surface
	sched *scheduler.Scheduler
	susp  *suspense.Controller
	gen   vnode.TokenGenerator

	ids     uint64
	diags   []Diag
	pending []pendingSuspension
	onFail  func(error)
}

// pendingSuspension queues a suspension noticed during a mount or patch
// walk; flips settle after the walk so the shadow tree is never
// restructured underneath an in-progress traversal.
type pendingSuspension struct {
	boundary *bBoundary
	susp     *vnode.Suspension
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithTokenGenerator overrides the suspension/mount token source.
// Tests use vnode.NewFixedGenerator for deterministic diagnostics.
func WithTokenGenerator(g vnode.TokenGenerator) Option {
	return func(r *Reconciler) { r.gen = g }
}

// WithFailureHandler sets the callback for failures that surface from
// scheduled re-renders, where there is no caller to return an error to.
// The default logs at Error level.
func WithFailureHandler(fn func(error)) Option {
	return func(r *Reconciler) { r.onFail = fn }
}

// New creates a Reconciler patching through surf, scheduling re-renders
// on sched.
func New(surf surface.Surface, sched *scheduler.Scheduler, opts ...Option) *Reconciler {
	r := &Reconciler{
		surf:  surf,
		sched: sched,
		susp:  suspense.NewController(sched),
		gen:   vnode.UUIDv7Generator{},
		onFail: func(err error) {
			slog.Error("render failure", "error", err)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Suspense exposes the boundary controller, mainly for tests that
// assert on pending state.
func (r *Reconciler) Suspense() *suspense.Controller { return r.susp }

// NewSuspension mints a pending suspension from the configured token
// source. Suspending components take this as their token factory so
// tests can substitute a fixed sequence.
func (r *Reconciler) NewSuspension() *vnode.Suspension {
	return vnode.NewSuspension(r.gen.Generate())
}

func (r *Reconciler) nextID() uint64 {
	r.ids++
	return r.ids
}

func (r *Reconciler) fail(err error) {
	if r.onFail != nil {
		r.onFail(err)
	}
}

// Tree is one mounted tree: a root record attached to a mount point
// obtained from the surface. Tree implements container for its root.
type Tree struct {
	r          *Reconciler
	mountPoint surface.Handle
	index      int
	root       bundle
	unmounted  bool
}

func (t *Tree) offsetOf(bundle) int           { return t.index }
func (t *Tree) surfaceParent() surface.Handle { return t.mountPoint }

// Mount mounts n under mountPoint at the given child index and returns
// the live tree.
func (r *Reconciler) Mount(n vnode.Node, mountPoint surface.Handle, index int) (*Tree, error) {
	t := &Tree{r: r, mountPoint: mountPoint, index: index}
	root, err := r.mount(n, t, index)
	if err != nil {
		return nil, fmt.Errorf("mount tree: %w", err)
	}
	t.root = root
	if err := r.settle(); err != nil {
		return nil, err
	}
	return t, nil
}

// Patch reconciles the mounted tree against next: the minimal edit
// sequence consistent with the diff rules is applied to the surface.
// The previous tree value is never mutated; callers may retain it.
func (t *Tree) Patch(next vnode.Node) error {
	if t.unmounted {
		return fmt.Errorf("patch: tree already unmounted")
	}
	root, err := t.r.patch(t.root, next, t, t.index)
	if err != nil {
		return fmt.Errorf("patch tree: %w", err)
	}
	t.root = root
	root.setParent(t)
	return t.r.settle()
}

// Unmount removes the tree from the surface and destroys every scope
// and boundary registration it owns. Idempotent.
func (t *Tree) Unmount() error {
	if t.unmounted {
		return nil
	}
	t.unmounted = true
	return t.r.unmount(t.root, t.mountPoint)
}
