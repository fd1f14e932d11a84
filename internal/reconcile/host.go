package reconcile

import (
	"fmt"

	"github.com/loomui/loom/internal/vnode"
)

// componentHost implements vnode.Host for one mounted component. It is
// the scope's only route back into the tree.
type componentHost struct {
	r *Reconciler
	c *bComponent
}

func (h *componentHost) ID() uint64 { return h.c.id }

func (h *componentHost) Depth() int { return componentDepth(h.c.parent) }

func (h *componentHost) Enqueue(rend vnode.Renderable) {
	h.r.sched.Schedule(rend)
}

// Commit applies a render produced by a scheduled pass. Ready patches
// the rendered subtree in place; Pending keeps the current output and
// suspends the enclosing boundary; Failed keeps the current output and
// reports through the failure handler. Runs on the UI goroutine inside
// a render task, so there is no caller to return an error to.
func (h *componentHost) Commit(res vnode.RenderResult) {
	c, r := h.c, h.r
	if c.dead {
		return
	}

	switch res.Status() {
	case vnode.RenderReady:
		idx := c.parent.offsetOf(c)
		next, err := r.patch(c.rendered, res.Node(), c, idx)
		if err != nil {
			r.fail(fmt.Errorf("component %s: commit: %w", c.typeID, err))
			return
		}
		next.setParent(c)
		c.rendered = next

	case vnode.RenderPending:
		r.noteSuspension(c, res.Suspension())

	case vnode.RenderFailed:
		r.diag(DiagRenderFailed, "component %s render failed: %v", c.typeID, res.Err())
		r.fail(fmt.Errorf("component %s: %w", c.typeID, res.Err()))
		return
	}

	if err := r.settle(); err != nil {
		r.fail(err)
	}
}
