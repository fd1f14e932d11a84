package reconcile

import (
	"fmt"
	"log/slog"

	"github.com/loomui/loom/internal/vnode"
)

// maxSettleRounds bounds cascading boundary flips within one settle so a
// fallback that immediately re-suspends cannot spin the UI goroutine.
const maxSettleRounds = 64

// noteSuspension queues a suspension raised by c's render. The flip and
// controller registration happen in settle, after the walk that raised
// it finishes, so the shadow tree is never restructured mid-traversal.
func (r *Reconciler) noteSuspension(c *bComponent, s *vnode.Suspension) {
	if s == nil {
		return
	}
	b := suspendTarget(c.parent)
	if b == nil {
		r.diag(DiagOrphanSuspension, "component %s suspended with no enclosing boundary; suspension discarded", c.typeID)
		token := s.Token()
		s.Bind(func() {
			slog.Warn("resume for orphaned suspension ignored", "token", token)
		})
		return
	}
	r.pending = append(r.pending, pendingSuspension{boundary: b, susp: s})
}

// suspendTarget climbs to the boundary that should absorb a suspension.
// A boundary currently showing its fallback cannot absorb work raised
// inside that fallback, so the climb skips it.
func suspendTarget(c container) *bBoundary {
	for {
		b := enclosingBoundary(c)
		if b == nil {
			return nil
		}
		if b.mode == vnode.ModePrimary {
			return b
		}
		c = b.parent
	}
}

// settle applies the queued boundary work: flips primaries to fallbacks
// and registers one suspension generation per boundary. Mount and patch
// during a flip may queue further suspensions, so settle loops until
// quiescent, up to maxSettleRounds.
func (r *Reconciler) settle() error {
	for round := 0; len(r.pending) > 0; round++ {
		if round >= maxSettleRounds {
			n := len(r.pending)
			r.pending = nil
			r.diag(DiagSuspenseLoop, "boundary flips did not settle after %d rounds; %d suspensions dropped", maxSettleRounds, n)
			return fmt.Errorf("settle: boundary flips did not converge after %d rounds", maxSettleRounds)
		}

		batch := r.pending
		r.pending = nil

		var order []*bBoundary
		grouped := make(map[*bBoundary][]*vnode.Suspension)
		for _, p := range batch {
			if p.boundary.dead {
				continue
			}
			if _, ok := grouped[p.boundary]; !ok {
				order = append(order, p.boundary)
			}
			grouped[p.boundary] = append(grouped[p.boundary], p.susp)
		}

		for _, b := range order {
			if b.dead {
				continue
			}
			if b.mode == vnode.ModePrimary {
				if err := r.flipToFallback(b); err != nil {
					return err
				}
			}
			r.susp.Suspend(b.id, &retryTask{r: r, b: b}, grouped[b]...)
		}
	}
	return nil
}

// flipToFallback replaces the boundary's primary subtree with its
// fallback. The primary is unmounted wholesale; its scopes are
// destroyed and rebuilt from scratch when the boundary resumes.
func (r *Reconciler) flipToFallback(b *bBoundary) error {
	idx := b.parent.offsetOf(b)
	if err := r.unmount(b.inner, b.surfaceParent()); err != nil {
		return err
	}
	b.mode = vnode.ModeFallback
	inner, err := r.mount(b.node.Fallback, b, idx)
	if err != nil {
		return err
	}
	b.inner = inner
	return nil
}

// retryTask is the scheduled resume for one boundary. It shares the
// boundary's identity so repeat resumes coalesce in the render queue.
type retryTask struct {
	r *Reconciler
	b *bBoundary
}

func (t *retryTask) TaskID() uint64 { return t.b.id }

func (t *retryTask) Depth() int { return componentDepth(t.b.parent) }

func (t *retryTask) Run() {
	if t.b.dead {
		return
	}
	if err := t.r.retryPrimary(t.b); err != nil {
		t.r.fail(err)
	}
}

// retryPrimary remounts the primary subtree. If it suspends again the
// queued suspensions flip the boundary straight back in settle, under a
// fresh generation.
func (r *Reconciler) retryPrimary(b *bBoundary) error {
	if b.mode == vnode.ModePrimary {
		return nil
	}
	idx := b.parent.offsetOf(b)
	if err := r.unmount(b.inner, b.surfaceParent()); err != nil {
		return err
	}
	b.mode = vnode.ModePrimary
	inner, err := r.mount(b.node.Primary, b, idx)
	if err != nil {
		return err
	}
	b.inner = inner
	return r.settle()
}
