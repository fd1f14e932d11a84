package reconcile

import (
	"github.com/loomui/loom/internal/surface"
	"github.com/loomui/loom/internal/vnode"
)

// bundle is one mount record in the shadow tree. Each record occupies a
// contiguous run of child slots under its surface parent element.
type bundle interface {
	// slots is how many surface child positions the record occupies.
	slots() int

	// appendHandles appends the record's top-level surface handles, in
	// slot order.
	appendHandles(dst []surface.Handle) []surface.Handle

	// release tears down owned resources (scopes, refs, boundary
	// registrations) without touching the surface. Used both on
	// unmount and when an ancestor's surface node is removed
	// wholesale.
	release(r *Reconciler)

	// setParent rebinds the record to a container.
	setParent(c container)
}

// container is a record that positions child records: an element, a
// list, a component, a boundary, or the tree root.
type container interface {
	// offsetOf returns the absolute index of child's first slot under
	// the container's surface parent element.
	offsetOf(child bundle) int

	// surfaceParent returns the element handle children attach to.
	surfaceParent() surface.Handle
}

// bEmpty anchors an Empty node with an empty text node so sibling
// indices stay stable.
type bEmpty struct {
	parent container
	h      surface.Handle
}

func (b *bEmpty) slots() int { return 1 }
func (b *bEmpty) appendHandles(dst []surface.Handle) []surface.Handle {
	return append(dst, b.h)
}
func (b *bEmpty) release(*Reconciler)   {}
func (b *bEmpty) setParent(c container) { b.parent = c }

// bText mirrors a mounted text node.
type bText struct {
	parent container
	h      surface.Handle
	value  string
}

func (b *bText) slots() int { return 1 }
func (b *bText) appendHandles(dst []surface.Handle) []surface.Handle {
	return append(dst, b.h)
}
func (b *bText) release(*Reconciler)   {}
func (b *bText) setParent(c container) { b.parent = c }

// bElement mirrors a mounted element and contains its child records.
type bElement struct {
	parent   container
	h        surface.Handle
	node     *vnode.Element
	children []bundle
}

func (b *bElement) slots() int { return 1 }
func (b *bElement) appendHandles(dst []surface.Handle) []surface.Handle {
	return append(dst, b.h)
}

func (b *bElement) release(r *Reconciler) {
	if b.node.Ref != nil {
		b.node.Ref.Detach()
	}
	for _, c := range b.children {
		c.release(r)
	}
}

func (b *bElement) setParent(c container) { b.parent = c }

func (b *bElement) offsetOf(child bundle) int {
	idx := 0
	for _, c := range b.children {
		if c == child {
			return idx
		}
		idx += c.slots()
	}
	return idx
}

func (b *bElement) surfaceParent() surface.Handle { return b.h }

// listItem pairs a sibling key with its record.
type listItem struct {
	key string
	b   bundle
}

// bList mirrors a mounted list. Lists splat: the record occupies one
// slot per item directly under the enclosing element.
type bList struct {
	parent container
	items  []listItem
	// keyed records whether the mounted list qualified for keyed
	// diffing (unique, non-empty keys) when it was last reconciled.
	keyed bool
}

func (b *bList) slots() int {
	n := 0
	for _, it := range b.items {
		n += it.b.slots()
	}
	return n
}

func (b *bList) appendHandles(dst []surface.Handle) []surface.Handle {
	for _, it := range b.items {
		dst = it.b.appendHandles(dst)
	}
	return dst
}

func (b *bList) release(r *Reconciler) {
	for _, it := range b.items {
		it.b.release(r)
	}
}

func (b *bList) setParent(c container) { b.parent = c }

func (b *bList) offsetOf(child bundle) int {
	idx := b.parent.offsetOf(b)
	for _, it := range b.items {
		if it.b == child {
			return idx
		}
		idx += it.b.slots()
	}
	return idx
}

func (b *bList) surfaceParent() surface.Handle { return b.parent.surfaceParent() }

// bComponent owns one live component scope and the record of its
// rendered subtree.
type bComponent struct {
	parent   container
	id       uint64
	typeID   string
	mounted  vnode.Mounted
	rendered bundle
	dead     bool
}

func (b *bComponent) slots() int { return b.rendered.slots() }

func (b *bComponent) appendHandles(dst []surface.Handle) []surface.Handle {
	return b.rendered.appendHandles(dst)
}

func (b *bComponent) release(r *Reconciler) {
	if b.dead {
		return
	}
	b.dead = true
	if b.mounted != nil {
		b.mounted.Destroy()
	}
	b.rendered.release(r)
}

func (b *bComponent) setParent(c container) { b.parent = c }

func (b *bComponent) offsetOf(bundle) int { return b.parent.offsetOf(b) }

func (b *bComponent) surfaceParent() surface.Handle { return b.parent.surfaceParent() }

// bBoundary owns a suspense boundary: the node templates, the current
// mode, and the record of whichever subtree is mounted.
type bBoundary struct {
	parent container
	id     uint64
	node   *vnode.Suspense
	mode   vnode.BoundaryMode
	inner  bundle
	dead   bool
}

func (b *bBoundary) slots() int { return b.inner.slots() }

func (b *bBoundary) appendHandles(dst []surface.Handle) []surface.Handle {
	return b.inner.appendHandles(dst)
}

func (b *bBoundary) release(r *Reconciler) {
	if b.dead {
		return
	}
	b.dead = true
	r.susp.Destroy(b.id)
	b.inner.release(r)
}

func (b *bBoundary) setParent(c container) { b.parent = c }

func (b *bBoundary) offsetOf(bundle) int { return b.parent.offsetOf(b) }

func (b *bBoundary) surfaceParent() surface.Handle { return b.parent.surfaceParent() }

// parentOf returns the record's container, for climbing.
func parentOf(b bundle) container {
	switch v := b.(type) {
	case *bEmpty:
		return v.parent
	case *bText:
		return v.parent
	case *bElement:
		return v.parent
	case *bList:
		return v.parent
	case *bComponent:
		return v.parent
	case *bBoundary:
		return v.parent
	default:
		return nil
	}
}

// enclosingBoundary climbs from c to the nearest live suspense boundary.
func enclosingBoundary(c container) *bBoundary {
	for c != nil {
		switch v := c.(type) {
		case *bBoundary:
			if !v.dead {
				return v
			}
			c = v.parent
		case *bElement:
			c = v.parent
		case *bList:
			c = v.parent
		case *bComponent:
			c = v.parent
		case *Tree:
			return nil
		default:
			return nil
		}
	}
	return nil
}

// componentDepth counts component ancestors, the scheduling depth for
// work mounted under c.
func componentDepth(c container) int {
	d := 0
	for c != nil {
		switch v := c.(type) {
		case *bComponent:
			d++
			c = v.parent
		case *bElement:
			c = v.parent
		case *bList:
			c = v.parent
		case *bBoundary:
			c = v.parent
		case *Tree:
			return d
		default:
			return d
		}
	}
	return d
}
