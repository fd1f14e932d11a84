package reconcile

import (
	"fmt"

	"github.com/loomui/loom/internal/vnode"
)

// patch reconciles the mounted record old against the next node n. The
// record is updated in place when the variants match; otherwise old is
// unmounted and n mounts fresh at index. The returned record is the
// live one, which may or may not be old.
func (r *Reconciler) patch(old bundle, n vnode.Node, parent container, index int) (bundle, error) {
	switch v := n.(type) {
	case vnode.Empty:
		if b, ok := old.(*bEmpty); ok {
			return b, nil
		}
	case *vnode.Text:
		if b, ok := old.(*bText); ok {
			return r.patchText(b, v)
		}
	case *vnode.Element:
		if b, ok := old.(*bElement); ok && b.node.Tag == v.Tag {
			return r.patchElement(b, v)
		}
	case *vnode.List:
		if b, ok := old.(*bList); ok {
			return r.patchList(b, v, index)
		}
	case *vnode.Component:
		if b, ok := old.(*bComponent); ok && !b.dead && b.typeID == v.Blueprint.TypeID() {
			b.mounted.Receive(v.Props)
			return b, nil
		}
	case *vnode.Suspense:
		if b, ok := old.(*bBoundary); ok {
			return r.patchBoundary(b, v, index)
		}
	}
	return r.replace(old, n, parent, index)
}

// replace unmounts old wholesale and mounts n in its slot run.
func (r *Reconciler) replace(old bundle, n vnode.Node, parent container, index int) (bundle, error) {
	if err := r.unmount(old, parent.surfaceParent()); err != nil {
		return nil, err
	}
	return r.mount(n, parent, index)
}

func (r *Reconciler) patchText(b *bText, n *vnode.Text) (bundle, error) {
	if b.value != n.Value {
		if err := r.surf.SetText(b.h, n.Value); err != nil {
			return nil, fmt.Errorf("patch text: %w", err)
		}
		b.value = n.Value
	}
	return b, nil
}

// liveAttrs is the deduplicated attribute view of a node, first
// occurrence winning, matching what mount applied.
func liveAttrs(n *vnode.Element) map[string]string {
	m := make(map[string]string, len(n.Attrs))
	for _, a := range n.Attrs {
		if _, ok := m[a.Key]; !ok {
			m[a.Key] = a.Value
		}
	}
	return m
}

// forcedAttr reports whether key must be re-applied even when the
// declared value is unchanged. The surface may have drifted from user
// input for these, so the declared value always wins on patch.
func forcedAttr(key string) bool {
	return key == "value" || key == "checked"
}

func (r *Reconciler) patchElement(b *bElement, n *vnode.Element) (bundle, error) {
	oldAttrs := liveAttrs(b.node)
	newAttrs := liveAttrs(n)

	applied := make(map[string]struct{}, len(n.Attrs))
	for _, a := range n.Attrs {
		if _, dup := applied[a.Key]; dup {
			r.diag(DiagDuplicateAttr, "element <%s> declares attribute %q twice; first wins", n.Tag, a.Key)
			continue
		}
		applied[a.Key] = struct{}{}
		prev, had := oldAttrs[a.Key]
		if had && prev == a.Value && !forcedAttr(a.Key) {
			continue
		}
		if err := r.surf.SetAttribute(b.h, a.Key, a.Value); err != nil {
			return nil, fmt.Errorf("patch <%s>: %w", n.Tag, err)
		}
	}
	for _, a := range b.node.Attrs {
		if _, keep := newAttrs[a.Key]; keep {
			continue
		}
		if _, live := oldAttrs[a.Key]; !live {
			continue
		}
		delete(oldAttrs, a.Key)
		if err := r.surf.RemoveAttribute(b.h, a.Key); err != nil {
			return nil, fmt.Errorf("patch <%s>: %w", n.Tag, err)
		}
	}

	if b.node.Ref != n.Ref {
		if b.node.Ref != nil {
			b.node.Ref.Detach()
		}
		if n.Ref != nil {
			n.Ref.Attach(b.h)
		}
	}

	children, err := r.patchChildren(b, b.children, n.Children, 0)
	if err != nil {
		return nil, err
	}
	b.children = children
	b.node = n
	return b, nil
}

// patchChildren diffs two positional child sequences inside parent.
// base is the absolute index of the first child slot.
func (r *Reconciler) patchChildren(parent container, old []bundle, next []vnode.Node, base int) ([]bundle, error) {
	out := make([]bundle, 0, len(next))
	cum := base

	common := min(len(old), len(next))
	for i := 0; i < common; i++ {
		nb, err := r.patch(old[i], next[i], parent, cum)
		if err != nil {
			return nil, err
		}
		nb.setParent(parent)
		out = append(out, nb)
		cum += nb.slots()
	}
	for _, surplus := range old[common:] {
		if err := r.unmount(surplus, parent.surfaceParent()); err != nil {
			return nil, err
		}
	}
	for _, n := range next[common:] {
		nb, err := r.mount(n, parent, cum)
		if err != nil {
			return nil, err
		}
		out = append(out, nb)
		cum += nb.slots()
	}
	return out, nil
}

func (r *Reconciler) patchList(b *bList, n *vnode.List, base int) (bundle, error) {
	keyable := r.listKeyable(n)
	if keyable && b.keyed {
		if err := r.patchKeyed(b, n, base); err != nil {
			return nil, err
		}
		return b, nil
	}

	// Positional fallback. Keys are carried along so a later
	// well-formed update can resume keyed diffing.
	oldRecords := make([]bundle, len(b.items))
	for i, it := range b.items {
		oldRecords[i] = it.b
	}
	nextNodes := make([]vnode.Node, len(n.Items))
	for i, it := range n.Items {
		nextNodes[i] = it.Node
	}
	records, err := r.patchChildren(b, oldRecords, nextNodes, base)
	if err != nil {
		return nil, err
	}
	items := make([]listItem, len(records))
	for i, rec := range records {
		items[i] = listItem{key: n.Items[i].Key, b: rec}
	}
	b.items = items
	b.keyed = keyable
	return b, nil
}

func (r *Reconciler) patchBoundary(b *bBoundary, n *vnode.Suspense, index int) (bundle, error) {
	b.node = n
	var current vnode.Node
	if b.mode == vnode.ModePrimary {
		current = n.Primary
	} else {
		current = n.Fallback
	}
	inner, err := r.patch(b.inner, current, b, index)
	if err != nil {
		return nil, err
	}
	inner.setParent(b)
	b.inner = inner
	return b, nil
}
