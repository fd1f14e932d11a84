package reconcile

import (
	"fmt"

	"github.com/loomui/loom/internal/surface"
	"github.com/loomui/loom/internal/vnode"
)

// mount creates the record for n and inserts its surface nodes under
// parent at the given absolute index.
func (r *Reconciler) mount(n vnode.Node, parent container, index int) (bundle, error) {
	switch v := n.(type) {
	case vnode.Empty:
		return r.mountEmpty(parent, index)
	case *vnode.Text:
		return r.mountText(v, parent, index)
	case *vnode.Element:
		return r.mountElement(v, parent, index)
	case *vnode.List:
		return r.mountList(v, parent, index)
	case *vnode.Component:
		return r.mountComponent(v, parent, index)
	case *vnode.Suspense:
		return r.mountBoundary(v, parent, index)
	default:
		return nil, fmt.Errorf("mount: unknown node variant %T", n)
	}
}

func (r *Reconciler) mountEmpty(parent container, index int) (bundle, error) {
	h, err := r.surf.CreateText("")
	if err != nil {
		return nil, fmt.Errorf("mount empty: %w", err)
	}
	if err := r.surf.InsertChild(parent.surfaceParent(), h, index); err != nil {
		return nil, fmt.Errorf("mount empty: %w", err)
	}
	return &bEmpty{parent: parent, h: h}, nil
}

func (r *Reconciler) mountText(n *vnode.Text, parent container, index int) (bundle, error) {
	h, err := r.surf.CreateText(n.Value)
	if err != nil {
		return nil, fmt.Errorf("mount text: %w", err)
	}
	if err := r.surf.InsertChild(parent.surfaceParent(), h, index); err != nil {
		return nil, fmt.Errorf("mount text: %w", err)
	}
	return &bText{parent: parent, h: h, value: n.Value}, nil
}

func (r *Reconciler) mountElement(n *vnode.Element, parent container, index int) (bundle, error) {
	h, err := r.surf.CreateElement(n.Tag)
	if err != nil {
		return nil, fmt.Errorf("mount <%s>: %w", n.Tag, err)
	}

	b := &bElement{parent: parent, h: h, node: n}

	seen := make(map[string]struct{}, len(n.Attrs))
	for _, a := range n.Attrs {
		if _, dup := seen[a.Key]; dup {
			r.diag(DiagDuplicateAttr, "element <%s> declares attribute %q twice; first wins", n.Tag, a.Key)
			continue
		}
		seen[a.Key] = struct{}{}
		if err := r.surf.SetAttribute(h, a.Key, a.Value); err != nil {
			return nil, fmt.Errorf("mount <%s>: %w", n.Tag, err)
		}
	}

	cum := 0
	for _, child := range n.Children {
		cb, err := r.mount(child, b, cum)
		if err != nil {
			return nil, err
		}
		b.children = append(b.children, cb)
		cum += cb.slots()
	}

	if err := r.surf.InsertChild(parent.surfaceParent(), h, index); err != nil {
		return nil, fmt.Errorf("mount <%s>: %w", n.Tag, err)
	}
	if n.Ref != nil {
		n.Ref.Attach(h)
	}
	return b, nil
}

func (r *Reconciler) mountList(n *vnode.List, parent container, index int) (bundle, error) {
	b := &bList{parent: parent, keyed: r.listKeyable(n)}
	cum := index
	for _, item := range n.Items {
		ib, err := r.mount(item.Node, b, cum)
		if err != nil {
			return nil, err
		}
		b.items = append(b.items, listItem{key: item.Key, b: ib})
		cum += ib.slots()
	}
	return b, nil
}

// listKeyable reports whether every item carries a unique, non-empty
// key; lists that do not qualify fall back to positional diffing.
func (r *Reconciler) listKeyable(n *vnode.List) bool {
	ok := true
	seen := make(map[string]struct{}, len(n.Items))
	for _, item := range n.Items {
		if item.Key == "" {
			r.diag(DiagMissingKey, "keyed sibling without key; list falls back to positional diffing")
			ok = false
			continue
		}
		if _, dup := seen[item.Key]; dup {
			r.diag(DiagDuplicateKey, "duplicate key %q; list falls back to positional diffing", item.Key)
			ok = false
			continue
		}
		seen[item.Key] = struct{}{}
	}
	return ok
}

func (r *Reconciler) mountComponent(n *vnode.Component, parent container, index int) (bundle, error) {
	b := &bComponent{
		parent: parent,
		id:     r.nextID(),
		typeID: n.Blueprint.TypeID(),
	}
	host := &componentHost{r: r, c: b}

	mounted, res := n.Blueprint.Mount(host, n.Props)
	b.mounted = mounted

	switch res.Status() {
	case vnode.RenderReady:
		child, err := r.mount(res.Node(), b, index)
		if err != nil {
			return nil, err
		}
		b.rendered = child
		return b, nil

	case vnode.RenderPending:
		child, err := r.mount(vnode.Empty{}, b, index)
		if err != nil {
			return nil, err
		}
		b.rendered = child
		r.noteSuspension(b, res.Suspension())
		return b, nil

	case vnode.RenderFailed:
		r.diag(DiagRenderFailed, "component %s failed on mount: %v", b.typeID, res.Err())
		r.fail(fmt.Errorf("component %s: %w", b.typeID, res.Err()))
		child, err := r.mount(vnode.Empty{}, b, index)
		if err != nil {
			return nil, err
		}
		b.rendered = child
		return b, nil

	default:
		return nil, fmt.Errorf("component %s: invalid render result", b.typeID)
	}
}

func (r *Reconciler) mountBoundary(n *vnode.Suspense, parent container, index int) (bundle, error) {
	b := &bBoundary{
		parent: parent,
		id:     r.nextID(),
		node:   n,
		mode:   vnode.ModePrimary,
	}
	inner, err := r.mount(n.Primary, b, index)
	if err != nil {
		return nil, err
	}
	b.inner = inner
	return b, nil
}

// unmount removes the record's surface nodes from surfaceParent and
// releases everything it owns.
func (r *Reconciler) unmount(b bundle, surfaceParent surface.Handle) error {
	for _, h := range b.appendHandles(nil) {
		if err := r.surf.RemoveChild(surfaceParent, h); err != nil {
			return fmt.Errorf("unmount: %w", err)
		}
	}
	b.release(r)
	return nil
}
