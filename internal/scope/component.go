package scope

import (
	"fmt"

	"github.com/loomui/loom/internal/vnode"
)

// Component is user component logic, generic over a props type P and a
// message type M. The instance itself owns whatever private state it
// needs; the runtime never looks inside.
type Component[P vnode.Props, M any] interface {
	// Create runs exactly once, before the first render.
	Create(props P)

	// Update folds one inbox message into the component state and
	// reports whether the change requires a re-render.
	Update(msg M) bool

	// View produces the component's output for the current props and
	// state: Ready(tree), Pending(suspension) when an asynchronous
	// dependency is unmet, or Failed(err).
	View(props P) vnode.RenderResult
}

// Changer optionally overrides the changed-props policy. Components that
// do not implement it get the default: re-render when the new snapshot
// is not Equal to the previous one.
type Changer[P vnode.Props] interface {
	Changed(old, new P) bool
}

// Def is the reusable definition of a component type: its type identity
// plus an instance factory. One Def serves any number of mounted
// instances. Def implements vnode.Blueprint.
type Def[P vnode.Props, M any] struct {
	typeID  string
	factory func() Component[P, M]
}

// Define declares a component type. typeID is the reconciliation
// identity: two component nodes diff in place exactly when their typeIDs
// match, so the ID must be unique per component type.
func Define[P vnode.Props, M any](typeID string, factory func() Component[P, M]) *Def[P, M] {
	return &Def[P, M]{typeID: typeID, factory: factory}
}

// New builds a component placeholder node carrying a props snapshot.
func (d *Def[P, M]) New(props P) vnode.Node {
	return &vnode.Component{Blueprint: d, Props: props}
}

// TypeID implements vnode.Blueprint.
func (d *Def[P, M]) TypeID() string { return d.typeID }

// Mount implements vnode.Blueprint: it creates the scope, runs Create,
// and performs the initial render.
func (d *Def[P, M]) Mount(host vnode.Host, props vnode.Props) (vnode.Mounted, vnode.RenderResult) {
	p, ok := props.(P)
	if !ok {
		err := fmt.Errorf("component %s: props snapshot is %T, want %T", d.typeID, props, *new(P))
		return nil, vnode.Failed(err)
	}

	s := &Scope[P, M]{
		comp:  d.factory(),
		host:  host,
		props: p,
		phase: phaseCreated,
	}
	return s, s.initialRender()
}
