// Package scope implements per-component runtime state: the message
// inbox, the message→update→render cycle, and the callback surface that
// lets drivers (event handlers, timers, actors) feed messages in from
// any goroutine.
//
// Components are statically typed: a component is generic over its props
// type P and message type M, and its inbox is a []M with no runtime type
// inspection on the message path. The only type-erased seam is the
// Blueprint that embeds a component into a vnode tree, because node
// trees are heterogeneous by nature.
//
// Render cadence: every transition into the rendering state drains the
// entire current inbox as one batch, applies Update once per message,
// then renders at most once: a batch of N messages yields at most one
// render, and a batch where every Update returns false yields none.
//
// Lifecycle: Created → Rendering → Idle → (Rendering | Destroyed).
// Create runs exactly once. After Destroy, sends, callbacks, and
// suspension associations are silent no-ops; nothing panics.
package scope
