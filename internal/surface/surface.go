package surface

// Handle is an opaque reference to a mounted surface node. Handles are
// minted by the surface and never inspected by the reconciler.
type Handle any

// Surface is the mutation interface between the reconciler and the
// rendering surface. All calls happen on the UI goroutine.
type Surface interface {
	// CreateElement creates a detached element node.
	CreateElement(tag string) (Handle, error)

	// SetAttribute adds or updates one attribute.
	SetAttribute(h Handle, key, value string) error

	// RemoveAttribute removes one attribute. Removing an absent key is
	// not an error.
	RemoveAttribute(h Handle, key string) error

	// InsertChild inserts child under parent at index, shifting later
	// siblings right.
	InsertChild(parent, child Handle, index int) error

	// MoveChild detaches child from its current position under parent
	// and reinserts it at index (interpreted after the detach).
	MoveChild(parent, child Handle, index int) error

	// RemoveChild detaches and discards child.
	RemoveChild(parent, child Handle) error

	// CreateText creates a detached text node.
	CreateText(value string) (Handle, error)

	// SetText replaces the content of a text node.
	SetText(h Handle, value string) error
}
