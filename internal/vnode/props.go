package vnode

// Props is the immutable property snapshot handed to a component. A
// snapshot is produced once by the parent's render and shared read-only
// with the child; implementations must treat the value as frozen after
// construction.
//
// Equal is the default changed-props policy: the scope skips a re-render
// when the incoming snapshot equals the previous one.
type Props interface {
	Equal(other Props) bool
}

// PropsEqual compares two snapshots, tolerating nil on either side.
// Two nil snapshots are equal; nil never equals non-nil.
func PropsEqual(a, b Props) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// NoProps is the snapshot for components that take no input.
type NoProps struct{}

// Equal reports whether other is also NoProps.
func (NoProps) Equal(other Props) bool {
	_, ok := other.(NoProps)
	return ok
}
