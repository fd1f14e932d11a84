package actor

// Reach is the instance sharing and placement policy of a worker type.
type Reach int

const (
	// ReachContext shares one instance on the host executor.
	ReachContext Reach = iota + 1
	// ReachJob creates a fresh instance per bridge on the host executor.
	ReachJob
	// ReachPublic shares one instance on a dedicated worker goroutine.
	ReachPublic
	// ReachPrivate creates a fresh instance per bridge on a dedicated
	// worker goroutine.
	ReachPrivate
)

// String returns the reach name for diagnostics.
func (r Reach) String() string {
	switch r {
	case ReachContext:
		return "context"
	case ReachJob:
		return "job"
	case ReachPublic:
		return "public"
	case ReachPrivate:
		return "private"
	default:
		return "unknown"
	}
}

// shared reports whether instances of this reach are shared across
// bridges and therefore reference-counted in the registry.
func (r Reach) shared() bool {
	return r == ReachContext || r == ReachPublic
}

// remote reports whether instances of this reach run on a dedicated
// worker goroutine behind the serialization boundary.
func (r Reach) remote() bool {
	return r == ReachPublic || r == ReachPrivate
}
