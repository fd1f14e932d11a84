package actor

// Executor hands work to the host thread. The render scheduler's Post
// satisfies it; tests substitute a manual pump.
type Executor interface {
	Post(fn func()) error
}

// Definition declares an actor type: its registry name, its reach, and
// the instance factory. One Definition serves any number of bridges.
type Definition[In, Out any] struct {
	name    string
	reach   Reach
	factory func() Worker[In, Out]
}

// Define declares an actor type. name is the registry identity for
// shared reaches: two definitions with the same (name, reach) resolve
// to the same shared instance, so names must be unique per worker type.
func Define[In, Out any](name string, reach Reach, factory func() Worker[In, Out]) *Definition[In, Out] {
	return &Definition[In, Out]{name: name, reach: reach, factory: factory}
}

// Name returns the registry identity.
func (d *Definition[In, Out]) Name() string { return d.name }

// Reach returns the sharing and placement policy.
func (d *Definition[In, Out]) Reach() Reach { return d.reach }
