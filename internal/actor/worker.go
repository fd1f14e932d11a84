package actor

// HandlerID identifies one connected bridge from the instance's point of
// view. IDs are unique per instance, not globally.
type HandlerID uint64

// Worker is user actor logic, generic over an inbound message type In
// and an outbound message type Out. The instance owns whatever private
// state it needs; the runtime never looks inside.
//
// Handle processes one inbound message. from identifies the bridge that
// sent it; replies go back through link, addressed by HandlerID, so a
// worker may respond to a bridge other than the sender.
type Worker[In, Out any] interface {
	Handle(link *Link[Out], from HandlerID, in In)
}

// ConnectedHandler is implemented by workers that want to observe a
// bridge attaching.
type ConnectedHandler interface {
	Connected(from HandlerID)
}

// DisconnectedHandler is implemented by workers that want to observe a
// bridge detaching.
type DisconnectedHandler interface {
	Disconnected(from HandlerID)
}

// Destroyer is implemented by workers that need teardown when their
// instance is discarded.
type Destroyer interface {
	Destroy()
}

// Finisher is implemented by Job and Private workers that terminate
// themselves. The runtime consults Finished after every Handle; once it
// reports true the instance is destroyed and its bridges close cleanly.
// Shared instances (Context, Public) never self-terminate.
type Finisher interface {
	Finished() bool
}

// Link is the worker's reply channel. For host-executor instances a
// respond delivers directly; for worker-goroutine instances it crosses
// back to the host as a serialized envelope.
type Link[Out any] struct {
	respond func(to HandlerID, out Out)
}

// Respond delivers out to the bridge identified by to. Unknown or
// already-closed targets are dropped.
func (l *Link[Out]) Respond(to HandlerID, out Out) {
	l.respond(to, out)
}
