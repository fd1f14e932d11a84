package actor

import (
	"errors"
	"sync"
)

// ErrBridgeClosed is returned by Send after the bridge closed.
var ErrBridgeClosed = errors.New("bridge closed")

// ErrRegistryClosed is returned when connecting through a closed
// registry.
var ErrRegistryClosed = errors.New("actor registry closed")

// instance is the runtime behind one or more bridges, either on the
// host executor or on a worker goroutine.
type instance[In, Out any] interface {
	connect(onOut func(Out), onClosed func(error), release func()) *Bridge[In, Out]
	send(id HandlerID, in In) error
	disconnect(id HandlerID)
	destroy(reason error)
}

// Bridge is a bidirectional typed channel between host code and one
// actor instance.
//
// Thread-safety: Send and Close are safe from any goroutine. The onOut
// and onClosed callbacks run on the host thread.
type Bridge[In, Out any] struct {
	id      HandlerID
	inst    instance[In, Out]
	release func()

	mu       sync.Mutex
	closed   bool
	onOut    func(Out)
	onClosed func(error)
}

// ID returns the bridge's identity on its instance.
func (b *Bridge[In, Out]) ID() HandlerID { return b.id }

// Send delivers in to the instance. Messages sent on one bridge arrive
// in send order.
func (b *Bridge[In, Out]) Send(in In) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrBridgeClosed
	}
	return b.inst.send(b.id, in)
}

// Close disconnects from the instance. For shared reaches this drops
// one reference; the last bridge out tears the instance down. For fresh
// reaches it destroys the instance. Idempotent; the onClosed callback
// does not fire for a voluntary close.
func (b *Bridge[In, Out]) Close() {
	if !b.markClosed() {
		return
	}
	b.inst.disconnect(b.id)
	b.release()
}

func (b *Bridge[In, Out]) markClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	b.closed = true
	return true
}

// deliver hands one outbound message to the consumer. Host thread only.
func (b *Bridge[In, Out]) deliver(out Out) {
	b.mu.Lock()
	closed, onOut := b.closed, b.onOut
	b.mu.Unlock()
	if closed || onOut == nil {
		return
	}
	onOut(out)
}

// complete is an instance-initiated closure: decode failure, worker
// self-termination, or registry teardown. err is nil for a clean close.
func (b *Bridge[In, Out]) complete(err error) {
	if !b.markClosed() {
		return
	}
	if b.onClosed != nil {
		b.onClosed(err)
	}
	b.release()
}

// Connect opens a bridge to an instance of def, creating the instance
// if the reach policy requires one. onOut receives every message the
// instance addresses to this bridge; onClosed fires exactly once if the
// instance side closes the bridge. Either callback may be nil.
func Connect[In, Out any](r *Registry, def *Definition[In, Out], onOut func(Out), onClosed func(error)) (*Bridge[In, Out], error) {
	if def.reach.shared() {
		return connectShared(r, def, onOut, onClosed)
	}
	if r.isClosed() {
		return nil, ErrRegistryClosed
	}
	inst := newInstance(r.exec, def)
	release := func() { inst.destroy(nil) }
	return inst.connect(onOut, onClosed, release), nil
}

func connectShared[In, Out any](r *Registry, def *Definition[In, Out], onOut func(Out), onClosed func(error)) (*Bridge[In, Out], error) {
	key := sharedKey{name: def.name, reach: def.reach}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRegistryClosed
	}
	entry, ok := r.shared[key]
	if !ok {
		inst := newInstance(r.exec, def)
		entry = &sharedEntry{inst: inst, destroy: inst.destroy}
		r.shared[key] = entry
	}
	inst, ok := entry.inst.(instance[In, Out])
	if !ok {
		r.mu.Unlock()
		return nil, &DefinitionConflictError{Name: def.name, Reach: def.reach}
	}
	entry.refs++
	r.mu.Unlock()

	release := func() { r.releaseShared(key) }
	return inst.connect(onOut, onClosed, release), nil
}

func newInstance[In, Out any](exec Executor, def *Definition[In, Out]) instance[In, Out] {
	if def.reach.remote() {
		return newRemoteInstance(exec, def)
	}
	return newLocalInstance(exec, def)
}

// Dispatcher is the send-only channel to an actor instance. Responses
// the instance addresses to it are dropped.
type Dispatcher[In any] struct {
	send    func(In) error
	closeFn func()
}

// OpenDispatcher opens a send-only connection to an instance of def
// under the same reach and lifetime rules as Connect.
func OpenDispatcher[In, Out any](r *Registry, def *Definition[In, Out]) (*Dispatcher[In], error) {
	b, err := Connect(r, def, nil, nil)
	if err != nil {
		return nil, err
	}
	return &Dispatcher[In]{send: b.Send, closeFn: b.Close}, nil
}

// Send delivers in to the instance.
func (d *Dispatcher[In]) Send(in In) error { return d.send(in) }

// Close disconnects. Idempotent.
func (d *Dispatcher[In]) Close() { d.closeFn() }
