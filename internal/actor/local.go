package actor

import (
	"fmt"
	"log/slog"
	"sync"
)

// localInstance runs a worker on the host executor (Context and Job
// reach). Messages pass by value; every worker interaction happens in a
// posted closure, so the worker itself is single-threaded.
type localInstance[In, Out any] struct {
	exec Executor
	def  *Definition[In, Out]

	mu        sync.Mutex
	bridges   map[HandlerID]*Bridge[In, Out]
	next      HandlerID
	destroyed bool

	// Host thread only after construction.
	worker Worker[In, Out]
	link   *Link[Out]
}

func newLocalInstance[In, Out any](exec Executor, def *Definition[In, Out]) *localInstance[In, Out] {
	li := &localInstance[In, Out]{
		exec:    exec,
		def:     def,
		bridges: make(map[HandlerID]*Bridge[In, Out]),
		worker:  def.factory(),
	}
	li.link = &Link[Out]{respond: li.respond}
	slog.Debug("actor instance created", "actor", def.name, "reach", def.reach.String())
	return li
}

func (li *localInstance[In, Out]) connect(onOut func(Out), onClosed func(error), release func()) *Bridge[In, Out] {
	li.mu.Lock()
	li.next++
	id := li.next
	b := &Bridge[In, Out]{
		id:       id,
		inst:     li,
		release:  release,
		onOut:    onOut,
		onClosed: onClosed,
	}
	li.bridges[id] = b
	li.mu.Unlock()

	li.post(func() {
		if c, ok := li.worker.(ConnectedHandler); ok {
			c.Connected(id)
		}
	})
	return b
}

func (li *localInstance[In, Out]) send(id HandlerID, in In) error {
	err := li.exec.Post(func() {
		li.mu.Lock()
		_, live := li.bridges[id]
		dead := li.destroyed
		li.mu.Unlock()
		if dead || !live {
			return
		}
		li.worker.Handle(li.link, id, in)
		li.checkFinished()
	})
	if err != nil {
		return fmt.Errorf("actor %q: %w", li.def.name, err)
	}
	return nil
}

// respond delivers one reply. Host thread only, from within Handle.
func (li *localInstance[In, Out]) respond(to HandlerID, out Out) {
	li.mu.Lock()
	b := li.bridges[to]
	li.mu.Unlock()
	if b != nil {
		b.deliver(out)
	}
}

func (li *localInstance[In, Out]) disconnect(id HandlerID) {
	li.mu.Lock()
	delete(li.bridges, id)
	li.mu.Unlock()

	li.post(func() {
		if d, ok := li.worker.(DisconnectedHandler); ok {
			d.Disconnected(id)
		}
	})
}

func (li *localInstance[In, Out]) destroy(reason error) {
	li.mu.Lock()
	if li.destroyed {
		li.mu.Unlock()
		return
	}
	li.destroyed = true
	remaining := make([]*Bridge[In, Out], 0, len(li.bridges))
	for _, b := range li.bridges {
		remaining = append(remaining, b)
	}
	li.bridges = make(map[HandlerID]*Bridge[In, Out])
	li.mu.Unlock()

	slog.Debug("actor instance destroyed", "actor", li.def.name, "reach", li.def.reach.String())
	li.post(func() {
		if d, ok := li.worker.(Destroyer); ok {
			d.Destroy()
		}
	})
	for _, b := range remaining {
		b.complete(reason)
	}
}

// checkFinished applies Job self-termination. Host thread only.
func (li *localInstance[In, Out]) checkFinished() {
	if li.def.reach.shared() {
		return
	}
	f, ok := li.worker.(Finisher)
	if !ok || !f.Finished() {
		return
	}

	li.mu.Lock()
	remaining := make([]*Bridge[In, Out], 0, len(li.bridges))
	for _, b := range li.bridges {
		remaining = append(remaining, b)
	}
	li.mu.Unlock()

	slog.Debug("actor finished", "actor", li.def.name)
	for _, b := range remaining {
		b.complete(nil)
	}
}

func (li *localInstance[In, Out]) post(fn func()) {
	if err := li.exec.Post(fn); err != nil {
		slog.Debug("actor event dropped: executor closed", "actor", li.def.name)
	}
}
