package actor

import (
	"fmt"
	"log/slog"
	"sync"
)

// remoteInstance runs a worker on its own goroutine (Public and Private
// reach). The host and the worker share no memory: every inbound
// message is an encoded envelope in the mailbox, every reply crosses
// back as an encoded envelope through the executor.
type remoteInstance[In, Out any] struct {
	exec Executor
	def  *Definition[In, Out]
	mail *mailbox

	mu        sync.Mutex
	bridges   map[HandlerID]*Bridge[In, Out]
	next      HandlerID
	destroyed bool
}

func newRemoteInstance[In, Out any](exec Executor, def *Definition[In, Out]) *remoteInstance[In, Out] {
	ri := &remoteInstance[In, Out]{
		exec:    exec,
		def:     def,
		mail:    newMailbox(),
		bridges: make(map[HandlerID]*Bridge[In, Out]),
	}
	slog.Debug("actor worker starting", "actor", def.name, "reach", def.reach.String())
	go ri.run()
	return ri
}

func (ri *remoteInstance[In, Out]) connect(onOut func(Out), onClosed func(error), release func()) *Bridge[In, Out] {
	ri.mu.Lock()
	ri.next++
	id := ri.next
	b := &Bridge[In, Out]{
		id:       id,
		inst:     ri,
		release:  release,
		onOut:    onOut,
		onClosed: onClosed,
	}
	ri.bridges[id] = b
	ri.mu.Unlock()

	ri.mail.push(EncodeEnvelope(KindConnected, id, nil))
	return b
}

func (ri *remoteInstance[In, Out]) send(id HandlerID, in In) error {
	payload, err := marshalPayload(in)
	if err != nil {
		return fmt.Errorf("actor %q: %w", ri.def.name, err)
	}
	if !ri.mail.push(EncodeEnvelope(KindRequest, id, payload)) {
		return ErrBridgeClosed
	}
	return nil
}

func (ri *remoteInstance[In, Out]) disconnect(id HandlerID) {
	ri.mu.Lock()
	delete(ri.bridges, id)
	ri.mu.Unlock()

	ri.mail.push(EncodeEnvelope(KindDisconnected, id, nil))
}

func (ri *remoteInstance[In, Out]) destroy(reason error) {
	ri.mu.Lock()
	if ri.destroyed {
		ri.mu.Unlock()
		return
	}
	ri.destroyed = true
	remaining := make([]*Bridge[In, Out], 0, len(ri.bridges))
	for _, b := range ri.bridges {
		remaining = append(remaining, b)
	}
	ri.bridges = make(map[HandlerID]*Bridge[In, Out])
	ri.mu.Unlock()

	// Queued envelopes still drain before the worker exits.
	ri.mail.close()
	slog.Debug("actor worker stopping", "actor", ri.def.name)
	for _, b := range remaining {
		b.complete(reason)
	}
}

// run is the worker goroutine: the only place the worker value is ever
// touched after construction.
func (ri *remoteInstance[In, Out]) run() {
	w := ri.def.factory()
	link := &Link[Out]{respond: ri.respond}
	finished := false

	for {
		raw, ok := ri.mail.pop()
		if !ok {
			if ri.mail.isClosed() {
				break
			}
			<-ri.mail.wait()
			continue
		}

		env, err := DecodeEnvelope(raw)
		if err != nil {
			// The bridge the message belonged to is unknowable, so
			// every bridge on the instance fails.
			slog.Error("actor envelope decode failed",
				"actor", ri.def.name,
				"error", err,
			)
			ri.failAll(err)
			break
		}

		switch env.Kind {
		case KindConnected:
			if c, ok := w.(ConnectedHandler); ok {
				c.Connected(env.From)
			}
		case KindDisconnected:
			if d, ok := w.(DisconnectedHandler); ok {
				d.Disconnected(env.From)
			}
		case KindRequest:
			if finished {
				continue
			}
			in, err := unmarshalPayload[In](env.Payload)
			if err != nil {
				ri.closeBridge(env.From, err)
				continue
			}
			w.Handle(link, env.From, in)
			if !ri.def.reach.shared() {
				if f, ok := w.(Finisher); ok && f.Finished() {
					finished = true
					ri.finishAll()
				}
			}
		}
	}

	if d, ok := w.(Destroyer); ok {
		d.Destroy()
	}
}

// respond serializes one reply and hands it to the host. Worker
// goroutine only.
func (ri *remoteInstance[In, Out]) respond(to HandlerID, out Out) {
	payload, err := marshalPayload(out)
	if err != nil {
		ri.closeBridge(to, err)
		return
	}
	ri.toHost(EncodeEnvelope(KindResponse, to, payload))
}

// closeBridge tells the host that the instance closed one bridge.
// Worker goroutine only.
func (ri *remoteInstance[In, Out]) closeBridge(id HandlerID, reason error) {
	ri.toHost(EncodeEnvelope(KindDisconnected, id, encodeReason(reason)))
}

// finishAll closes every bridge cleanly after worker self-termination.
func (ri *remoteInstance[In, Out]) finishAll() {
	ri.mu.Lock()
	ids := make([]HandlerID, 0, len(ri.bridges))
	for id := range ri.bridges {
		ids = append(ids, id)
	}
	ri.mu.Unlock()

	slog.Debug("actor finished", "actor", ri.def.name)
	for _, id := range ids {
		ri.closeBridge(id, nil)
	}
}

// failAll closes every bridge with the fatal transport error.
func (ri *remoteInstance[In, Out]) failAll(reason error) {
	ri.mu.Lock()
	ids := make([]HandlerID, 0, len(ri.bridges))
	for id := range ri.bridges {
		ids = append(ids, id)
	}
	ri.mu.Unlock()

	for _, id := range ids {
		ri.closeBridge(id, reason)
	}
}

func (ri *remoteInstance[In, Out]) toHost(raw []byte) {
	if err := ri.exec.Post(func() { ri.deliverToHost(raw) }); err != nil {
		slog.Debug("actor reply dropped: executor closed", "actor", ri.def.name)
	}
}

// deliverToHost routes one instance-to-host envelope. Host thread only.
func (ri *remoteInstance[In, Out]) deliverToHost(raw []byte) {
	env, err := DecodeEnvelope(raw)
	if err != nil {
		slog.Error("actor reply decode failed", "actor", ri.def.name, "error", err)
		return
	}

	ri.mu.Lock()
	b := ri.bridges[env.From]
	ri.mu.Unlock()
	if b == nil {
		return
	}

	switch env.Kind {
	case KindResponse:
		out, err := unmarshalPayload[Out](env.Payload)
		if err != nil {
			ri.dropBridge(env.From)
			b.complete(fmt.Errorf("actor %q: %w", ri.def.name, err))
			return
		}
		b.deliver(out)
	case KindDisconnected:
		ri.dropBridge(env.From)
		b.complete(decodeReason(env.Payload))
	}
}

func (ri *remoteInstance[In, Out]) dropBridge(id HandlerID) {
	ri.mu.Lock()
	delete(ri.bridges, id)
	ri.mu.Unlock()
}
