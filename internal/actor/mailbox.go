package actor

import "sync"

// mailbox is the unbounded FIFO of serialized envelopes feeding one
// worker goroutine. Closing stops intake; already-queued messages still
// drain.
//
// Thread-safety: all methods are safe for concurrent use.
type mailbox struct {
	mu     sync.Mutex
	items  [][]byte
	closed bool
	signal chan struct{} // availability (buffered, size 1)
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

// push appends one message. Returns false after close.
func (m *mailbox) push(raw []byte) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.items = append(m.items, raw)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
	return true
}

// pop removes the oldest message.
func (m *mailbox) pop() ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.items) == 0 {
		return nil, false
	}
	raw := m.items[0]
	m.items = m.items[1:]
	return raw, true
}

// wait returns a channel that signals availability or closure.
func (m *mailbox) wait() <-chan struct{} { return m.signal }

// isClosed reports whether intake has stopped.
func (m *mailbox) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// close stops intake and wakes a blocked worker.
func (m *mailbox) close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()
	close(m.signal)
}
