package testutil

import "sync"

// ManualExecutor collects posted functions and runs them only when the
// test pumps it. It stands in for the scheduler's cross-thread mailbox
// so tests control exactly when host-thread work happens.
//
// Thread-safety: Post is safe from any goroutine. Pump must be called
// from the test goroutine only.
type ManualExecutor struct {
	mu  sync.Mutex
	fns []func()
}

// NewManualExecutor creates an empty executor.
func NewManualExecutor() *ManualExecutor {
	return &ManualExecutor{}
}

// Post implements the actor executor contract. Never fails.
func (e *ManualExecutor) Post(fn func()) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fns = append(e.fns, fn)
	return nil
}

// PendingCount returns how many posted functions await a pump.
func (e *ManualExecutor) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.fns)
}

// Pump runs everything posted so far, including work posted while
// pumping, and returns how many functions ran.
func (e *ManualExecutor) Pump() int {
	ran := 0
	for {
		e.mu.Lock()
		fns := e.fns
		e.fns = nil
		e.mu.Unlock()
		if len(fns) == 0 {
			return ran
		}
		for _, fn := range fns {
			fn()
			ran++
		}
	}
}
