package actor

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomui/loom/internal/testutil"
)

type calcIn struct {
	A, B int
}

// calc is a worker that adds and records its lifecycle.
type calc struct {
	mu          sync.Mutex
	connects    []HandlerID
	disconnects []HandlerID
	destroyed   bool
	handled     int
	limit       int // Finished after this many messages; 0 means never
}

func (c *calc) Handle(link *Link[int], from HandlerID, in calcIn) {
	c.mu.Lock()
	c.handled++
	c.mu.Unlock()
	link.Respond(from, in.A+in.B)
}

func (c *calc) Connected(from HandlerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connects = append(c.connects, from)
}

func (c *calc) Disconnected(from HandlerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnects = append(c.disconnects, from)
}

func (c *calc) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroyed = true
}

func (c *calc) Finished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.limit > 0 && c.handled >= c.limit
}

func (c *calc) snapshot() (connects, disconnects int, destroyed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.connects), len(c.disconnects), c.destroyed
}

// track wires a definition whose factory records every instance it
// creates.
func track(name string, reach Reach, limit int) (*Definition[calcIn, int], func() []*calc) {
	var mu sync.Mutex
	var made []*calc
	def := Define(name, reach, func() Worker[calcIn, int] {
		w := &calc{limit: limit}
		mu.Lock()
		made = append(made, w)
		mu.Unlock()
		return w
	})
	return def, func() []*calc {
		mu.Lock()
		defer mu.Unlock()
		return append([]*calc(nil), made...)
	}
}

func TestContextSharedRefcount(t *testing.T) {
	exec := testutil.NewManualExecutor()
	reg := NewRegistry(exec)
	def, made := track("calc.shared", ReachContext, 0)

	var got []int
	b1, err := Connect(reg, def, func(out int) { got = append(got, out) }, nil)
	require.NoError(t, err)
	b2, err := Connect(reg, def, func(out int) { got = append(got, out) }, nil)
	require.NoError(t, err)
	exec.Pump()

	// Two bridges, one instance.
	require.Len(t, made(), 1)
	assert.Equal(t, 1, reg.Instances())
	connects, _, _ := made()[0].snapshot()
	assert.Equal(t, 2, connects)

	require.NoError(t, b1.Send(calcIn{A: 1, B: 2}))
	require.NoError(t, b2.Send(calcIn{A: 10, B: 20}))
	exec.Pump()
	assert.Equal(t, []int{3, 30}, got)

	// First disconnect keeps the instance live.
	b1.Close()
	exec.Pump()
	assert.Equal(t, 1, reg.Instances())
	_, _, destroyed := made()[0].snapshot()
	assert.False(t, destroyed)

	// Last disconnect tears it down.
	b2.Close()
	exec.Pump()
	assert.Equal(t, 0, reg.Instances())
	_, disconnects, destroyed := made()[0].snapshot()
	assert.Equal(t, 2, disconnects)
	assert.True(t, destroyed)
}

func TestContextReconnectCreatesFreshInstance(t *testing.T) {
	exec := testutil.NewManualExecutor()
	reg := NewRegistry(exec)
	def, made := track("calc.recreate", ReachContext, 0)

	b, err := Connect(reg, def, nil, nil)
	require.NoError(t, err)
	b.Close()
	exec.Pump()
	require.Equal(t, 0, reg.Instances())

	_, err = Connect(reg, def, nil, nil)
	require.NoError(t, err)
	exec.Pump()
	assert.Len(t, made(), 2)
}

func TestJobFreshPerBridge(t *testing.T) {
	exec := testutil.NewManualExecutor()
	reg := NewRegistry(exec)
	def, made := track("calc.job", ReachJob, 0)

	b1, err := Connect(reg, def, nil, nil)
	require.NoError(t, err)
	b2, err := Connect(reg, def, nil, nil)
	require.NoError(t, err)
	exec.Pump()

	require.Len(t, made(), 2)
	assert.Equal(t, 0, reg.Instances())

	b1.Close()
	exec.Pump()
	_, _, d0 := made()[0].snapshot()
	_, _, d1 := made()[1].snapshot()
	assert.True(t, d0)
	assert.False(t, d1)
	b2.Close()
	exec.Pump()
	_, _, d1 = made()[1].snapshot()
	assert.True(t, d1)
}

func TestJobFinisherClosesBridge(t *testing.T) {
	exec := testutil.NewManualExecutor()
	reg := NewRegistry(exec)
	def, made := track("calc.oneshot", ReachJob, 1)

	var closed []error
	b, err := Connect(reg, def, nil, func(err error) { closed = append(closed, err) })
	require.NoError(t, err)

	require.NoError(t, b.Send(calcIn{A: 2, B: 2}))
	exec.Pump()

	require.Len(t, closed, 1)
	assert.NoError(t, closed[0])
	_, _, destroyed := made()[0].snapshot()
	assert.True(t, destroyed)
	assert.ErrorIs(t, b.Send(calcIn{}), ErrBridgeClosed)
}

func TestPerBridgeOrdering(t *testing.T) {
	exec := testutil.NewManualExecutor()
	reg := NewRegistry(exec)
	def, _ := track("calc.order", ReachContext, 0)

	var got []int
	b, err := Connect(reg, def, func(out int) { got = append(got, out) }, nil)
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		require.NoError(t, b.Send(calcIn{A: i}))
	}
	exec.Pump()
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
}

func TestSendAfterCloseFails(t *testing.T) {
	exec := testutil.NewManualExecutor()
	reg := NewRegistry(exec)
	def, _ := track("calc.closed", ReachContext, 0)

	b, err := Connect(reg, def, nil, nil)
	require.NoError(t, err)
	b.Close()
	assert.ErrorIs(t, b.Send(calcIn{}), ErrBridgeClosed)
}

func TestDispatcherDropsResponses(t *testing.T) {
	exec := testutil.NewManualExecutor()
	reg := NewRegistry(exec)
	def, made := track("calc.dispatch", ReachContext, 0)

	d, err := OpenDispatcher(reg, def)
	require.NoError(t, err)

	require.NoError(t, d.Send(calcIn{A: 1, B: 1}))
	exec.Pump()

	w := made()[0]
	w.mu.Lock()
	handled := w.handled
	w.mu.Unlock()
	assert.Equal(t, 1, handled)

	d.Close()
	exec.Pump()
	assert.Equal(t, 0, reg.Instances())
}

func TestRegistryCloseTearsDownShared(t *testing.T) {
	exec := testutil.NewManualExecutor()
	reg := NewRegistry(exec)
	def, made := track("calc.teardown", ReachContext, 0)

	var closed []error
	_, err := Connect(reg, def, nil, func(err error) { closed = append(closed, err) })
	require.NoError(t, err)

	reg.Close()
	exec.Pump()

	require.Len(t, closed, 1)
	assert.ErrorIs(t, closed[0], ErrRegistryClosed)
	_, _, destroyed := made()[0].snapshot()
	assert.True(t, destroyed)

	_, err = Connect(reg, def, nil, nil)
	assert.ErrorIs(t, err, ErrRegistryClosed)
}

func TestDefinitionConflict(t *testing.T) {
	exec := testutil.NewManualExecutor()
	reg := NewRegistry(exec)

	intDef, _ := track("calc.conflict", ReachContext, 0)
	_, err := Connect(reg, intDef, nil, nil)
	require.NoError(t, err)

	strDef := Define("calc.conflict", ReachContext, func() Worker[string, string] {
		return nil
	})
	_, err = Connect(reg, strDef, nil, nil)

	var conflict *DefinitionConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "calc.conflict", conflict.Name)
}

// broadcaster responds to every bridge it has seen, not just the sender.
type broadcaster struct {
	mu   sync.Mutex
	seen []HandlerID
}

func (b *broadcaster) Handle(link *Link[string], from HandlerID, in string) {
	b.mu.Lock()
	seen := append([]HandlerID(nil), b.seen...)
	b.mu.Unlock()
	for _, id := range seen {
		link.Respond(id, in)
	}
}

func (b *broadcaster) Connected(from HandlerID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seen = append(b.seen, from)
}

func TestRespondToOtherBridges(t *testing.T) {
	exec := testutil.NewManualExecutor()
	reg := NewRegistry(exec)
	def := Define("broadcast", ReachContext, func() Worker[string, string] {
		return &broadcaster{}
	})

	var got1, got2 []string
	b1, err := Connect(reg, def, func(s string) { got1 = append(got1, s) }, nil)
	require.NoError(t, err)
	_, err = Connect(reg, def, func(s string) { got2 = append(got2, s) }, nil)
	require.NoError(t, err)
	exec.Pump()

	require.NoError(t, b1.Send("hello"))
	exec.Pump()

	assert.Equal(t, []string{"hello"}, got1)
	assert.Equal(t, []string{"hello"}, got2)
}
