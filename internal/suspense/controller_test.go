package suspense

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomui/loom/internal/scheduler"
	"github.com/loomui/loom/internal/vnode"
)

type retryUnit struct {
	id   uint64
	runs int
}

func (u *retryUnit) TaskID() uint64 { return u.id }
func (u *retryUnit) Depth() int     { return 0 }
func (u *retryUnit) Run()           { u.runs++ }

func TestController_ResumeSchedulesExactlyOneRetry(t *testing.T) {
	sched := scheduler.New()
	c := NewController(sched)

	retry := &retryUnit{id: 1}
	s := vnode.NewSuspension("tok")
	c.Suspend(1, retry, s)

	require.True(t, c.Pending(1))
	assert.Equal(t, 0, sched.Pending(), "no work scheduled until resume")

	h := s.Handle()
	h.Resume()
	h.Resume()

	assert.Equal(t, 1, sched.Pending())
	require.NoError(t, sched.Flush())
	assert.Equal(t, 1, retry.runs)
	assert.False(t, c.Pending(1))
}

func TestController_MultipleSuspensionsOneGeneration(t *testing.T) {
	sched := scheduler.New()
	c := NewController(sched)

	retry := &retryUnit{id: 2}
	s1 := vnode.NewSuspension("tok-1")
	s2 := vnode.NewSuspension("tok-2")
	c.Suspend(2, retry, s1, s2)

	s1.Handle().Resume()
	s2.Handle().Resume()

	require.NoError(t, sched.Flush())
	assert.Equal(t, 1, retry.runs, "second resolution in the same generation is stale")
}

func TestController_ReSuspendUsesFreshGeneration(t *testing.T) {
	sched := scheduler.New()
	c := NewController(sched)

	retry := &retryUnit{id: 3}
	s1 := vnode.NewSuspension("gen-1")
	c.Suspend(3, retry, s1)
	s1.Handle().Resume()
	require.NoError(t, sched.Flush())
	require.Equal(t, 1, retry.runs)

	// The retry failed again: a new suspension, new generation.
	s2 := vnode.NewSuspension("gen-2")
	c.Suspend(3, retry, s2)

	// A duplicate handle from generation 1 must not resume generation 2.
	s1.Handle().Resume()
	require.NoError(t, sched.Flush())
	assert.Equal(t, 1, retry.runs, "stale handle never resumes a boundary twice")

	s2.Handle().Resume()
	require.NoError(t, sched.Flush())
	assert.Equal(t, 2, retry.runs)
}

func TestController_ReleaseActsAsImplicitResume(t *testing.T) {
	sched := scheduler.New()
	c := NewController(sched)

	retry := &retryUnit{id: 4}
	s := vnode.NewSuspension("tok")
	c.Suspend(4, retry, s)

	s.Handle().Release()
	require.NoError(t, sched.Flush())
	assert.Equal(t, 1, retry.runs)
}

func TestController_ResumeAfterDestroyIsNoOp(t *testing.T) {
	sched := scheduler.New()
	c := NewController(sched)

	retry := &retryUnit{id: 5}
	s := vnode.NewSuspension("tok")
	c.Suspend(5, retry, s)
	c.Destroy(5)

	s.Handle().Resume()
	require.NoError(t, sched.Flush())
	assert.Equal(t, 0, retry.runs)
	assert.False(t, c.Pending(5))
}

func TestController_ResolutionBeforeSuspendRegistration(t *testing.T) {
	sched := scheduler.New()
	c := NewController(sched)

	// The async completion wins the race: the suspension resolves
	// before the controller binds it.
	s := vnode.NewSuspension("tok")
	s.Handle().Resume()

	retry := &retryUnit{id: 6}
	c.Suspend(6, retry, s)

	require.NoError(t, sched.Flush())
	assert.Equal(t, 1, retry.runs, "wake-up must not be lost")
}
