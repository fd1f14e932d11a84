package reconcile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomui/loom/internal/scope"
	"github.com/loomui/loom/internal/testutil"
	"github.com/loomui/loom/internal/vnode"
)

type textProps struct {
	Label string
}

func (p textProps) Equal(other vnode.Props) bool {
	q, ok := other.(textProps)
	return ok && q == p
}

// echo renders its props label plus everything it has been told.
type echo struct {
	suffix string
}

func (e *echo) Create(textProps) {}

func (e *echo) Update(msg string) bool {
	e.suffix += msg
	return true
}

func (e *echo) View(p textProps) vnode.RenderResult {
	return vnode.Ready(vnode.NewElement("div", vnode.NewText(p.Label+e.suffix)))
}

var echoDef = scope.Define("test.echo", func() scope.Component[textProps, string] {
	return &echo{}
})

// scopeOf digs the live scope out of a mounted component record.
func scopeOf(t *testing.T, tree *Tree) *scope.Scope[textProps, string] {
	t.Helper()
	bc, ok := tree.root.(*bComponent)
	require.True(t, ok)
	s, ok := bc.mounted.(*scope.Scope[textProps, string])
	require.True(t, ok)
	return s
}

func TestComponentMountRenders(t *testing.T) {
	f := newFixture()

	_, err := f.r.Mount(echoDef.New(textProps{Label: "hi"}), f.mem.Root(), 0)
	require.NoError(t, err)

	assert.Equal(t, `<#root><div>"hi"</div></#root>`, f.mem.Render())
}

func TestComponentMessageRerenders(t *testing.T) {
	f := newFixture()

	tree, err := f.r.Mount(echoDef.New(textProps{Label: "hi"}), f.mem.Root(), 0)
	require.NoError(t, err)

	scopeOf(t, tree).Send("!")
	require.NoError(t, f.sched.Flush())

	assert.Equal(t, `<#root><div>"hi!"</div></#root>`, f.mem.Render())
}

func TestComponentPropsChangeRerenders(t *testing.T) {
	f := newFixture()

	tree, err := f.r.Mount(echoDef.New(textProps{Label: "one"}), f.mem.Root(), 0)
	require.NoError(t, err)

	require.NoError(t, tree.Patch(echoDef.New(textProps{Label: "two"})))
	require.NoError(t, f.sched.Flush())
	assert.Equal(t, `<#root><div>"two"</div></#root>`, f.mem.Render())

	// An equal snapshot produces no render and no surface traffic.
	f.rec.Reset()
	require.NoError(t, tree.Patch(echoDef.New(textProps{Label: "two"})))
	require.NoError(t, f.sched.Flush())
	assert.Empty(t, f.rec.Ops())
}

func TestComponentTypeChangeRemounts(t *testing.T) {
	other := scope.Define("test.other", func() scope.Component[textProps, string] {
		return &echo{}
	})

	f := newFixture()
	tree, err := f.r.Mount(echoDef.New(textProps{Label: "a"}), f.mem.Root(), 0)
	require.NoError(t, err)
	old := scopeOf(t, tree)

	require.NoError(t, tree.Patch(other.New(textProps{Label: "b"})))
	assert.Equal(t, `<#root><div>"b"</div></#root>`, f.mem.Render())

	// The old scope was destroyed: its callbacks go nowhere.
	f.rec.Reset()
	old.Send("!")
	require.NoError(t, f.sched.Flush())
	assert.Empty(t, f.rec.Ops())
}

func TestComponentDestroyedOnUnmount(t *testing.T) {
	f := newFixture()

	tree, err := f.r.Mount(echoDef.New(textProps{Label: "x"}), f.mem.Root(), 0)
	require.NoError(t, err)
	s := scopeOf(t, tree)

	require.NoError(t, tree.Unmount())
	assert.Equal(t, `<#root></#root>`, f.mem.Render())

	f.rec.Reset()
	s.Send("!")
	require.NoError(t, f.sched.Flush())
	assert.Empty(t, f.rec.Ops())
}

// flaky fails its render after being told to.
type flaky struct {
	broken bool
}

func (c *flaky) Create(textProps) {}

func (c *flaky) Update(msg string) bool {
	c.broken = msg == "break"
	return true
}

func (c *flaky) View(p textProps) vnode.RenderResult {
	if c.broken {
		return vnode.Failed(errors.New("view exploded"))
	}
	return vnode.Ready(vnode.NewText(p.Label))
}

func TestComponentRenderFailureKeepsOutput(t *testing.T) {
	def := scope.Define("test.flaky", func() scope.Component[textProps, string] {
		return &flaky{}
	})

	var failures []error
	f := newFixture(WithFailureHandler(func(err error) { failures = append(failures, err) }))

	tree, err := f.r.Mount(def.New(textProps{Label: "ok"}), f.mem.Root(), 0)
	require.NoError(t, err)
	require.Equal(t, `<#root>"ok"</#root>`, f.mem.Render())

	bc := tree.root.(*bComponent)
	bc.mounted.(*scope.Scope[textProps, string]).Send("break")
	require.NoError(t, f.sched.Flush())

	// Previous output stays mounted; the failure is reported out of band.
	assert.Equal(t, `<#root>"ok"</#root>`, f.mem.Render())
	assert.True(t, hasDiag(f.r, DiagRenderFailed))
	require.Len(t, failures, 1)
}

// gate suspends until its shared suspensions resolve, then renders its
// label. Instances are recreated per mount attempt, so the suspensions
// live outside the component.
type gate struct {
	label string
	susps []*vnode.Suspension
}

func (g *gate) Create(vnode.NoProps) {}

func (g *gate) Update(struct{}) bool { return false }

func (g *gate) View(vnode.NoProps) vnode.RenderResult {
	for _, s := range g.susps {
		if !s.Resolved() {
			return vnode.Pending(s)
		}
	}
	return vnode.Ready(vnode.NewText(g.label))
}

func gateDef(label string, susps ...*vnode.Suspension) *scope.Def[vnode.NoProps, struct{}] {
	return scope.Define("test.gate."+label, func() scope.Component[vnode.NoProps, struct{}] {
		return &gate{label: label, susps: susps}
	})
}

func suspenseTree(fallback string, primary ...vnode.Node) *vnode.Suspense {
	var p vnode.Node
	if len(primary) == 1 {
		p = primary[0]
	} else {
		p = vnode.NewElement("div", primary...)
	}
	return vnode.NewSuspense(p, vnode.NewText(fallback))
}

func TestTokenGeneratorOptionMintsDeterministicTokens(t *testing.T) {
	f := newFixture(WithTokenGenerator(vnode.NewFixedGenerator("susp-1", "susp-2")))

	first := f.r.NewSuspension()
	assert.Equal(t, "susp-1", first.Token())
	assert.Equal(t, "susp-2", f.r.NewSuspension().Token())

	// The fixed token flows through the real suspend path.
	tree, err := f.r.Mount(
		suspenseTree("loading", gateDef("ready", first).New(vnode.NoProps{})),
		f.mem.Root(), 0,
	)
	require.NoError(t, err)
	b := tree.root.(*bBoundary)
	assert.Equal(t, vnode.ModeFallback, b.mode)

	first.Handle().Resume()
	require.NoError(t, f.sched.Flush())
	assert.Equal(t, `<#root>"ready"</#root>`, f.mem.Render())
}

func TestTokenGeneratorRepeatingShared(t *testing.T) {
	f := newFixture(WithTokenGenerator(testutil.NewRepeatingTokenGenerator("shared")))

	// Every suspension shares the one token; resolution state stays
	// per-suspension regardless.
	a := f.r.NewSuspension()
	b := f.r.NewSuspension()
	require.Equal(t, a.Token(), b.Token())

	a.Handle().Resume()
	assert.True(t, a.Resolved())
	assert.False(t, b.Resolved())
}

func TestSuspenseFlipsToFallbackOnMount(t *testing.T) {
	f := newFixture()
	susp := f.r.NewSuspension()

	tree, err := f.r.Mount(
		suspenseTree("loading", gateDef("ready", susp).New(vnode.NoProps{})),
		f.mem.Root(), 0,
	)
	require.NoError(t, err)

	assert.Equal(t, `<#root>"loading"</#root>`, f.mem.Render())
	b := tree.root.(*bBoundary)
	assert.Equal(t, vnode.ModeFallback, b.mode)
	assert.True(t, f.r.Suspense().Pending(b.id))
	assert.Zero(t, f.sched.Pending())
}

func TestSuspenseResumeRemountsPrimary(t *testing.T) {
	f := newFixture()
	susp := f.r.NewSuspension()

	_, err := f.r.Mount(
		suspenseTree("loading", gateDef("ready", susp).New(vnode.NoProps{})),
		f.mem.Root(), 0,
	)
	require.NoError(t, err)

	susp.Handle().Resume()
	require.NoError(t, f.sched.Flush())
	assert.Equal(t, `<#root>"ready"</#root>`, f.mem.Render())

	// A second resume on a consumed token does nothing.
	f.rec.Reset()
	susp.Handle().Resume()
	require.NoError(t, f.sched.Flush())
	assert.Empty(t, f.rec.Ops())
}

func TestSuspenseReleaseActsAsResume(t *testing.T) {
	f := newFixture()
	susp := f.r.NewSuspension()

	_, err := f.r.Mount(
		suspenseTree("loading", gateDef("ready", susp).New(vnode.NoProps{})),
		f.mem.Root(), 0,
	)
	require.NoError(t, err)
	require.Equal(t, `<#root>"loading"</#root>`, f.mem.Render())

	susp.Handle().Release()
	require.NoError(t, f.sched.Flush())
	assert.Equal(t, `<#root>"ready"</#root>`, f.mem.Render())
}

func TestSuspenseResuspendGetsFreshGeneration(t *testing.T) {
	f := newFixture()
	first := f.r.NewSuspension()
	second := f.r.NewSuspension()

	_, err := f.r.Mount(
		suspenseTree("loading", gateDef("ready", first, second).New(vnode.NoProps{})),
		f.mem.Root(), 0,
	)
	require.NoError(t, err)
	require.Equal(t, `<#root>"loading"</#root>`, f.mem.Render())

	// First resume retries the primary, which suspends on the second
	// dependency and flips straight back.
	first.Handle().Resume()
	require.NoError(t, f.sched.Flush())
	require.Equal(t, `<#root>"loading"</#root>`, f.mem.Render())

	// The first token belongs to a consumed generation now.
	f.rec.Reset()
	first.Handle().Resume()
	require.NoError(t, f.sched.Flush())
	require.Empty(t, f.rec.Ops())

	second.Handle().Resume()
	require.NoError(t, f.sched.Flush())
	assert.Equal(t, `<#root>"ready"</#root>`, f.mem.Render())
}

func TestSuspenseTwoSuspendedChildren(t *testing.T) {
	f := newFixture()
	sa := f.r.NewSuspension()
	sb := f.r.NewSuspension()

	_, err := f.r.Mount(
		suspenseTree("loading",
			gateDef("a", sa).New(vnode.NoProps{}),
			gateDef("b", sb).New(vnode.NoProps{}),
		),
		f.mem.Root(), 0,
	)
	require.NoError(t, err)
	require.Equal(t, `<#root>"loading"</#root>`, f.mem.Render())

	// One child still pending: the retry flips back to the fallback.
	sa.Handle().Resume()
	require.NoError(t, f.sched.Flush())
	require.Equal(t, `<#root>"loading"</#root>`, f.mem.Render())

	sb.Handle().Resume()
	require.NoError(t, f.sched.Flush())
	assert.Equal(t, `<#root><div>"a" "b"</div></#root>`, f.mem.Render())
}

func TestOrphanSuspensionDiscarded(t *testing.T) {
	f := newFixture()
	susp := f.r.NewSuspension()

	// No boundary anywhere above the suspending component.
	_, err := f.r.Mount(gateDef("ready", susp).New(vnode.NoProps{}), f.mem.Root(), 0)
	require.NoError(t, err)

	assert.True(t, hasDiag(f.r, DiagOrphanSuspension))
	assert.Equal(t, `<#root>""</#root>`, f.mem.Render())

	// Resuming the orphan is harmless and schedules nothing.
	susp.Handle().Resume()
	require.NoError(t, f.sched.Flush())
	assert.Equal(t, `<#root>""</#root>`, f.mem.Render())
}

func TestDestroyedBoundaryIgnoresResume(t *testing.T) {
	f := newFixture()
	susp := f.r.NewSuspension()

	tree, err := f.r.Mount(
		suspenseTree("loading", gateDef("ready", susp).New(vnode.NoProps{})),
		f.mem.Root(), 0,
	)
	require.NoError(t, err)
	require.NoError(t, tree.Unmount())

	f.rec.Reset()
	susp.Handle().Resume()
	require.NoError(t, f.sched.Flush())
	assert.Empty(t, f.rec.Ops())
	assert.Equal(t, `<#root></#root>`, f.mem.Render())
}

func TestSuspensePatchWhileFallback(t *testing.T) {
	f := newFixture()
	susp := f.r.NewSuspension()
	primary := gateDef("ready", susp)

	tree, err := f.r.Mount(
		vnode.NewSuspense(primary.New(vnode.NoProps{}), vnode.NewText("loading")),
		f.mem.Root(), 0,
	)
	require.NoError(t, err)
	require.Equal(t, `<#root>"loading"</#root>`, f.mem.Render())

	// Patching while suspended diffs the fallback and keeps the new
	// primary template for the eventual resume.
	require.NoError(t, tree.Patch(
		vnode.NewSuspense(primary.New(vnode.NoProps{}), vnode.NewText("still loading")),
	))
	require.Equal(t, `<#root>"still loading"</#root>`, f.mem.Render())

	susp.Handle().Resume()
	require.NoError(t, f.sched.Flush())
	assert.Equal(t, `<#root>"ready"</#root>`, f.mem.Render())
}
