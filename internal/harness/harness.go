package harness

import (
	"fmt"
	"strings"

	"github.com/loomui/loom/internal/reconcile"
	"github.com/loomui/loom/internal/scheduler"
	"github.com/loomui/loom/internal/surface"
)

// Result is everything one scenario run produced.
type Result struct {
	Scenario *Scenario

	// StepOps holds the recorded ops per step; index 0 is the mount.
	StepOps [][]surface.Op

	// Trace is the full labeled trace: one "-- step N" section per
	// step followed by a "-- final" rendition of the surface.
	Trace string

	// Render is the final canonical surface rendition.
	Render string

	// Diags are the diagnostics accumulated over the whole run.
	Diags []reconcile.Diag
}

// Run mounts the scenario's first tree on a fresh in-memory surface
// and patches through the remaining trees, recording every mutation.
func Run(s *Scenario) (*Result, error) {
	mem := surface.NewMemory()
	rec := surface.NewRecorder(mem)
	rec.Name(mem.Root(), "root")
	sched := scheduler.New()
	r := reconcile.New(rec, sched)

	res := &Result{Scenario: s}
	var trace strings.Builder

	takeStep := func(step int, label string) {
		ops := append([]surface.Op(nil), rec.Ops()...)
		rec.Reset()
		res.StepOps = append(res.StepOps, ops)
		fmt.Fprintf(&trace, "-- step %d (%s)\n", step, label)
		for _, op := range ops {
			trace.WriteString(op.String())
			trace.WriteByte('\n')
		}
	}

	root, err := s.Steps[0].build()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: step 0: %w", s.Name, err)
	}
	tree, err := r.Mount(root, mem.Root(), 0)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: mount: %w", s.Name, err)
	}
	takeStep(0, "mount")

	for i := 1; i < len(s.Steps); i++ {
		next, err := s.Steps[i].build()
		if err != nil {
			return nil, fmt.Errorf("scenario %s: step %d: %w", s.Name, i, err)
		}
		if err := tree.Patch(next); err != nil {
			return nil, fmt.Errorf("scenario %s: step %d: %w", s.Name, i, err)
		}
		takeStep(i, "patch")
	}

	res.Render = mem.Render()
	trace.WriteString("-- final\n")
	trace.WriteString(res.Render)
	trace.WriteByte('\n')
	res.Trace = trace.String()
	res.Diags = r.Diags()
	return res, nil
}
