package harness

import (
	"fmt"

	"github.com/loomui/loom/internal/surface"
)

// Assertion types.
const (
	// AssertOpCount checks how many ops of one kind a step (or the
	// whole run) emitted.
	AssertOpCount = "op_count"
	// AssertRender checks the final surface rendition.
	AssertRender = "render"
	// AssertDiag checks how many diagnostics of one code were emitted.
	AssertDiag = "diag"
)

// Assertion is one declarative check over a scenario result.
type Assertion struct {
	Type string `yaml:"type"`

	// op_count fields. Step limits the count to one step; nil means
	// the whole run. Step 0 is the mount.
	Op    string `yaml:"op,omitempty"`
	Count *int   `yaml:"count,omitempty"`
	Step  *int   `yaml:"step,omitempty"`

	// render field.
	Equals string `yaml:"equals,omitempty"`

	// diag field.
	Code string `yaml:"code,omitempty"`
}

var opKinds = map[string]surface.OpKind{
	string(surface.OpCreateElement):   surface.OpCreateElement,
	string(surface.OpSetAttribute):    surface.OpSetAttribute,
	string(surface.OpRemoveAttribute): surface.OpRemoveAttribute,
	string(surface.OpInsertChild):     surface.OpInsertChild,
	string(surface.OpMoveChild):       surface.OpMoveChild,
	string(surface.OpRemoveChild):     surface.OpRemoveChild,
	string(surface.OpCreateText):      surface.OpCreateText,
	string(surface.OpSetText):         surface.OpSetText,
}

func validateAssertion(a *Assertion, steps int) error {
	switch a.Type {
	case AssertOpCount:
		if _, ok := opKinds[a.Op]; !ok {
			return fmt.Errorf("unknown op %q", a.Op)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("op_count requires a non-negative count")
		}
		if a.Step != nil && (*a.Step < 0 || *a.Step >= steps) {
			return fmt.Errorf("step %d out of range [0, %d)", *a.Step, steps)
		}
		return nil

	case AssertRender:
		if a.Equals == "" {
			return fmt.Errorf("render requires equals")
		}
		return nil

	case AssertDiag:
		if a.Code == "" {
			return fmt.Errorf("diag requires code")
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("diag requires a non-negative count")
		}
		return nil

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// Check evaluates the scenario's assertions against the result and
// returns the first failure.
func (res *Result) Check() error {
	for i := range res.Scenario.Assertions {
		a := &res.Scenario.Assertions[i]
		if err := res.check(a); err != nil {
			return fmt.Errorf("assertion %d: %w", i, err)
		}
	}
	return nil
}

func (res *Result) check(a *Assertion) error {
	switch a.Type {
	case AssertOpCount:
		kind := opKinds[a.Op]
		got := 0
		for step, ops := range res.StepOps {
			if a.Step != nil && *a.Step != step {
				continue
			}
			for _, op := range ops {
				if op.Kind == kind {
					got++
				}
			}
		}
		if got != *a.Count {
			return fmt.Errorf("op %s: got %d, want %d", a.Op, got, *a.Count)
		}
		return nil

	case AssertRender:
		if res.Render != a.Equals {
			return fmt.Errorf("render: got %s, want %s", res.Render, a.Equals)
		}
		return nil

	case AssertDiag:
		got := 0
		for _, d := range res.Diags {
			if string(d.Code) == a.Code {
				got++
			}
		}
		if got != *a.Count {
			return fmt.Errorf("diag %s: got %d, want %d", a.Code, got, *a.Count)
		}
		return nil

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}
