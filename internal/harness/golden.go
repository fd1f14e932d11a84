package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden loads the scenario at path, runs it, evaluates its
// assertions, and compares the trace against the golden file named
// after the scenario. Run with -update to regenerate goldens.
func RunWithGolden(t *testing.T, path string) *Result {
	t.Helper()

	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	res, err := Run(s)
	if err != nil {
		t.Fatalf("run scenario: %v", err)
	}
	if err := res.Check(); err != nil {
		t.Errorf("scenario %s: %v", s.Name, err)
	}
	AssertTrace(t, s.Name, res)
	return res
}

// AssertTrace compares the result's trace against the golden file for
// name under testdata/golden.
func AssertTrace(t *testing.T, name string, res *Result) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(res.Trace))
}
