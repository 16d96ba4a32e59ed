package selftests

import (
	"github.com/launchdarkly/testbench/framework/bench"
)

// Expectations keeps track of cases that were supposed to fail.
type Expectations struct {
	// FailedToFail is the number of MustFail blocks in which some case passed.
	FailedToFail int
}

// OK returns true if every case that was supposed to fail did so.
func (e *Expectations) OK() bool {
	return e.FailedToFail == 0
}

// MustFail runs declarations that are expected to contain only failing cases, and reports
// whether that was true.
func (e *Expectations) MustFail(g *bench.G, declare func()) {
	total, failed := g.Counts()
	passedBefore := total - failed
	declare()
	total, failed = g.Counts()
	if total-failed == passedBefore {
		g.Note(true, "This test was supposed to fail and did so")
		return
	}
	g.Note(false, "This test was supposed to fail and didn't")
	e.FailedToFail++
}
