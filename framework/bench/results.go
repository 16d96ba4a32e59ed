package bench

import (
	"strings"

	"golang.org/x/exp/slices"
)

// Results is the outcome of a whole test run.
type Results struct {
	// Total is the number of cases that were executed.
	Total int

	// Failed is the number of executed cases that did not pass.
	Failed int

	// Tests contains every executed case, in execution order.
	Tests []CaseResult

	// Failures contains the subset of Tests that failed.
	Failures []CaseResult

	// Skipped contains cases that were declared but not executed because of the filter.
	Skipped []CaseResult
}

// CaseResult describes one declared case.
type CaseResult struct {
	TestID  TestID
	Verdict Verdict
}

// OK returns true if no executed case failed.
func (r Results) OK() bool {
	return r.Failed == 0
}

// ExitCode is the process exit code that corresponds to these results: 0 if every executed case
// passed, 1 otherwise.
func (r Results) ExitCode() int {
	if r.OK() {
		return 0
	}
	return 1
}

// TestID is the path of group and case names that leads to a scope.
type TestID []string

func (t TestID) String() string {
	return strings.Join(t, "/")
}

// Plus returns a new TestID with name appended. The original is not modified.
func (t TestID) Plus(name string) TestID {
	return append(slices.Clone(t), name)
}
