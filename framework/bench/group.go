package bench

import (
	"os"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// RunConfiguration contains options for the entire test run.
type RunConfiguration struct {
	// Filter is an optional way of deciding which cases to run based on their names. Cases that do
	// not match are reported as skipped and are not counted.
	Filter Filter

	// Reporter receives status information about every group and case. If nil, nothing is reported.
	Reporter Reporter

	// Loggers receives diagnostic messages from the harness itself. Like any uninitialized
	// ldlog.Loggers, the zero value behaves as if it were ldlog.NewDefaultLoggers().
	Loggers ldlog.Loggers

	// CaseTimeout, if non-zero, is the longest time a case may run before its process is killed.
	CaseTimeout time.Duration

	// Executable is the program that is run once per case. It defaults to the current executable,
	// which must declare the same groups and cases in the same order.
	Executable string

	// Args are the command-line arguments for Executable. They default to the arguments of the
	// current process.
	Args []string

	// Env holds additional "KEY=value" environment variables for the isolated processes.
	Env []string
}

// Test is a reusable, named piece of test declarations. It receives the group it is run in and
// an arbitrary value chosen by whoever runs it.
type Test func(g *G, udata interface{})

// run is the state of one test run in the harness: the scope stack, the counters and the
// per-case results. It is owned by the single goroutine that calls Run.
type run struct {
	config   RunConfiguration
	reporter Reporter
	results  Results
	stack    scopeStack
	declared int
	isolator caseRunner
	target   *isolatedTarget
}

type caseRunner interface {
	runCase(s *scope, ordinal int) Verdict
}

// G is the handle for a group scope, or for the root scope of a run. Groups and cases declared
// through it run immediately, in order.
type G struct {
	run   *run
	scope *scope
}

// Run executes a test run and returns its results. The action is the body of the root scope.
//
// If the current process is itself an isolated unit started by Run, this instead runs the one
// case it was started for and exits the process; Run never returns in that case.
func Run(config RunConfiguration, action func(*G)) Results {
	if IsIsolatedUnit() {
		target, err := isolatedTargetFromEnv()
		if err != nil {
			exitWithSetupError(err)
		}
		runIsolated(config, target, action)
	}
	r := newRun(config)
	r.isolator = newProcessIsolator(r.config)
	r.execute(action)
	return r.results
}

// Main is a shortcut for Run followed by ending the report. It returns the exit code that the
// program should terminate with.
func Main(config RunConfiguration, action func(*G)) int {
	results := Run(config, action)
	if config.Reporter != nil {
		if err := config.Reporter.EndLog(results); err != nil {
			config.Loggers.Errorf("Error writing report: %s", err)
			return 1
		}
	}
	return results.ExitCode()
}

func newRun(config RunConfiguration) *run {
	reporter := config.Reporter
	if reporter == nil {
		reporter = nullReporter{}
	}
	return &run{config: config, reporter: reporter}
}

func (r *run) execute(action func(*G)) {
	root := newRootScope()
	r.stack.current = root
	action(&G{run: r, scope: root})
}

func (r *run) recordCase(s *scope, verdict Verdict) {
	r.results.Total++
	result := CaseResult{TestID: s.id, Verdict: verdict}
	r.results.Tests = append(r.results.Tests, result)
	if !verdict.Passed {
		r.results.Failed++
		r.results.Failures = append(r.results.Failures, result)
	}
	r.reporter.CaseFinished(s.id, s.depth, verdict)
}

func (r *run) recordSkip(s *scope, reason string) {
	r.results.Skipped = append(r.results.Skipped, CaseResult{TestID: s.id})
	r.reporter.CaseSkipped(s.id, s.depth, reason)
}

// ID returns the full name of the group.
func (g *G) ID() TestID {
	return g.scope.id
}

// Depth returns the nesting depth of the group: 0 for the root, 1 for a top-level group.
func (g *G) Depth() int {
	return g.scope.depth
}

// Setup sets the setup function for this group. It applies to every case and group declared in
// this group from now on, unless they set their own. Passing a nil function removes it.
func (g *G) Setup(fn SetupFunc, arg interface{}) {
	g.scope.setSetup(fn, arg)
}

// Teardown sets the teardown function for this group, with the same rules as Setup.
func (g *G) Teardown(fn TeardownFunc, arg interface{}) {
	g.scope.setTeardown(fn, arg)
}

// Group declares a nested group and runs its body.
func (g *G) Group(name string, action func(*G)) {
	r := g.run
	entered, previous := r.stack.enter(g.scope, KindGroup, name)
	defer r.stack.exit(previous)

	r.reporter.GroupEntered(entered.id, entered.depth)
	action(&G{run: r, scope: entered})
}

// Case declares a case and runs it in an isolated process. It returns once the case is finished.
func (g *G) Case(name string, body func(*T)) {
	r := g.run
	entered, previous := r.stack.enter(g.scope, KindCase, name)
	defer r.stack.exit(previous)

	r.declared++
	if r.target != nil {
		r.target.consider(r.declared, entered, body)
		return
	}
	if r.config.Filter != nil && !r.config.Filter.Match(entered.id) {
		r.recordSkip(entered, "excluded by filter parameters")
		return
	}
	verdict := r.isolator.runCase(entered, r.declared)
	r.recordCase(entered, verdict)
}

// Run runs a reusable Test in this group.
func (g *G) Run(test Test, udata interface{}) {
	test(g, udata)
}

// Note reports a line that is not a case result, at the indentation of this group.
func (g *G) Note(ok bool, message string) {
	g.run.reporter.Note(g.scope.depth, ok, message)
}

// Counts returns the number of cases executed and failed so far in this run.
func (g *G) Counts() (total, failed int) {
	return g.run.results.Total, g.run.results.Failed
}

func exitWithSetupError(err error) {
	_, _ = os.Stderr.WriteString("testbench: " + err.Error() + "\n")
	os.Exit(exitCodeIsolationError)
}
