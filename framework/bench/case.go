package bench

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/launchdarkly/testbench/framework/helpers"
)

const (
	defaultFailMessage   = "FAIL()"
	defaultAssertMessage = "ASSERT()"
)

var _ helpers.TestContext = (*T)(nil)

// abortSignal is the panic value used to leave a case body early. It is always recovered by
// (*T).runBody, which is the resumption point of every case.
type abortSignal struct {
	outcome Outcome
}

// T is the handle a case body receives. It is very similar to Go's testing.T, and it implements
// the interfaces expected by testify's assert and require packages and by go-test-helpers
// matchers.
//
// A T only exists inside the isolated child process that runs the case.
type T struct {
	id        TestID
	depth     int
	fixtures  interface{}
	failed    bool
	messages  []string
	helperFns []string
}

// ID returns the full name of the case.
func (t *T) ID() TestID {
	return t.id
}

// Depth returns the nesting depth of the case; a case declared directly in the root has depth 1.
func (t *T) Depth() int {
	return t.depth
}

// Fixtures returns the value produced by the setup function in effect for this case, or nil if
// there was none.
func (t *T) Fixtures() interface{} {
	return t.fixtures
}

// Fail causes the case to terminate immediately as a failure with a default message.
func (t *T) Fail() {
	t.failWith(defaultFailMessage)
}

// Failf causes the case to terminate immediately as a failure. The formatted message is reported
// together with the source location of the call.
func (t *T) Failf(format string, args ...interface{}) {
	t.failWith(fmt.Sprintf(format, args...))
}

// Pass causes the case to terminate immediately. Unless an error was already recorded with
// Errorf, the case passes.
func (t *T) Pass() {
	panic(&abortSignal{outcome: OutcomePassedEarly})
}

// Assert fails the case with a default message if condition is false.
func (t *T) Assert(condition bool) {
	if !condition {
		t.failWith(defaultAssertMessage)
	}
}

// Assertf fails the case with a formatted message if condition is false.
func (t *T) Assertf(condition bool, format string, args ...interface{}) {
	if !condition {
		t.failWith(fmt.Sprintf(format, args...))
	}
}

// Errorf records a failure message and marks the case as failed, but lets the body continue. It
// is equivalent to Go's testing.T.Errorf.
//
// You will rarely use this method directly; it is part of this type's implementation of the
// interfaces used by assertion helpers.
func (t *T) Errorf(format string, args ...interface{}) {
	t.failed = true
	t.record(stripTestifyTrace(fmt.Sprintf(format, args...)))
}

// FailNow causes the case to terminate immediately as a failure. Any message should have been
// recorded with Errorf first.
//
// You will rarely use this method directly; it is part of this type's implementation of the
// interfaces used by assertion helpers.
func (t *T) FailNow() {
	t.failed = true
	panic(&abortSignal{outcome: OutcomeFailed})
}

// Helper marks the function that calls it as a test helper, so that failure locations point at
// its caller instead. Equivalent to Go's testing.T.Helper().
func (t *T) Helper() {
	pc, _, _, ok := runtime.Caller(1) // 0 is Helper() itself, 1 is who called it
	if !ok {
		return
	}
	f := runtime.FuncForPC(pc)
	if f == nil {
		return
	}
	t.helperFns = append(t.helperFns, f.Name())
}

// Debug writes a line to the standard output of the case. Like everything else the case writes,
// it is only shown if the case fails or debug output is enabled.
func (t *T) Debug(message string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, message+"\n", args...)
}

func (t *T) failWith(message string) {
	t.failed = true
	t.record(message)
	panic(&abortSignal{outcome: OutcomeFailed})
}

func (t *T) record(message string) {
	if location := failureLocation(t.helperFns); location != "" {
		message = message + " -- " + location
	}
	t.messages = append(t.messages, message)
}

// message is the combined failure message of the case, bounded by MaxMessageLength.
func (t *T) message() string {
	return truncateMessage(strings.Join(t.messages, "\n"))
}

// runBody is the resumption point of a case: any abort from inside body, however deeply nested,
// comes back here.
func (t *T) runBody(body func(*T)) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			if sig, ok := r.(*abortSignal); ok {
				outcome = sig.outcome
			} else {
				t.failed = true
				t.messages = append(t.messages, fmt.Sprintf("unexpected panic in test: %+v", r))
				fmt.Fprintf(os.Stderr, "%s", debug.Stack())
			}
		}
		if t.failed {
			outcome = OutcomeFailed
		}
	}()
	body(t)
	return OutcomePassed
}

// protect runs a setup or teardown hook, turning a panic into a failure of the case. It returns
// false if the hook panicked.
func (t *T) protect(stage string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			t.failed = true
			t.messages = append(t.messages, fmt.Sprintf("unexpected panic in %s: %+v", stage, r))
			fmt.Fprintf(os.Stderr, "%s", debug.Stack())
			ok = false
		}
	}()
	fn()
	return true
}

// executeCase runs setup, body and teardown of a case in the current process, and returns what
// should be reported to the harness. Teardown runs exactly once whenever setup succeeded,
// whatever the body did.
func executeCase(s *scope, body func(*T)) controlRecord {
	t := &T{id: s.id, depth: s.depth}
	if !t.protect("setup", func() { t.fixtures = s.runSetup() }) {
		return controlRecord{outcome: OutcomeFailed, message: t.message()}
	}
	outcome := t.runBody(body)
	if !t.protect("teardown", func() { s.runTeardown(t.fixtures) }) {
		outcome = OutcomeFailed
	}
	return controlRecord{outcome: outcome, message: t.message()}
}
