package bench

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"syscall"
)

const (
	// IsolatedCaseEnvVar is set in the environment of every isolated process to the ordinal of the
	// case it must run.
	IsolatedCaseEnvVar = "TESTBENCH_ISOLATED_CASE"

	// IsolatedCaseIDEnvVar is set in the environment of every isolated process to the full name of
	// the case it must run, so that a mismatch between parent and child declarations is detected.
	IsolatedCaseIDEnvVar = "TESTBENCH_ISOLATED_CASE_ID"

	// the control channel is the first of exec.Cmd.ExtraFiles
	controlFD = 3

	exitCodePassed         = 0
	exitCodeFailed         = 1
	exitCodeIsolationError = 3
)

// IsIsolatedUnit returns true if the current process was started by Run to execute a single case.
// Programs can use this to skip anything that should only happen once per run, such as printing a
// banner or parsing configuration that is not needed by the cases.
func IsIsolatedUnit() bool {
	return os.Getenv(IsolatedCaseEnvVar) != ""
}

// isolatedTarget identifies the one case that an isolated process runs, and how it reports back.
type isolatedTarget struct {
	ordinal int
	id      string
	control io.WriteCloser
	exit    func(code int)
}

func isolatedTargetFromEnv() (*isolatedTarget, error) {
	value := os.Getenv(IsolatedCaseEnvVar)
	ordinal, err := strconv.Atoi(value)
	if err != nil || ordinal < 1 {
		return nil, fmt.Errorf("invalid value for %s: %q", IsolatedCaseEnvVar, value)
	}
	control := os.NewFile(controlFD, "control")
	if control == nil {
		return nil, errors.New("control channel is not open")
	}
	// Processes started by the case must not inherit the control channel, or the harness would
	// not see it close when this process exits.
	syscall.CloseOnExec(controlFD)
	return &isolatedTarget{
		ordinal: ordinal,
		id:      os.Getenv(IsolatedCaseIDEnvVar),
		control: control,
		exit:    os.Exit,
	}, nil
}

// runIsolated walks the declarations without reporting anything, runs the target case when it is
// reached, and exits. The exit function of the target is expected not to return.
func runIsolated(config RunConfiguration, target *isolatedTarget, action func(*G)) {
	config.Reporter = nil
	r := newRun(config)
	r.target = target
	r.execute(action)
	target.notFound(r.declared)
}

// consider is called for every declared case. Only the target case is executed.
func (it *isolatedTarget) consider(ordinal int, s *scope, body func(*T)) {
	if ordinal != it.ordinal {
		return
	}
	if id := s.id.String(); id != it.id {
		it.abort(fmt.Sprintf("case #%d is %q, but the harness expected %q; declarations must not depend on state",
			ordinal, id, it.id))
		return
	}
	rec := executeCase(s, body)
	code := exitCodeFailed
	if rec.outcome.passed() {
		code = exitCodePassed
	}
	it.finish(rec, code)
}

func (it *isolatedTarget) notFound(declared int) {
	it.abort(fmt.Sprintf("case #%d (%q) was not declared; only %d cases were", it.ordinal, it.id, declared))
}

func (it *isolatedTarget) abort(message string) {
	_, _ = fmt.Fprintln(os.Stderr, "testbench: "+message)
	it.finish(controlRecord{outcome: OutcomeCrashed, message: message}, exitCodeIsolationError)
}

func (it *isolatedTarget) finish(rec controlRecord, code int) {
	_, _ = it.control.Write(rec.encode())
	_ = it.control.Close()
	it.exit(code)
}
