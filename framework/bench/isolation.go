package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/alessio/shellescape"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/launchdarkly/testbench/framework"
	"github.com/launchdarkly/testbench/framework/helpers"
)

// outputGracePeriod is how long the output channel may stay open after the isolated process has
// exited, which only happens if something it started is still holding it.
const outputGracePeriod = 5 * time.Second

var errNoControlRecord = errors.New("isolated unit exited without reporting an outcome")

type controlResult struct {
	record controlRecord
	err    error
}

// processIsolator runs each case in a new process: the same program, started with the same
// arguments, plus environment variables that tell Run which case to execute.
type processIsolator struct {
	executable    string
	executableErr error
	args          []string
	env           []string
	timeout       time.Duration
	loggers       ldlog.Loggers
}

func newProcessIsolator(config RunConfiguration) *processIsolator {
	p := &processIsolator{
		executable: config.Executable,
		args:       config.Args,
		env:        config.Env,
		timeout:    config.CaseTimeout,
		loggers:    config.Loggers,
	}
	if p.executable == "" {
		p.executable, p.executableErr = os.Executable()
	}
	if p.args == nil && len(os.Args) > 1 {
		p.args = os.Args[1:]
	}
	return p
}

func (p *processIsolator) runCase(s *scope, ordinal int) Verdict {
	start := time.Now()
	v := p.spawn(s, ordinal)
	v.Duration = time.Since(start)
	p.loggers.Debugf("Isolated unit for %s finished with exit status %d, outcome %s, in %s",
		s.id, v.ExitCode, v.Outcome, v.Duration)
	return v
}

func (p *processIsolator) spawn(s *scope, ordinal int) Verdict {
	if p.executableErr != nil {
		return setupFailure("cannot determine executable", p.executableErr)
	}

	controlReader, controlWriter, err := os.Pipe()
	if err != nil {
		return setupFailure("cannot create control channel", err)
	}
	defer controlReader.Close() //nolint:errcheck
	outputReader, outputWriter, err := os.Pipe()
	if err != nil {
		_ = controlWriter.Close()
		return setupFailure("cannot create output channel", err)
	}
	defer outputReader.Close() //nolint:errcheck

	ctx, cancel := p.context()
	defer cancel()

	cmd := exec.CommandContext(ctx, p.executable, p.args...) //nolint:gosec
	cmd.Env = append(append(os.Environ(), p.env...),
		IsolatedCaseEnvVar+"="+strconv.Itoa(ordinal),
		IsolatedCaseIDEnvVar+"="+s.id.String(),
	)
	cmd.Stdout = outputWriter
	cmd.Stderr = outputWriter
	cmd.ExtraFiles = []*os.File{controlWriter}

	if p.loggers.IsDebugEnabled() {
		p.loggers.Debugf("Running %s in isolated unit #%d: %s", s.id, ordinal, p.commandLine())
	}
	err = cmd.Start()

	// The child has its own copies now; ours must be closed so that reads end at the child's exit.
	_ = controlWriter.Close()
	_ = outputWriter.Close()
	if err != nil {
		return setupFailure("cannot start isolated unit", err)
	}

	drained := make(chan framework.CapturedOutput, 1)
	go func() {
		data, _ := io.ReadAll(outputReader)
		drained <- data
	}()
	reported := make(chan controlResult, 1)
	go func() {
		record, err := readControlRecord(controlReader)
		reported <- controlResult{record, err}
	}()

	_ = cmd.Wait()
	timedOut := errors.Is(ctx.Err(), context.DeadlineExceeded)

	// Both channels normally close when the process exits. Anything it started may still hold them.
	graceDeadline := time.Now().Add(outputGracePeriod)
	control := helpers.TryReceive(reported, time.Until(graceDeadline))
	output := helpers.TryReceive(drained, time.Until(graceDeadline))
	if !output.IsDefined() {
		p.loggers.Warnf("Output of isolated unit for %s was still open %s after it exited; it was discarded",
			s.id, outputGracePeriod)
	}

	v := Verdict{Output: output.Value(), ExitCode: cmd.ProcessState.ExitCode()}
	v.Passed = v.ExitCode == exitCodePassed

	// ExitCode is -1 only if the process was terminated by a signal.
	switch {
	case timedOut && v.ExitCode == -1:
		v.Outcome = OutcomeCrashed
		v.Message = fmt.Sprintf("timed out after %s", p.timeout)
	case !control.IsDefined():
		v.Outcome = OutcomeCrashed
		p.loggers.Warnf("Control channel of isolated unit for %s was still open %s after it exited",
			s.id, outputGracePeriod)
	case control.Value().err != nil:
		v.Outcome = OutcomeCrashed
		if err := control.Value().err; !errors.Is(err, errNoControlRecord) {
			p.loggers.Warnf("Unreadable control record from isolated unit for %s: %s", s.id, err)
		}
	default:
		v.Outcome = control.Value().record.outcome
		v.Message = control.Value().record.message
	}
	return v
}

func (p *processIsolator) context() (context.Context, context.CancelFunc) {
	if p.timeout > 0 {
		return context.WithTimeout(context.Background(), p.timeout)
	}
	return context.WithCancel(context.Background())
}

func (p *processIsolator) commandLine() string {
	words := make([]string, 0, len(p.args)+1)
	words = append(words, shellescape.Quote(p.executable))
	for _, arg := range p.args {
		words = append(words, shellescape.Quote(arg))
	}
	return strings.Join(words, " ")
}

func readControlRecord(r io.Reader) (controlRecord, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxControlRecordSize))
	if err != nil {
		return controlRecord{}, err
	}
	if len(data) == 0 {
		return controlRecord{}, errNoControlRecord
	}
	return decodeControlRecord(data)
}

func setupFailure(what string, err error) Verdict {
	return Verdict{
		Outcome:  OutcomeCrashed,
		Message:  truncateMessage(what + ": " + err.Error()),
		ExitCode: -1,
	}
}
