package bench

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/launchdarkly/go-jsonstream/v3/jreader"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"

	"github.com/launchdarkly/testbench/framework"
)

// MaxMessageLength is the largest failure message, in bytes, that a case can report. Longer
// messages are truncated.
const MaxMessageLength = 255

// maxControlRecordSize bounds how much the harness reads from the control channel. It leaves room
// for the JSON framing and for escaping of a maximum-length message.
const maxControlRecordSize = 8 * MaxMessageLength

// Outcome is how a case body ended.
type Outcome int

const (
	// OutcomePassed means the body returned normally without any recorded error.
	OutcomePassed Outcome = iota
	// OutcomePassedEarly means the body called T.Pass.
	OutcomePassedEarly
	// OutcomeFailed means the body failed through T.Failf, T.FailNow, T.Errorf, an assertion, or a
	// recovered panic.
	OutcomeFailed
	// OutcomeCrashed means the isolated process ended without reporting an outcome, or could not be
	// started at all.
	OutcomeCrashed
)

var outcomeNames = map[Outcome]string{ //nolint:gochecknoglobals
	OutcomePassed:      "passed",
	OutcomePassedEarly: "passed-early",
	OutcomeFailed:      "failed",
	OutcomeCrashed:     "crashed",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

func parseOutcome(name string) (Outcome, bool) {
	for o, n := range outcomeNames {
		if n == name {
			return o, true
		}
	}
	return OutcomeCrashed, false
}

// passed reports whether the outcome should lead to a zero exit status of the isolated process.
func (o Outcome) passed() bool {
	return o == OutcomePassed || o == OutcomePassedEarly
}

// Verdict is the result of running one case.
type Verdict struct {
	// Passed is true if and only if the isolated process exited with status 0.
	Passed bool

	// Outcome is what the isolated process reported about the body, or OutcomeCrashed if it did not
	// report anything.
	Outcome Outcome

	// Message is the failure message, if any. It is never longer than MaxMessageLength.
	Message string

	// Output is everything the case wrote to stdout and stderr.
	Output framework.CapturedOutput

	// ExitCode is the exit status of the isolated process, or -1 if it was killed by a signal or
	// never started.
	ExitCode int

	// Duration is how long the isolated process ran.
	Duration time.Duration
}

// truncateMessage limits s to MaxMessageLength bytes without splitting a UTF-8 sequence.
func truncateMessage(s string) string {
	if len(s) <= MaxMessageLength {
		return s
	}
	n := MaxMessageLength
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// controlRecord is what the isolated process sends back over the control channel.
type controlRecord struct {
	outcome Outcome
	message string
}

func (c controlRecord) encode() []byte {
	w := jwriter.NewWriter()
	obj := w.Object()
	obj.Name("outcome").String(c.outcome.String())
	if c.message != "" {
		obj.Name("message").String(truncateMessage(c.message))
	}
	obj.End()
	return w.Bytes()
}

func decodeControlRecord(data []byte) (controlRecord, error) {
	var ret controlRecord
	var outcomeName string
	r := jreader.NewReader(data)
	for obj := r.Object(); obj.Next(); {
		switch string(obj.Name()) {
		case "outcome":
			outcomeName = r.String()
		case "message":
			ret.message = truncateMessage(r.String())
		}
	}
	if err := r.Error(); err != nil {
		return controlRecord{}, fmt.Errorf("malformed control record: %w", err)
	}
	outcome, ok := parseOutcome(outcomeName)
	if !ok {
		return controlRecord{}, fmt.Errorf("unknown outcome %q in control record", outcomeName)
	}
	ret.outcome = outcome
	return ret, nil
}
