package bench

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestConsoleReporter() (ConsoleReporter, *bytes.Buffer, *bytes.Buffer) {
	var out, summary bytes.Buffer
	return ConsoleReporter{Out: &out, SummaryOut: &summary, NoColor: true}, &out, &summary
}

func TestConsoleReporterTree(t *testing.T) {
	c, out, _ := newTestConsoleReporter()
	c.GroupEntered(TestID{"top"}, 1)
	c.CaseFinished(TestID{"top", "works"}, 2, Verdict{Passed: true, Output: []byte("hidden\n")})
	c.GroupEntered(TestID{"top", "inner"}, 2)
	c.CaseFinished(TestID{"top", "inner", "breaks"}, 3, Verdict{
		Outcome:  OutcomeFailed,
		ExitCode: 1,
		Message:  "bad: 7 -- x_test.go:12",
		Output:   []byte("line one\nline two\n"),
	})
	c.CaseSkipped(TestID{"top", "inner", "filtered"}, 3, "excluded by filter parameters")

	assert.Equal(t, "\n"+
		"top\n"+
		"  ✓ works\n"+
		"  inner\n"+
		"    ✗ breaks\n"+
		"      bad: 7 -- x_test.go:12\n"+
		"\n"+
		"      line one\n"+
		"      line two\n"+
		"\n"+
		"    - filtered (excluded by filter parameters)\n",
		out.String())
}

func TestConsoleReporterCrashWithoutMessage(t *testing.T) {
	c, out, _ := newTestConsoleReporter()
	c.CaseFinished(TestID{"crashes"}, 1, Verdict{Outcome: OutcomeCrashed, ExitCode: 2})
	assert.Equal(t, "✗ crashes\n", out.String())
}

func TestConsoleReporterOptions(t *testing.T) {
	c, out, _ := newTestConsoleReporter()
	c.OutputOnSuccess = true
	c.ShowDetails = true
	c.CaseFinished(TestID{"g", "ok"}, 2, Verdict{Passed: true, Output: []byte("shown\n")})
	c.CaseFinished(TestID{"g", "crashed"}, 2, Verdict{Outcome: OutcomeCrashed, ExitCode: -1, Duration: time.Second})
	assert.Equal(t, ""+
		"  ✓ ok\n"+
		"\n"+
		"    shown\n"+
		"\n"+
		"  ✗ crashed\n"+
		"    (crashed, exit status -1, 1s)\n",
		out.String())
}

func TestConsoleReporterNote(t *testing.T) {
	c, out, _ := newTestConsoleReporter()
	c.Note(1, true, "This test was supposed to fail and did so")
	c.Note(0, false, "This test was supposed to fail but passed")
	assert.Equal(t, ""+
		"    ✓ This test was supposed to fail and did so\n"+
		"  ✗ This test was supposed to fail but passed\n",
		out.String())
}

func TestConsoleReporterSummary(t *testing.T) {
	t.Run("all passed", func(t *testing.T) {
		c, out, summary := newTestConsoleReporter()
		assert.NoError(t, c.EndLog(Results{Total: 1}))
		assert.Equal(t, "\n✓ 1 test complete.\n\n", summary.String())
		assert.Equal(t, "", out.String())
	})

	t.Run("some failed", func(t *testing.T) {
		c, _, summary := newTestConsoleReporter()
		results := Results{
			Total:    3,
			Failed:   1,
			Failures: []CaseResult{{TestID: TestID{"crash", "crashes"}}},
		}
		assert.NoError(t, c.EndLog(results))
		assert.Equal(t, "\n"+
			"FAILED TESTS (1):\n"+
			"  * crash/crashes\n"+
			"\n✗ 1 test out of 3 failed.\n\n",
			summary.String())
	})
}

func TestMultiReporter(t *testing.T) {
	r1, r2 := newRecordingReporter(), newRecordingReporter()
	multi := MultiReporter{Reporters: []Reporter{r1, r2}}
	multi.GroupEntered(TestID{"g"}, 1)
	multi.CaseFinished(TestID{"g", "c"}, 2, Verdict{Passed: true})
	multi.CaseSkipped(TestID{"g", "s"}, 2, "")
	multi.Note(1, true, "n")
	assert.NoError(t, multi.EndLog(Results{}))

	expected := []reporterEvent{
		{"group", "g", 1},
		{"case", "g/c", 2},
		{"skipped", "g/s", 2},
		{"note true", "n", 1},
	}
	assert.Equal(t, expected, r1.events)
	assert.Equal(t, expected, r2.events)
}
