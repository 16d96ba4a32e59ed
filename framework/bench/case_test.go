package bench

import (
	"fmt"
	"runtime"
	"testing"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type teardownRecorder struct {
	calls    int
	fixtures []interface{}
}

func (r *teardownRecorder) teardown(_, fixtures interface{}) {
	r.calls++
	r.fixtures = append(r.fixtures, fixtures)
}

func caseScope() *scope {
	return newRootScope().child(KindGroup, "group").child(KindCase, "case")
}

func currentLine() int {
	_, _, line, _ := runtime.Caller(1)
	return line
}

func helperThatFails(t *T, _ int) {
	t.Helper()
	t.Failf("from helper")
}

func TestCaseThatCompletesNormallyPasses(t *testing.T) {
	executed := false
	rec := executeCase(caseScope(), func(*T) { executed = true })
	assert.True(t, executed)
	assert.Equal(t, controlRecord{outcome: OutcomePassed}, rec)
}

func TestFailfReportsMessageAndLocation(t *testing.T) {
	var line int
	rec := executeCase(caseScope(), func(bt *T) {
		line = currentLine() + 1
		bt.Failf("bad: %d", 7)
	})
	assert.Equal(t, OutcomeFailed, rec.outcome)
	assert.Equal(t, fmt.Sprintf("bad: 7 -- case_test.go:%d", line), rec.message)
}

func TestFailUsesDefaultMessage(t *testing.T) {
	rec := executeCase(caseScope(), func(bt *T) { bt.Fail() })
	assert.Equal(t, OutcomeFailed, rec.outcome)
	assert.Regexp(t, `^FAIL\(\) -- case_test\.go:\d+$`, rec.message)
}

func TestFailSkipsRemainingStatements(t *testing.T) {
	reached := false
	rec := executeCase(caseScope(), func(bt *T) {
		bt.Fail()
		bt.Failf("SHOULD NOT DISPLAY")
		reached = true
	})
	assert.False(t, reached)
	assert.NotContains(t, rec.message, "SHOULD NOT DISPLAY")
}

func TestPassSkipsRemainingStatements(t *testing.T) {
	reached := false
	rec := executeCase(caseScope(), func(bt *T) {
		bt.Pass()
		bt.Failf("SHOULD NOT DISPLAY")
		reached = true
	})
	assert.False(t, reached)
	assert.Equal(t, controlRecord{outcome: OutcomePassedEarly}, rec)
}

func TestPassFromNestedCallFrames(t *testing.T) {
	var inner func(bt *T, n int)
	inner = func(bt *T, n int) {
		if n == 0 {
			bt.Pass()
		}
		inner(bt, n-1)
		bt.Fail()
	}
	rec := executeCase(caseScope(), func(bt *T) {
		inner(bt, 5)
		bt.Fail()
	})
	assert.Equal(t, OutcomePassedEarly, rec.outcome)
}

func TestAssert(t *testing.T) {
	t.Run("true", func(t *testing.T) {
		rec := executeCase(caseScope(), func(bt *T) {
			bt.Assert(true)
			bt.Assertf(true, "SHOULD NOT DISPLAY")
		})
		assert.Equal(t, OutcomePassed, rec.outcome)
		assert.Equal(t, "", rec.message)
	})

	t.Run("false with default message", func(t *testing.T) {
		rec := executeCase(caseScope(), func(bt *T) { bt.Assert(false) })
		assert.Equal(t, OutcomeFailed, rec.outcome)
		assert.Regexp(t, `^ASSERT\(\) -- case_test\.go:\d+$`, rec.message)
	})

	t.Run("false with formatted message", func(t *testing.T) {
		rec := executeCase(caseScope(), func(bt *T) { bt.Assertf(false, "a %s message", "nice") })
		assert.Equal(t, OutcomeFailed, rec.outcome)
		assert.Regexp(t, `^a nice message -- case_test\.go:\d+$`, rec.message)
	})
}

func TestTeardownRunsOnceWithSetupFixtures(t *testing.T) {
	for _, params := range []struct {
		name    string
		body    func(*T)
		outcome Outcome
	}{
		{"natural completion", func(*T) {}, OutcomePassed},
		{"early pass", func(bt *T) { bt.Pass() }, OutcomePassedEarly},
		{"failure", func(bt *T) { bt.Fail() }, OutcomeFailed},
		{"panic", func(*T) { panic("boom") }, OutcomeFailed},
	} {
		t.Run(params.name, func(t *testing.T) {
			var rec teardownRecorder
			s := caseScope()
			s.setSetup(func(interface{}) interface{} { return 42 }, nil)
			s.setTeardown(rec.teardown, nil)

			result := executeCase(s, params.body)
			assert.Equal(t, params.outcome, result.outcome)
			assert.Equal(t, 1, rec.calls)
			assert.Equal(t, []interface{}{42}, rec.fixtures)
		})
	}
}

func TestBodySeesFixtures(t *testing.T) {
	s := caseScope()
	s.setSetup(func(arg interface{}) interface{} { return arg.(int) * 2 }, 21)
	rec := executeCase(s, func(bt *T) {
		bt.Assertf(bt.Fixtures() == 42, "fixtures were %v", bt.Fixtures())
	})
	assert.Equal(t, OutcomePassed, rec.outcome)
}

func TestErrorfDoesNotStopTheBody(t *testing.T) {
	reached := false
	rec := executeCase(caseScope(), func(bt *T) {
		bt.Errorf("first %s", "problem")
		bt.Errorf("second problem")
		reached = true
	})
	assert.True(t, reached)
	assert.Equal(t, OutcomeFailed, rec.outcome)
	assert.Regexp(t, `^first problem -- case_test\.go:\d+\nsecond problem -- case_test\.go:\d+$`, rec.message)
}

func TestPassAfterErrorfIsStillAFailure(t *testing.T) {
	rec := executeCase(caseScope(), func(bt *T) {
		bt.Errorf("problem")
		bt.Pass()
	})
	assert.Equal(t, OutcomeFailed, rec.outcome)
}

func TestUnexpectedPanicIsAFailure(t *testing.T) {
	rec := executeCase(caseScope(), func(*T) { panic("boom") })
	assert.Equal(t, OutcomeFailed, rec.outcome)
	assert.Equal(t, "unexpected panic in test: boom", rec.message)
}

func TestSetupPanicSkipsBodyAndTeardown(t *testing.T) {
	var rec teardownRecorder
	executed := false
	s := caseScope()
	s.setSetup(func(interface{}) interface{} { panic("no database") }, nil)
	s.setTeardown(rec.teardown, nil)

	result := executeCase(s, func(*T) { executed = true })
	assert.False(t, executed)
	assert.Equal(t, 0, rec.calls)
	assert.Equal(t, OutcomeFailed, result.outcome)
	assert.Equal(t, "unexpected panic in setup: no database", result.message)
}

func TestTeardownPanicFailsThePassingCase(t *testing.T) {
	s := caseScope()
	s.setTeardown(func(interface{}, interface{}) { panic("leak") }, nil)
	result := executeCase(s, func(*T) {})
	assert.Equal(t, OutcomeFailed, result.outcome)
	assert.Equal(t, "unexpected panic in teardown: leak", result.message)
}

func TestHelperMovesLocationToCaller(t *testing.T) {
	var line int
	rec := executeCase(caseScope(), func(bt *T) {
		helperThatFails(bt, func() int { line = currentLine(); return line }())
	})
	require.NotZero(t, line)
	assert.Equal(t, fmt.Sprintf("from helper -- case_test.go:%d", line), rec.message)
}

func TestTestifyAssertionsWork(t *testing.T) {
	rec := executeCase(caseScope(), func(bt *T) {
		require.Equal(bt, 1, 2)
		bt.Failf("SHOULD NOT DISPLAY")
	})
	assert.Equal(t, OutcomeFailed, rec.outcome)
	assert.Contains(t, rec.message, "Not equal")
	assert.NotContains(t, rec.message, "Error Trace:")
	assert.NotContains(t, rec.message, "SHOULD NOT DISPLAY")
	assert.Regexp(t, `-- case_test\.go:\d+$`, rec.message)
}

func TestMatchersWork(t *testing.T) {
	t.Run("pass", func(t *testing.T) {
		rec := executeCase(caseScope(), func(bt *T) {
			m.In(bt).Assert("hello", m.StringContains("ell"))
		})
		assert.Equal(t, OutcomePassed, rec.outcome)
	})

	t.Run("fail", func(t *testing.T) {
		rec := executeCase(caseScope(), func(bt *T) {
			if !m.In(bt).Assert(3, m.Equal(4)) {
				bt.FailNow()
			}
			bt.Failf("SHOULD NOT DISPLAY")
		})
		assert.Equal(t, OutcomeFailed, rec.outcome)
		assert.Contains(t, rec.message, "4")
		assert.NotContains(t, rec.message, "SHOULD NOT DISPLAY")
	})
}

func TestCaseAccessors(t *testing.T) {
	rec := executeCase(caseScope(), func(bt *T) {
		bt.Assert(bt.ID().String() == "group/case")
		bt.Assert(bt.Depth() == 2)
		bt.Assert(bt.Fixtures() == nil)
	})
	assert.Equal(t, OutcomePassed, rec.outcome)
}
