package bench

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exitSignal struct {
	code int
}

type closeRecorder struct {
	bytes.Buffer
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

// runAsIsolatedUnit runs the declarations the way an isolated process would, but stops at the
// point where the process would exit.
func runAsIsolatedUnit(t *testing.T, ordinal int, id string, action func(*G)) (int, controlRecord) {
	t.Helper()
	control := &closeRecorder{}
	target := &isolatedTarget{
		ordinal: ordinal,
		id:      id,
		control: control,
		exit:    func(code int) { panic(exitSignal{code}) },
	}
	code := func() (code int) {
		defer func() {
			sig, ok := recover().(exitSignal)
			require.True(t, ok, "isolated unit did not exit")
			code = sig.code
		}()
		runIsolated(RunConfiguration{}, target, action)
		return -1
	}()
	assert.True(t, control.closed)
	rec, err := decodeControlRecord(control.Bytes())
	require.NoError(t, err)
	return code, rec
}

func threeCases(executed *[]string) func(*G) {
	return func(g *G) {
		g.Case("first", func(*T) { *executed = append(*executed, "first") })
		g.Group("group", func(g *G) {
			g.Case("second", func(t *T) {
				*executed = append(*executed, "second")
				t.Failf("second failed")
			})
		})
		g.Case("third", func(*T) { *executed = append(*executed, "third") })
	}
}

func TestIsolatedUnitRunsOnlyTheTargetCase(t *testing.T) {
	var executed []string
	code, rec := runAsIsolatedUnit(t, 3, "third", threeCases(&executed))
	assert.Equal(t, exitCodePassed, code)
	assert.Equal(t, controlRecord{outcome: OutcomePassed}, rec)
	assert.Equal(t, []string{"third"}, executed)
}

func TestIsolatedUnitExitsWithFailureStatus(t *testing.T) {
	var executed []string
	code, rec := runAsIsolatedUnit(t, 2, "group/second", threeCases(&executed))
	assert.Equal(t, exitCodeFailed, code)
	assert.Equal(t, OutcomeFailed, rec.outcome)
	assert.Regexp(t, `^second failed -- isolated_unit_test\.go:\d+$`, rec.message)
	assert.Equal(t, []string{"second"}, executed)
}

func TestIsolatedUnitDetectsDeclarationMismatch(t *testing.T) {
	var executed []string
	code, rec := runAsIsolatedUnit(t, 2, "group/renamed", threeCases(&executed))
	assert.Equal(t, exitCodeIsolationError, code)
	assert.Equal(t, OutcomeCrashed, rec.outcome)
	assert.Contains(t, rec.message, `"group/renamed"`)
	assert.Empty(t, executed)
}

func TestIsolatedUnitDetectsMissingCase(t *testing.T) {
	var executed []string
	code, rec := runAsIsolatedUnit(t, 4, "fourth", threeCases(&executed))
	assert.Equal(t, exitCodeIsolationError, code)
	assert.Equal(t, OutcomeCrashed, rec.outcome)
	assert.Contains(t, rec.message, "only 3 cases were")
	assert.Empty(t, executed)
}

func TestIsolatedTargetFromEnv(t *testing.T) {
	t.Run("invalid ordinal", func(t *testing.T) {
		for _, value := range []string{"x", "0", "-2"} {
			t.Setenv(IsolatedCaseEnvVar, value)
			_, err := isolatedTargetFromEnv()
			assert.Error(t, err, value)
		}
	})

	t.Run("IsIsolatedUnit", func(t *testing.T) {
		t.Setenv(IsolatedCaseEnvVar, "")
		assert.False(t, IsIsolatedUnit())
		t.Setenv(IsolatedCaseEnvVar, "1")
		assert.True(t, IsIsolatedUnit())
	})
}
