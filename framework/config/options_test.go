package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadFileYAML(t *testing.T) {
	path := writeTempConfig(t, "testbench.yaml", `---
run:
  - fixtures
skip:
  - "fixtures/slow.*"
debug: true
noColor: true
junit: out/results.xml
caseTimeout: 1m30s
`)
	opts, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"fixtures"}, opts.Run)
	assert.Equal(t, []string{"fixtures/slow.*"}, opts.Skip)
	assert.True(t, opts.Debug)
	assert.False(t, opts.DebugAll)
	assert.True(t, opts.NoColor)
	assert.Equal(t, "out/results.xml", opts.JUnitFile)
	assert.Equal(t, 90*time.Second, opts.CaseTimeout.Value())
}

func TestLoadFileJSON(t *testing.T) {
	path := writeTempConfig(t, "testbench.json", `{"debugAll": true, "caseTimeout": 2.5}`)
	opts, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, opts.DebugAll)
	assert.Equal(t, 2500*time.Millisecond, opts.CaseTimeout.Value())
	assert.Nil(t, opts.Run)
}

func TestLoadFileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "cannot read config file")
	})

	t.Run("bad duration", func(t *testing.T) {
		path := writeTempConfig(t, "bad.yaml", "caseTimeout: soon\n")
		_, err := LoadFile(path)
		assert.ErrorContains(t, err, "invalid config file")
	})

	t.Run("negative duration", func(t *testing.T) {
		path := writeTempConfig(t, "neg.json", `{"caseTimeout": "-1s"}`)
		_, err := LoadFile(path)
		assert.Error(t, err)
	})
}
