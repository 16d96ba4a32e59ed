// Package config defines the options for a test bench run and how they are read from a file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Options are the settings of a test run that can come from a config file. Command-line flags
// take precedence over anything set here.
type Options struct {
	// Run is a list of test ID patterns; if non-empty, only cases matching one of them are run.
	Run []string `json:"run"`

	// Skip is a list of test ID patterns for cases that should not be run.
	Skip []string `json:"skip"`

	// Debug adds the outcome, exit status and duration of every failed case to the console output.
	Debug bool `json:"debug"`

	// DebugAll also shows captured output of passed cases, and enables harness diagnostics.
	DebugAll bool `json:"debugAll"`

	// NoColor disables ANSI colors in console output.
	NoColor bool `json:"noColor"`

	// JUnitFile, if set, is where a JUnit XML report is written at the end of the run.
	JUnitFile string `json:"junit"`

	// CaseTimeout is the longest a single case may run before it is killed. Zero means no limit.
	CaseTimeout Duration `json:"caseTimeout"`
}

// Duration is a time.Duration that can be read either from a string such as "1m30s" or from a
// number of seconds.
type Duration time.Duration

func (d Duration) Value() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*d = 0
	case float64:
		*d = Duration(v * float64(time.Second))
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("invalid duration value: %s", string(data))
	}
	if *d < 0 {
		return errors.New("duration cannot be negative")
	}
	return nil
}

// LoadFile reads Options from a JSON or YAML file.
func LoadFile(path string) (Options, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return Options{}, fmt.Errorf("cannot read config file: %w", err)
	}
	ret, err := parseOptions(data)
	if err != nil {
		return ret, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return ret, nil
}
