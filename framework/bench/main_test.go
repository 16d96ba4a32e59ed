package bench

import (
	"fmt"
	"os"
	"testing"
	"time"
)

// fixtureSuiteEnvVar tells a re-executed test binary which of the fixture suites to declare.
const fixtureSuiteEnvVar = "TESTBENCH_FIXTURE_SUITE"

// lingeringProcessEnvVar makes the test binary sleep and exit, so that a case can leave a process
// running in the background.
const lingeringProcessEnvVar = "TESTBENCH_LINGER"

const lingeringProcessDuration = 10 * time.Second

func TestMain(m *testing.M) {
	if os.Getenv(lingeringProcessEnvVar) != "" {
		time.Sleep(lingeringProcessDuration)
		os.Exit(0)
	}
	if name := os.Getenv(fixtureSuiteEnvVar); name != "" {
		suite, ok := fixtureSuites[name]
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown fixture suite %q\n", name)
			os.Exit(2)
		}
		os.Exit(Main(RunConfiguration{}, suite))
	}
	os.Exit(m.Run())
}

// runFixtureSuite runs one of the fixture suites with every case in a child process that is a
// copy of the current test binary.
func runFixtureSuite(t *testing.T, name string, config RunConfiguration) Results {
	t.Helper()
	if _, ok := fixtureSuites[name]; !ok {
		t.Fatalf("unknown fixture suite %q", name)
	}
	config.Args = []string{"-test.run=^$"}
	config.Env = append(config.Env, fixtureSuiteEnvVar+"="+name)
	return Run(config, fixtureSuites[name])
}
