package main

import (
	"bufio"
	_ "embed" // this is required in order for go:embed to work
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/launchdarkly/testbench/framework/bench"
	"github.com/launchdarkly/testbench/selftests"
)

//go:embed VERSION
var versionString string // comes from the VERSION file which we update for each release

var expectationsMetColor = color.New(color.Bold, color.FgGreen)  //nolint:gochecknoglobals
var expectationsFailedColor = color.New(color.Bold, color.FgRed) //nolint:gochecknoglobals

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}
	if params.noColor {
		color.NoColor = true
	}
	if !bench.IsIsolatedUnit() {
		fmt.Printf("testbench v%s\n", strings.TrimSpace(versionString))
	}

	expectations, err := run(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !expectations.OK() {
		_, _ = expectationsFailedColor.Fprint(os.Stderr, "✗ Some tests expected to fail didn't.\n\n")
		os.Exit(1)
	}
	_, _ = expectationsMetColor.Fprint(os.Stderr, "✓ All tests expected to fail have failed.\n\n")
}

func run(params commandParams) (*selftests.Expectations, error) {
	if params.skipFile != "" {
		if err := loadSuppressions(&params); err != nil {
			return nil, err
		}
	}

	loggers := ldlog.NewDefaultLoggers()
	loggers.SetMinLevel(ldlog.Warn)
	if params.debugAll {
		loggers.SetMinLevel(ldlog.Debug)
	}

	var reporter bench.Reporter
	console := bench.ConsoleReporter{
		NoColor:         params.noColor,
		ShowDetails:     params.debug || params.debugAll,
		OutputOnSuccess: params.debugAll,
	}
	if params.jUnitFile == "" {
		reporter = console
	} else {
		reporter = bench.MultiReporter{Reporters: []bench.Reporter{
			console,
			bench.NewJUnitReporter(params.jUnitFile, "testbench self-tests", params.filters),
		}}
	}

	if !bench.IsIsolatedUnit() {
		params.filters.Describe(os.Stdout)
	}

	var expectations selftests.Expectations
	results := bench.Run(
		bench.RunConfiguration{
			Filter:      params.filters,
			Reporter:    reporter,
			Loggers:     loggers,
			CaseTimeout: params.caseTimeout,
		},
		selftests.Suite(&expectations),
	)

	if params.jUnitFile != "" {
		fmt.Printf("Writing JUnit data to %s\n", params.jUnitFile)
	}
	if err := reporter.EndLog(results); err != nil {
		return nil, fmt.Errorf("error writing log: %w", err)
	}

	if params.recordFailures != "" {
		f, err := os.Create(params.recordFailures)
		if err != nil {
			return nil, fmt.Errorf("cannot create suppression file: %w", err)
		}
		for _, test := range results.Failures {
			fmt.Fprintln(f, test.TestID)
		}
		_ = f.Close()
	}

	return &expectations, nil
}

func loadSuppressions(params *commandParams) error {
	file, err := os.Open(params.skipFile)
	if err != nil {
		return fmt.Errorf("cannot open provided suppression file: %w", err)
	}
	defer func() { _ = file.Close() }()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		// Ignore blank lines
		if strings.TrimSpace(line) == "" {
			continue
		}
		escaped := regexp.QuoteMeta(line)
		if err := params.filters.MustNotMatch.Set(escaped); err != nil {
			return fmt.Errorf("cannot parse suppression: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("while processing suppression file: %w", err)
	}
	return nil
}
