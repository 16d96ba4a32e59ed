package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/launchdarkly/testbench/framework/bench"
	"github.com/launchdarkly/testbench/framework/config"
)

type commandParams struct {
	configFile     string
	filters        bench.RegexFilters
	skipFile       string
	recordFailures string
	debug          bool
	debugAll       bool
	noColor        bool
	jUnitFile      string
	caseTimeout    time.Duration
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.configFile, "config", "", "JSON or YAML file with default values for these options")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.StringVar(&c.skipFile, "skip-from", "", "file containing test IDs to skip, one per line")
	fs.StringVar(&c.recordFailures, "record-failures", "", "record failed test IDs to the given file")
	fs.BoolVar(&c.debug, "debug", false, "show outcome, exit status and duration of failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "show output of all tests, and enable debug logging")
	fs.BoolVar(&c.noColor, "no-color", false, "disable colors in console output")
	fs.StringVar(&c.jUnitFile, "junit", "", "write JUnit XML output to the specified path")
	fs.DurationVar(&c.caseTimeout, "timeout", 0, "kill any test that runs longer than this (0 for no limit)")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	if c.configFile != "" {
		if err := c.applyConfigFile(fs); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return false
		}
	}
	if c.caseTimeout < 0 {
		fmt.Fprintln(os.Stderr, "-timeout cannot be negative")
		fs.Usage()
		return false
	}
	return true
}

// applyConfigFile fills in every option that was not given on the command line. Test patterns
// from both places are combined.
func (c *commandParams) applyConfigFile(fs *flag.FlagSet) error {
	opts, err := config.LoadFile(c.configFile)
	if err != nil {
		return err
	}
	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	for _, p := range opts.Run {
		if err := c.filters.MustMatch.Set(p); err != nil {
			return fmt.Errorf("invalid run pattern %q in %s: %w", p, c.configFile, err)
		}
	}
	for _, p := range opts.Skip {
		if err := c.filters.MustNotMatch.Set(p); err != nil {
			return fmt.Errorf("invalid skip pattern %q in %s: %w", p, c.configFile, err)
		}
	}
	if !explicit["debug"] {
		c.debug = opts.Debug
	}
	if !explicit["debug-all"] {
		c.debugAll = opts.DebugAll
	}
	if !explicit["no-color"] {
		c.noColor = opts.NoColor
	}
	if !explicit["junit"] {
		c.jUnitFile = opts.JUnitFile
	}
	if !explicit["timeout"] {
		c.caseTimeout = opts.CaseTimeout.Value()
	}
	return nil
}
