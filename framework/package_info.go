// Package framework contains the low-level pieces of the test bench that are shared by its
// subpackages. The base package holds types such as CapturedOutput; the execution engine is
// in the subpackage bench.
//
// The general model is:
//
// 1. A test run is a tree of named groups and cases, declared by ordinary Go code.
//
// 2. Each case runs in its own child process, so that a crash inside the case cannot take the
// harness down with it. Everything the case writes to stdout or stderr is captured.
//
// 3. The harness collects one verdict per case and reports it with indentation that mirrors
// the nesting of the groups.
package framework
