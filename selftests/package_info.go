// Package selftests contains a test suite for the test bench itself. Every primitive of the
// framework is exercised, including cases that are expected to fail; the outcome of those is
// checked with Expectations.MustFail.
package selftests
