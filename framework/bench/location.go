package bench

import (
	"fmt"
	"regexp"
	"runtime"
	"strings"
)

// Assertion libraries whose frames never count as the location of a failure.
var assertionPackagePrefixes = []string{ //nolint:gochecknoglobals
	"github.com/stretchr/testify/",
	"github.com/launchdarkly/go-test-helpers/",
}

// StacktraceInfo describes one stack frame.
type StacktraceInfo struct {
	FileName string
	Package  string
	Function string
	Line     int
}

func (s StacktraceInfo) String() string {
	return fmt.Sprintf("%s.%s (%s:%d)", s.Package, s.Function, s.FileName, s.Line)
}

// Location is the short form used as a suffix of failure messages.
func (s StacktraceInfo) Location() string {
	return fmt.Sprintf("%s:%d", s.FileName, s.Line)
}

var errorTraceInMessageRegex = regexp.MustCompile(`^(?s:\s*Error Trace:.*\sError:\s*)`)

// stripTestifyTrace removes the stacktrace that testify's assert and require functions put in
// front of their messages, since we add our own location.
func stripTestifyTrace(message string) string {
	if strings.Contains(message, "Error Trace:") {
		return strings.TrimSpace(errorTraceInMessageRegex.ReplaceAllLiteralString(message, ""))
	}
	return message
}

func currentPackageName() string {
	pc, _, _, ok := runtime.Caller(0)
	if !ok {
		return "?"
	}
	f := runtime.FuncForPC(pc)
	if f == nil {
		return "?"
	}
	packageName, _ := parsePackageAndFunctionName(f.Name())
	return packageName
}

// getStacktrace returns the frames of the calling goroutine, innermost first, stopping at the
// frame that invoked the case body. Frames of this package (other than its test files), of
// assertion libraries, and of functions named in helperFns are left out.
func getStacktrace(helperFns []string) []StacktraceInfo {
	callers := []StacktraceInfo{}
	currentPackage := currentPackageName()
StackLoop:
	for i := 1; ; i++ { // start at 1 because 0 would just be getStacktrace itself
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		f := runtime.FuncForPC(pc)
		if f == nil {
			break
		}
		isTestFile := strings.HasSuffix(file, "_test.go")
		parts := strings.Split(file, "/")
		file = parts[len(parts)-1]

		fullFunctionName := f.Name()
		packageName, functionName := parsePackageAndFunctionName(fullFunctionName)

		if packageName == currentPackage && functionName == "(*T).runBody" {
			break // everything below this is the harness itself
		}
		if packageName == currentPackage && !isTestFile {
			continue StackLoop
		}
		for _, prefix := range assertionPackagePrefixes {
			if strings.HasPrefix(packageName, prefix) {
				continue StackLoop
			}
		}
		for _, helperFn := range helperFns {
			if helperFn == fullFunctionName {
				continue StackLoop
			}
		}

		callers = append(callers, StacktraceInfo{FileName: file, Package: packageName, Function: functionName, Line: line})
	}
	return callers
}

// failureLocation returns the "file:line" of the innermost frame that is neither harness code nor
// a helper, or "" if there is none.
func failureLocation(helperFns []string) string {
	stack := getStacktrace(helperFns)
	if len(stack) == 0 {
		return ""
	}
	return stack[0].Location()
}

func parsePackageAndFunctionName(fullName string) (string, string) {
	lastSlash := strings.LastIndex(fullName, "/")
	firstDotAfterSlash := strings.Index(fullName[lastSlash+1:], ".")
	packageName := fullName[0 : lastSlash+firstDotAfterSlash+1]
	functionName := fullName[len(packageName)+1:]
	return packageName, functionName
}
