package framework

import (
	"bytes"
	"io"
	"strings"
)

// CapturedOutput is everything an isolated test case wrote to its standard output and standard
// error streams, in the order it was written.
type CapturedOutput []byte

// IsEmpty returns true if nothing was captured.
func (output CapturedOutput) IsEmpty() bool {
	return len(bytes.TrimSpace(output)) == 0
}

// Lines splits the output into lines. A trailing newline does not produce an empty last line.
func (output CapturedOutput) Lines() []string {
	if len(output) == 0 {
		return nil
	}
	s := strings.TrimSuffix(string(output), "\n")
	return strings.Split(s, "\n")
}

// ToString returns the output with prefix prepended to every line.
func (output CapturedOutput) ToString(prefix string) string {
	lines := output.Lines()
	for i, line := range lines {
		lines[i] = prefix + strings.TrimSuffix(line, "\r")
	}
	return strings.Join(lines, "\n")
}

// Dump writes the output to dest with prefix prepended to every line, followed by a newline.
func (output CapturedOutput) Dump(dest io.Writer, prefix string) {
	if len(output) == 0 {
		return
	}
	_, _ = io.WriteString(dest, output.ToString(prefix)+"\n")
}
