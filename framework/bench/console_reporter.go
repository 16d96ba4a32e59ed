package bench

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/launchdarkly/testbench/framework/helpers"
)

const (
	passGlyph = "✓ "
	failGlyph = "✗ "
)

var consoleGroupColor = color.New(color.Bold)                      //nolint:gochecknoglobals
var consolePassGlyphColor = color.New(color.FgGreen)               //nolint:gochecknoglobals
var consolePassNameColor = color.New(color.FgHiBlack)              //nolint:gochecknoglobals
var consoleFailGlyphColor = color.New(color.FgRed)                 //nolint:gochecknoglobals
var consoleFailNameColor = color.New(color.FgWhite)                //nolint:gochecknoglobals
var consoleFailMessageColor = color.New(color.FgRed)               //nolint:gochecknoglobals
var consoleSkippedColor = color.New(color.Faint, color.FgBlue)     //nolint:gochecknoglobals
var consoleDetailsColor = color.New(color.Faint)                   //nolint:gochecknoglobals
var consoleAllPassedColor = color.New(color.Bold, color.FgGreen)   //nolint:gochecknoglobals
var consoleSomeFailedColor = color.New(color.Bold, color.FgRed)    //nolint:gochecknoglobals
var consoleFailedListColor = color.New(color.FgRed)                //nolint:gochecknoglobals

// ConsoleReporter writes a human-readable tree of results. Groups and cases are indented two
// spaces per level of depth; the summary at the end of the run is written separately.
type ConsoleReporter struct {
	// Out receives group and case lines. It defaults to os.Stderr.
	Out io.Writer

	// SummaryOut receives the summary written by EndLog. It defaults to os.Stdout.
	SummaryOut io.Writer

	// NoColor disables ANSI colors even if the output is a terminal.
	NoColor bool

	// ShowDetails adds the outcome, exit status and duration of every failed case.
	ShowDetails bool

	// OutputOnSuccess shows the captured output of passing cases too. The output of a failed case is
	// always shown.
	OutputOnSuccess bool
}

func (c ConsoleReporter) out() io.Writer {
	if c.Out == nil {
		return os.Stderr
	}
	return c.Out
}

func (c ConsoleReporter) summaryOut() io.Writer {
	if c.SummaryOut == nil {
		return os.Stdout
	}
	return c.SummaryOut
}

func (c ConsoleReporter) paint(col *color.Color, s string) string {
	if c.NoColor {
		return s
	}
	return col.Sprint(s)
}

func indent(depth int) string {
	if depth <= 1 {
		return ""
	}
	return strings.Repeat("  ", depth-1)
}

func lastName(id TestID) string {
	if len(id) == 0 {
		return ""
	}
	return id[len(id)-1]
}

func (c ConsoleReporter) GroupEntered(id TestID, depth int) {
	name := lastName(id)
	if depth == 1 {
		_, _ = fmt.Fprintln(c.out())
		name = c.paint(consoleGroupColor, name)
	}
	_, _ = fmt.Fprintf(c.out(), "%s%s\n", indent(depth), name)
}

func (c ConsoleReporter) CaseFinished(id TestID, depth int, verdict Verdict) {
	out := c.out()
	prefix := indent(depth)
	if verdict.Passed {
		_, _ = fmt.Fprintf(out, "%s%s%s\n", prefix,
			c.paint(consolePassGlyphColor, passGlyph), c.paint(consolePassNameColor, lastName(id)))
		if c.OutputOnSuccess {
			c.writeOutput(depth, verdict)
		}
		return
	}
	_, _ = fmt.Fprintf(out, "%s%s%s\n", prefix,
		c.paint(consoleFailGlyphColor, failGlyph), c.paint(consoleFailNameColor, lastName(id)))
	if verdict.Message != "" {
		for _, line := range strings.Split(verdict.Message, "\n") {
			_, _ = fmt.Fprintf(out, "%s%s\n", prefix, c.paint(consoleFailMessageColor, "  "+line))
		}
	}
	if c.ShowDetails {
		_, _ = fmt.Fprintf(out, "%s%s\n", prefix, c.paint(consoleDetailsColor,
			fmt.Sprintf("  (%s, exit status %d, %s)", verdict.Outcome, verdict.ExitCode, verdict.Duration)))
	}
	c.writeOutput(depth, verdict)
}

func (c ConsoleReporter) writeOutput(depth int, verdict Verdict) {
	if verdict.Output.IsEmpty() {
		return
	}
	out := c.out()
	_, _ = fmt.Fprintln(out)
	verdict.Output.Dump(out, strings.Repeat("  ", depth))
	_, _ = fmt.Fprintln(out)
}

func (c ConsoleReporter) CaseSkipped(id TestID, depth int, reason string) {
	text := "- " + lastName(id)
	if reason != "" {
		text += " (" + reason + ")"
	}
	_, _ = fmt.Fprintf(c.out(), "%s%s\n", indent(depth), c.paint(consoleSkippedColor, text))
}

func (c ConsoleReporter) Note(depth int, ok bool, message string) {
	glyph, col := passGlyph, consolePassGlyphColor
	if !ok {
		glyph, col = failGlyph, consoleFailGlyphColor
	}
	_, _ = fmt.Fprintf(c.out(), "%s  %s\n", indent(depth+1), c.paint(col, glyph+message))
}

// EndLog writes the list of failed cases, if any, and the summary line.
func (c ConsoleReporter) EndLog(results Results) error {
	out := c.summaryOut()
	if results.OK() {
		_, _ = fmt.Fprint(out, c.paint(consoleAllPassedColor,
			fmt.Sprintf("\n%s%d test%s complete.", passGlyph, results.Total, helpers.Plural(results.Total))), "\n\n")
		return nil
	}
	_, _ = fmt.Fprintf(out, "\n%s\n", c.paint(consoleFailedListColor, fmt.Sprintf("FAILED TESTS (%d):", results.Failed)))
	for _, f := range results.Failures {
		_, _ = fmt.Fprintf(out, "%s\n", c.paint(consoleFailedListColor, "  * "+f.TestID.String()))
	}
	_, _ = fmt.Fprint(out, c.paint(consoleSomeFailedColor,
		fmt.Sprintf("\n%s%d test%s out of %d failed.", failGlyph, results.Failed, helpers.Plural(results.Failed),
			results.Total)), "\n\n")
	return nil
}
