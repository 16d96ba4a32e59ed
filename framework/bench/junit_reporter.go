package bench

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/launchdarkly/testbench/framework/opt"
)

// JUnitReporter collects results and writes them as a JUnit XML file at the end of the run, with
// one test suite per top-level group.
type JUnitReporter struct {
	FilePath   string
	SuiteTitle string
	Filters    RegexFilters
	testIDs    []TestID // this slice preserves the order that the tests were run in
	tests      map[string]jUnitTestStatus
}

type jUnitTestStatus struct {
	verdict opt.Maybe[Verdict]
	skipped opt.Maybe[string]
}

// Struct definitions for the JUnit XML schema - see https://github.com/jstemmer/go-junit-report

type jUnitXMLDocument struct {
	XMLName xml.Name            `xml:"testsuites"`
	Suites  []jUnitXMLTestSuite `xml:"testsuite"`
}

type jUnitXMLTestSuite struct {
	XMLName    xml.Name           `xml:"testsuite"`
	Tests      int                `xml:"tests,attr"`
	Failures   int                `xml:"failures,attr"`
	Skipped    int                `xml:"skipped,attr"`
	Time       string             `xml:"time,attr"`
	Name       string             `xml:"name,attr"`
	Properties []jUnitXMLProperty `xml:"properties>property,omitempty"`
	TestCases  []jUnitXMLTestCase `xml:"testcase"`
}

type jUnitXMLTestCase struct {
	XMLName     xml.Name             `xml:"testcase"`
	Classname   string               `xml:"classname,attr"`
	Name        string               `xml:"name,attr"`
	Time        string               `xml:"time,attr"`
	SkipMessage *jUnitXMLSkipMessage `xml:"skipped,omitempty"`
	Failure     *jUnitXMLFailure     `xml:"failure,omitempty"`
	SystemOut   string               `xml:"system-out,omitempty"`
}

type jUnitXMLSkipMessage struct {
	Message string `xml:"message,attr"`
}

type jUnitXMLProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type jUnitXMLFailure struct {
	Message  string `xml:"message,attr"`
	Type     string `xml:"type,attr"`
	Contents string `xml:",chardata"`
}

// NewJUnitReporter creates a JUnitReporter that will write to filePath.
func NewJUnitReporter(filePath, suiteTitle string, filters RegexFilters) *JUnitReporter {
	return &JUnitReporter{
		FilePath:   filePath,
		SuiteTitle: suiteTitle,
		Filters:    filters,
		tests:      make(map[string]jUnitTestStatus),
	}
}

func (j *JUnitReporter) GroupEntered(TestID, int) {}

func (j *JUnitReporter) Note(int, bool, string) {}

func (j *JUnitReporter) CaseFinished(id TestID, _ int, verdict Verdict) {
	j.testIDs = append(j.testIDs, id)
	j.tests[id.String()] = jUnitTestStatus{verdict: opt.Some(verdict)}
}

func (j *JUnitReporter) CaseSkipped(id TestID, _ int, reason string) {
	j.testIDs = append(j.testIDs, id)
	j.tests[id.String()] = jUnitTestStatus{skipped: opt.Some(reason)}
}

// EndLog writes the XML file.
func (j *JUnitReporter) EndLog(Results) error {
	bytes, err := xml.MarshalIndent(j.document(), "", "  ")
	if err != nil {
		return err
	}
	bytes = append(bytes, '\n')
	return os.WriteFile(j.FilePath, bytes, 0644) //nolint:gosec
}

func (j *JUnitReporter) document() jUnitXMLDocument {
	var doc jUnitXMLDocument

	properties := []jUnitXMLProperty{
		{
			Name:  "tests.filter.mustMatch",
			Value: j.Filters.MustMatch.String(),
		},
		{
			Name:  "tests.filter.mustNotMatch",
			Value: j.Filters.MustNotMatch.String(),
		},
	}

	for _, topLevelID := range getTopLevelIDs(j.testIDs) {
		suite := jUnitXMLTestSuite{
			Name:       topLevelID,
			Properties: properties,
		}
		if j.SuiteTitle != "" {
			suite.Name = fmt.Sprintf("%s: %s", j.SuiteTitle, topLevelID)
		}
		suiteTotalDuration := time.Duration(0)
		for _, testID := range j.testIDs {
			if len(testID) == 0 || testID[0] != topLevelID {
				continue
			}
			status := j.tests[testID.String()]
			testCase := jUnitXMLTestCase{
				Classname: topLevelID,
				Name:      testID.String(),
			}
			suite.Tests++

			if status.skipped.IsDefined() {
				suite.Skipped++
				testCase.Time = jUnitDurationString(0)
				testCase.SkipMessage = &jUnitXMLSkipMessage{Message: status.skipped.Value()}
				suite.TestCases = append(suite.TestCases, testCase)
				continue
			}

			verdict := status.verdict.Value()
			suiteTotalDuration += verdict.Duration
			testCase.Time = jUnitDurationString(verdict.Duration)
			if verdict.Passed {
				testCase.SystemOut = verdict.Output.ToString("")
			} else {
				suite.Failures++
				testCase.Failure = &jUnitXMLFailure{
					Message:  verdict.Message,
					Type:     verdict.Outcome.String(),
					Contents: verdict.Output.ToString(""),
				}
			}
			suite.TestCases = append(suite.TestCases, testCase)
		}
		suite.Time = jUnitDurationString(suiteTotalDuration)
		doc.Suites = append(doc.Suites, suite)
	}
	return doc
}

func getTopLevelIDs(allIDs []TestID) []string {
	var ret []string
	seen := make(map[string]bool)
	for _, testID := range allIDs {
		if len(testID) != 0 && !seen[testID[0]] {
			ret = append(ret, testID[0])
			seen[testID[0]] = true
		}
	}
	return ret
}

func jUnitDurationString(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
