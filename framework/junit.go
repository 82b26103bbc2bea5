package framework

import (
	"encoding/xml"
	"io/ioutil"
	"strings"
)

// JUnitReport is the JUnit XML form of a test run, as consumed by CI dashboards.
type JUnitReport struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Skipped    int              `xml:"skipped,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      float64         `xml:"time,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitMessage `xml:"failure,omitempty"`
	Skipped   *JUnitMessage `xml:"skipped,omitempty"`
}

type JUnitMessage struct {
	Message string `xml:"message,attr,omitempty"`
	Value   string `xml:",chardata"`
}

// NewJUnitReport converts results into one test suite per top-level test module. A group of
// subtests only becomes a test case if it failed or was skipped, since its subtests already
// describe what ran.
func NewJUnitReport(runID string, results Results) JUnitReport {
	report := JUnitReport{Name: runID}
	suiteIndex := make(map[string]int)

	for _, r := range results.Tests {
		module := r.TestID.Path[0]
		i, ok := suiteIndex[module]
		if !ok {
			i = len(report.TestSuites)
			suiteIndex[module] = i
			report.TestSuites = append(report.TestSuites, JUnitTestSuite{Name: module})
		}
		suite := &report.TestSuites[i]

		if len(r.TestID.Path) == 1 {
			suite.Time = r.Duration.Seconds()
		}
		if !r.counted() {
			continue
		}

		tc := JUnitTestCase{
			Name:      testCaseName(r.TestID),
			ClassName: module,
			Time:      r.Duration.Seconds(),
		}
		switch {
		case r.Failed():
			tc.Failure = &JUnitMessage{Message: r.Errors[0].Error(), Value: joinErrors(r.Errors)}
			suite.Failures++
		case r.Skipped:
			tc.Skipped = &JUnitMessage{Message: r.SkipReason}
			suite.Skipped++
		}
		suite.Tests++
		suite.TestCases = append(suite.TestCases, tc)
	}

	for _, s := range report.TestSuites {
		report.Tests += s.Tests
		report.Failures += s.Failures
		report.Skipped += s.Skipped
		report.Time += s.Time
	}
	return report
}

// WriteJUnitReport writes the report for results to path.
func WriteJUnitReport(path, runID string, results Results) error {
	data, err := xml.MarshalIndent(NewJUnitReport(runID, results), "", "  ")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, append([]byte(xml.Header), data...), 0644)
}

func testCaseName(id TestID) string {
	if len(id.Path) == 1 {
		return id.Path[0]
	}
	return strings.Join(id.Path[1:], "/")
}

func joinErrors(errs []error) string {
	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		lines = append(lines, e.Error())
	}
	return strings.Join(lines, "\n")
}
