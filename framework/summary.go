package framework

import (
	"fmt"
	"io"
	"io/ioutil"
	"time"

	"github.com/fatih/color"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// SummaryJSON describes a finished run in a form that other tooling can parse without
// understanding JUnit.
func SummaryJSON(runID string, results Results, elapsed time.Duration) ldvalue.Value {
	failed := ldvalue.ArrayBuild()
	for _, f := range results.Failures {
		failed = failed.Add(ldvalue.String(f.TestID.String()))
	}
	return ldvalue.ObjectBuild().
		Set("runId", ldvalue.String(runID)).
		Set("ok", ldvalue.Bool(results.OK())).
		Set("tests", ldvalue.Int(results.TestCount())).
		Set("failures", ldvalue.Int(len(results.Failures))).
		Set("skipped", ldvalue.Int(len(results.Skipped))).
		Set("elapsedSeconds", ldvalue.Float64(elapsed.Seconds())).
		Set("failedTests", failed.Build()).
		Build()
}

// WriteSummaryJSON writes SummaryJSON to path.
func WriteSummaryJSON(path, runID string, results Results, elapsed time.Duration) error {
	data := SummaryJSON(runID, results, elapsed).JSONString()
	return ioutil.WriteFile(path, []byte(data+"\n"), 0644)
}

// PrintResults prints the closing summary of a run in the familiar unittest layout.
func PrintResults(w io.Writer, results Results, elapsed time.Duration) {
	if len(results.Failures) > 0 {
		fmt.Fprintln(w, "Failed tests:")
		for _, f := range results.Failures {
			fmt.Fprintf(w, "  %s\n", f.TestID)
			for _, e := range f.Errors {
				fmt.Fprintf(w, "    %s\n", e)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Ran %d tests in %.3fs\n", results.TestCount(), elapsed.Seconds())
	fmt.Fprintln(w)

	var details string
	if len(results.Failures) > 0 {
		details = fmt.Sprintf("failures=%d", len(results.Failures))
	}
	if len(results.Skipped) > 0 {
		if details != "" {
			details += ", "
		}
		details += fmt.Sprintf("skipped=%d", len(results.Skipped))
	}
	if details != "" {
		details = " (" + details + ")"
	}

	if results.OK() {
		fmt.Fprintln(w, color.GreenString("OK")+details)
	} else {
		fmt.Fprintln(w, color.RedString("FAILED")+details)
	}
}
