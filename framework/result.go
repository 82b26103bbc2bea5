package framework

import (
	"strings"
	"time"
)

type Results struct {
	Tests    []TestResult
	Failures []TestResult
	Skipped  []TestResult
}

type TestResult struct {
	TestID     TestID
	Errors     []error
	Skipped    bool
	SkipReason string
	Duration   time.Duration

	// HasSubtests is true for a group whose subtests actually ran. Such a group is reported
	// only if it failed or was skipped on its own account.
	HasSubtests bool
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// TestCount is the number of results that describe a check rather than a group of checks.
func (r Results) TestCount() int {
	n := 0
	for _, t := range r.Tests {
		if t.counted() {
			n++
		}
	}
	return n
}

// Failed reports whether the test recorded at least one error.
func (r TestResult) Failed() bool {
	return len(r.Errors) != 0
}

func (r TestResult) counted() bool {
	return !r.HasSubtests || r.Failed() || r.Skipped
}

type TestID struct {
	Path []string
}

// Plus returns the ID of a subtest of this test.
func (t TestID) Plus(name string) TestID {
	return TestID{Path: append(append([]string(nil), t.Path...), name)}
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}
