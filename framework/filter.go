package framework

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Filter is a function that can determine whether to run a specific test or not.
type Filter func(TestID) bool

// RegexFilters selects tests by ID.
//
// MustMatch patterns follow the convention of "go test -run": a pattern is split on "/" and
// each element is matched against the corresponding element of the test path, so that
// "chrome_mock_test/GET" runs the GET subtests of chrome_mock_test and nothing else. A test
// whose path is shorter than the pattern only has to match the elements it has, which lets the
// parents of a selected subtest run.
//
// MustNotMatch patterns are matched against the whole test ID.
type RegexFilters struct {
	MustMatch    PathRegexList
	MustNotMatch RegexList
}

func (r RegexFilters) AsFilter(id TestID) bool {
	return (!r.MustMatch.IsDefined() || r.MustMatch.AnyMatch(id)) &&
		!r.MustNotMatch.AnyMatch(id.String())
}

func (r RegexFilters) IsDefined() bool {
	return r.MustMatch.IsDefined() || r.MustNotMatch.IsDefined()
}

type RegexList struct {
	patterns []*regexp.Regexp
}

func (r RegexList) String() string {
	var ss []string
	for _, p := range r.patterns {
		ss = append(ss, `"`+p.String()+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser
func (r *RegexList) Set(value string) error {
	rx, err := regexp.Compile(value)
	if err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	r.patterns = append(r.patterns, rx)
	return nil
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

func (r RegexList) AnyMatch(s string) bool {
	for _, p := range r.patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// PathRegexList is a list of slash-separated patterns, each compiled element by element.
type PathRegexList struct {
	sources  []string
	patterns [][]*regexp.Regexp
}

func (r PathRegexList) String() string {
	var ss []string
	for _, s := range r.sources {
		ss = append(ss, `"`+s+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser
func (r *PathRegexList) Set(value string) error {
	var elements []*regexp.Regexp
	for _, part := range strings.Split(value, "/") {
		rx, err := regexp.Compile(part)
		if err != nil {
			return fmt.Errorf("invalid regex %q: %w", part, err)
		}
		elements = append(elements, rx)
	}
	r.sources = append(r.sources, value)
	r.patterns = append(r.patterns, elements)
	return nil
}

func (r PathRegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

func (r PathRegexList) AnyMatch(id TestID) bool {
	for _, elements := range r.patterns {
		if pathMatches(elements, id.Path) {
			return true
		}
	}
	return false
}

func pathMatches(elements []*regexp.Regexp, path []string) bool {
	for i, name := range path {
		if i >= len(elements) {
			return true
		}
		if !elements[i].MatchString(name) {
			return false
		}
	}
	return true
}

// PrintFilterDescription describes the active filters, if any, before a test run.
func PrintFilterDescription(w io.Writer, filters RegexFilters) {
	if !filters.IsDefined() {
		return
	}
	fmt.Fprintln(w, "Some tests will be skipped based on the filter criteria for this test run:")
	if filters.MustMatch.IsDefined() {
		fmt.Fprintf(w, "  skip any not matching %s\n", filters.MustMatch)
	}
	if filters.MustNotMatch.IsDefined() {
		fmt.Fprintf(w, "  skip any matching %s\n", filters.MustNotMatch)
	}
	fmt.Fprintln(w)
}
