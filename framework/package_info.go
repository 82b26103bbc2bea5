// Package framework contains the low-level implementation of test harness infrastructure
// that is not specific to the SDK tests themselves.
//
// The general model is:
//
// 1. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results. Run drives a whole suite and returns its Results.
//
// 2. The test harness can expose any number of mock HTTP endpoints on a local listener, to
// receive requests from processes under test.
//
// 3. ChildProcess starts such a process, collects its output line by line, and lets a test
// kill it at a chosen moment.
//
// 4. Results can be printed in a unittest-style summary, or written as JUnit XML or a JSON
// summary.
//
// The domain-specific code that knows what is being tested lives in the sdktests package.
package framework
