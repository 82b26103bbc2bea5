package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"
)

// ExcludedByFilterReason is the skip reason reported for tests the filter did not select.
const ExcludedByFilterReason = "excluded by filter parameters"

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
}

// Context is the framework-level state of a single test or group of tests. It is used similarly
// to *testing.T: failures are accumulated with Errorf, FailNow and Skip exit the current test
// immediately, and Run starts a subtest.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	hasSubtests bool
	skipped     bool
	skipReason  string
	errors      []error
	deferred    []func()
}

// Run executes the root action of a test run and returns the accumulated results. The root
// action itself is not recorded as a test; only the subtests it starts with Context.Run are.
func Run(
	filter Filter,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	startTime := time.Now()
	defer func() {
		if r := recover(); r != nil {
			if !c.skipped {
				c.failed = true
				var addError error
				if _, ok := r.(*Context); ok {
					if len(c.errors) == 0 {
						addError = errors.New("test failed with no failure message")
					}
				} else {
					addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
				}
				if addError != nil {
					c.errors = append(c.errors, addError)
					c.env.testLogger.TestError(c.id, addError)
				}
			}
		}
		c.runDeferred()
		if len(c.id.Path) == 0 {
			return
		}
		result := TestResult{
			TestID:      c.id,
			Errors:      c.errors,
			Skipped:     c.skipped,
			SkipReason:  c.skipReason,
			Duration:    time.Since(startTime),
			HasSubtests: c.hasSubtests,
		}
		c.env.results.Tests = append(c.env.results.Tests, result)
		if c.failed {
			c.env.results.Failures = append(c.env.results.Failures, result)
		} else if c.skipped {
			c.env.results.Skipped = append(c.env.results.Skipped, result)
		}
	}()

	action(c)
}

func (c *Context) runDeferred() {
	for i := len(c.deferred) - 1; i >= 0; i-- {
		c.deferred[i]()
	}
	c.deferred = nil
}

// ID returns the identifier of the current test.
func (c *Context) ID() TestID {
	return c.id
}

// Run runs a subtest with the given name. Subtests excluded by the filter are reported as
// skipped without being run.
func (c *Context) Run(name string, action func(*Context)) {
	id := c.id.Plus(name)

	c.env.testLogger.TestStarted(id)
	if c.env.filter != nil && !c.env.filter(id) {
		c.env.testLogger.TestSkipped(id, ExcludedByFilterReason)
		return
	}
	c.hasSubtests = true
	c1 := &Context{
		id:  id,
		env: c.env,
	}
	c1.run(action)
	if c1.skipped {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	} else {
		c.env.testLogger.TestFinished(id, c1.failed, c1.debugLogger.Output())
	}
}

func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, err)
}

func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Failed() bool {
	return c.failed
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Defer schedules a cleanup function to run when the current test exits, whether it passed,
// failed or panicked. Cleanups run in reverse order of registration.
func (c *Context) Defer(fn func()) {
	c.deferred = append(c.deferred, fn)
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}
