package sdktests

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/naclsdk/sdk-tests/config"
	"github.com/naclsdk/sdk-tests/framework"
	"github.com/naclsdk/sdk-tests/servicedef"
)

const (
	awaitRequestTimeout = time.Second * 5
	awaitOutputTimeout  = time.Second * 5
	processExitTimeout  = time.Second * 10
)

type environment struct {
	config  config.Config
	harness *framework.TestHarness
}

// T represents a test or subtest in the SDK test suite.
//
// It implements the same basic functionality as Go's testing.T, in an environment that is outside
// of the Go test runner. Pass it to the assert and require packages as if it were a *testing.T.
//
// It also knows the run configuration and owns the mock endpoint listener, so tests can point
// child processes at endpoints they create. Endpoints and processes started through T are cleaned
// up when the test that started them exits.
type T struct {
	context *framework.Context
	env     *environment
}

func newTestScope(context *framework.Context, env *environment) *T {
	return &T{context: context, env: env}
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest. This is equivalent to the Run method of testing.T.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(newTestScope(c, t.env))
	})
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// Defer schedules fn to run when the current test exits.
func (t *T) Defer(fn func()) {
	t.context.Defer(fn)
}

// Skip marks the test as skipped and exits it immediately.
func (t *T) Skip(reason string) {
	t.context.SkipWithReason(reason)
}

func (t *T) Config() config.Config {
	return t.env.config
}

func (t *T) Harness() *framework.TestHarness {
	return t.env.harness
}

// NewMockEndpoint creates an endpoint on the test harness that is closed when the test exits.
// A nil handler answers every request with 200.
func (t *T) NewMockEndpoint(handler http.Handler, description string) *framework.MockEndpoint {
	e := t.env.harness.NewMockEndpoint(handler, description, t.context.DebugLogger())
	t.Defer(e.Close)
	return e
}

// RequireRequest waits for a request to the endpoint and fails the test if none arrives.
func (t *T) RequireRequest(e *framework.MockEndpoint) framework.IncomingRequestInfo {
	info, err := e.AwaitConnection(awaitRequestTimeout)
	require.NoError(t, err)
	return info
}

// RequireChromeMock skips the current test if the chrome_mock binary is not where the
// configuration says it is.
func (t *T) RequireChromeMock() {
	path := t.env.config.ChromeMockPath
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		t.Skip(fmt.Sprintf("chrome_mock binary not found at %s", path))
	}
}

// StartChromeMock starts chrome_mock with the given parameters. The process is killed when the
// test exits, if it is still running.
func (t *T) StartChromeMock(params servicedef.ChromeMockParams) *framework.ChildProcess {
	return t.StartChromeMockArgs(params.Args()...)
}

// StartChromeMockArgs starts chrome_mock with a raw argument list, for tests that pass arguments
// ChromeMockParams cannot express.
func (t *T) StartChromeMockArgs(args ...string) *framework.ChildProcess {
	p, err := framework.StartChildProcess(
		framework.PrefixedLogger(t.context.DebugLogger(), "[chrome_mock] "),
		t.env.config.ChromeMockPath,
		args...,
	)
	require.NoError(t, err)
	t.Defer(func() {
		if !p.Exited() {
			_ = p.Kill()
			_ = p.Wait(processExitTimeout)
		}
	})
	return p
}

// RequireLine waits for the process to print a line equal to expected.
func (t *T) RequireLine(p *framework.ChildProcess, expected string) {
	_, err := p.AwaitLine(framework.LineEquals(expected), awaitOutputTimeout)
	require.NoError(t, err)
}

// RequireExit waits for the process to exit and returns its exit code, which is -1 if it was
// terminated by a signal.
func (t *T) RequireExit(p *framework.ChildProcess) int {
	_ = p.Wait(processExitTimeout)
	require.True(t, p.Exited(), "chrome_mock did not exit within %s", processExitTimeout)
	t.Debug("chrome_mock exited with code %d after %s", p.ExitCode(), p.Runtime())
	return p.ExitCode()
}
