package sdktests

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/naclsdk/sdk-tests/config"
	"github.com/naclsdk/sdk-tests/framework"
)

// Extractor prepares the toolchain fixture before any module runs.
type Extractor interface {
	CommandLine() string
	Extract(ctx context.Context) error
}

// Runner runs one complete test session: toolchain extraction followed by every module.
type Runner struct {
	Extractor   Extractor
	Registry    *Registry
	Modules     []string
	Config      config.Config
	Filter      framework.Filter
	TestLogger  framework.TestLogger
	DebugLogger framework.Logger

	// Out receives the progress lines. It defaults to os.Stdout.
	Out io.Writer
}

// RunAll extracts the toolchain, resolves the modules and runs them in order. An error means
// the session could not start; failed tests are reported in the results instead.
func (r *Runner) RunAll(ctx context.Context) (framework.Results, error) {
	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	debugLogger := r.DebugLogger
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}
	registry := r.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}
	names := r.Modules
	if names == nil {
		names = TestModules
	}

	fmt.Fprintln(out, "Extracting toolchains...")
	if err := r.Extractor.Extract(ctx); err != nil {
		return framework.Results{}, err
	}

	modules, err := registry.Resolve(names)
	if err != nil {
		return framework.Results{}, err
	}

	harness, err := framework.NewTestHarness(r.Config.Harness.Host, r.Config.Harness.Port, debugLogger)
	if err != nil {
		return framework.Results{}, err
	}
	defer func() {
		if err := harness.Close(); err != nil {
			debugLogger.Printf("Error closing mock endpoint listener: %s", err)
		}
	}()

	fmt.Fprintln(out, "Running unittests...")
	return RunModules(harness, r.Config, modules, r.Filter, r.TestLogger), nil
}

// RunModules runs the given modules as one suite. Each module becomes a top-level test named
// after the module.
func RunModules(
	harness *framework.TestHarness,
	cfg config.Config,
	modules []NamedModule,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	env := &environment{config: cfg, harness: harness}
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		t := newTestScope(c, env)
		for _, m := range modules {
			t.Run(m.Name, m.Module)
		}
	})
}

// ExitCode maps the outcome of RunAll to the process exit status.
func ExitCode(results framework.Results, err error) int {
	if err != nil || !results.OK() {
		return 1
	}
	return 0
}
