// Command sdk-tests prepares the toolchain fixture and runs the SDK test modules as one suite.
// It exits with 0 if every test passed and 1 otherwise.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/xid"
	"github.com/urfave/cli/v2"

	"github.com/naclsdk/sdk-tests/config"
	"github.com/naclsdk/sdk-tests/framework"
	"github.com/naclsdk/sdk-tests/logging"
	"github.com/naclsdk/sdk-tests/sdktests"
	"github.com/naclsdk/sdk-tests/toolchain"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var params commandParams
	exitCode := 0

	app := &cli.App{
		Name:           "sdk-tests",
		Usage:          "run all unit tests of the NaCl SDK tooling",
		HideVersion:    true,
		Writer:         stdout,
		ErrWriter:      stderr,
		Flags:          params.flags(),
		ExitErrHandler: func(*cli.Context, error) {},
		Action: func(c *cli.Context) error {
			if c.NArg() != 0 {
				return fmt.Errorf("unexpected arguments: %v", c.Args().Slice())
			}
			exitCode = runTests(c.Context, params, stdout)
			return nil
		},
	}

	if err := app.Run(args); err != nil {
		fmt.Fprintf(stderr, "Invalid parameters: %s\n", err)
		return 1
	}
	return exitCode
}

func buildConfig(params commandParams) (config.Config, error) {
	cfg, err := config.New(params.sdkSrcDir)
	if err != nil {
		return cfg, err
	}
	if params.configFile != "" {
		if err := cfg.LoadFile(params.configFile); err != nil {
			return cfg, err
		}
	}
	if params.chromeMockPath != "" {
		cfg.ChromeMockPath = params.chromeMockPath
	}
	return cfg, cfg.Validate()
}

func runTests(ctx context.Context, params commandParams, stdout io.Writer) int {
	if err := logging.ApplyLevel(params.debugAll); err != nil {
		logging.S().Errorw("invalid log level", "err", err)
		return 1
	}

	cfg, err := buildConfig(params)
	if err != nil {
		logging.S().Errorw("invalid configuration", "err", err)
		return 1
	}

	runID := xid.New().String()
	logging.S().Debugw("starting test run",
		"run_id", runID,
		"sdk_src_dir", cfg.SDKSrcDir,
		"chrome_mock", cfg.ChromeMockPath,
	)

	framework.PrintFilterDescription(stdout, params.filters)

	debugLogger := logging.DebugPrinter()
	runner := sdktests.Runner{
		Extractor: toolchain.NewExtractor(cfg.Toolchain, logging.NewPrinter(logging.S().Named("toolchain"))),
		Registry:  sdktests.DefaultRegistry(),
		Modules:   sdktests.TestModules,
		Config:    cfg,
		Filter:    params.filters.AsFilter,
		TestLogger: &ConsoleTestLogger{
			Out:                  stdout,
			Verbose:              params.verbose,
			DebugOutputOnFailure: params.debug || params.debugAll,
			DebugOutputOnSuccess: params.debugAll,
		},
		DebugLogger: debugLogger,
		Out:         stdout,
	}

	start := time.Now()
	results, err := runner.RunAll(ctx)
	elapsed := time.Since(start)
	if err != nil {
		logging.S().Errorw("test run aborted", "run_id", runID, "err", err)
		return sdktests.ExitCode(results, err)
	}

	fmt.Fprintln(stdout)
	framework.PrintResults(stdout, results, elapsed)

	if err := writeReports(params, runID, results, elapsed); err != nil {
		logging.S().Errorw("failed to write reports", "run_id", runID, "err", err)
		return 1
	}
	return sdktests.ExitCode(results, nil)
}

func writeReports(params commandParams, runID string, results framework.Results, elapsed time.Duration) error {
	var merr *multierror.Error
	if params.junitFile != "" {
		if err := framework.WriteJUnitReport(params.junitFile, runID, results); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	if params.jsonSummary != "" {
		if err := framework.WriteSummaryJSON(params.jsonSummary, runID, results, elapsed); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	return merr.ErrorOrNil()
}
