package main

import (
	"github.com/urfave/cli/v2"

	"github.com/naclsdk/sdk-tests/framework"
)

const defaultSDKSrcDir = "."

type commandParams struct {
	verbose        bool
	filters        framework.RegexFilters
	debug          bool
	debugAll       bool
	sdkSrcDir      string
	configFile     string
	chromeMockPath string
	junitFile      string
	jsonSummary    string
}

func (c *commandParams) flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "verbose",
			Aliases:     []string{"v"},
			Usage:       "print every test as it runs",
			Destination: &c.verbose,
		},
		&cli.GenericFlag{
			Name:  "run",
			Usage: "regex pattern(s) to select tests to run",
			Value: &c.filters.MustMatch,
		},
		&cli.GenericFlag{
			Name:  "skip",
			Usage: "regex pattern(s) to select tests not to run",
			Value: &c.filters.MustNotMatch,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging for failed tests",
			Destination: &c.debug,
		},
		&cli.BoolFlag{
			Name:        "debug-all",
			Usage:       "enable debug logging for all tests and for the runner itself",
			Destination: &c.debugAll,
		},
		&cli.StringFlag{
			Name:        "sdk-src",
			Usage:       "native_client_sdk/src directory of the checkout",
			EnvVars:     []string{"SDK_SRC_DIR"},
			Value:       defaultSDKSrcDir,
			Destination: &c.sdkSrcDir,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "TOML file overriding the default paths and settings",
			Destination: &c.configFile,
		},
		&cli.StringFlag{
			Name:        "chrome-mock",
			Usage:       "path of the chrome_mock binary",
			Destination: &c.chromeMockPath,
		},
		&cli.StringFlag{
			Name:        "junit",
			Usage:       "write a JUnit XML report to this file",
			Destination: &c.junitFile,
		},
		&cli.StringFlag{
			Name:        "json-summary",
			Usage:       "write a JSON summary of the run to this file",
			Destination: &c.jsonSummary,
		},
	}
}
