// Command chrome_mock loads a URL and then sleeps, so that tests can check that whoever started
// it also kills it.
//
//	chrome_mock [--post] [--get] [--sleep SECONDS] [--expect-to-be-killed] <URL to load>
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/naclsdk/sdk-tests/chromemock"
)

func main() {
	app := chromemock.NewApp(os.Args[0], chromemock.NewClient(os.Stdout), os.Stderr)
	if err := app.Run(chromemock.ReorderArgs(os.Args)); err != nil {
		fmt.Fprintf(os.Stderr, "%s: error: %s\n", app.Name, err)
		if exitErr, ok := err.(cli.ExitCoder); ok {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}
