package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/naclsdk/sdk-tests/framework"
)

// ConsoleTestLogger prints test progress. In terse mode only problems are printed; in verbose
// mode every test is announced when it starts.
type ConsoleTestLogger struct {
	Out                  io.Writer
	Verbose              bool
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool

	lastHeader string
}

func (c *ConsoleTestLogger) header(id framework.TestID) {
	if s := id.String(); s != c.lastHeader {
		fmt.Fprintf(c.Out, "[%s]\n", s)
		c.lastHeader = s
	}
}

func (c *ConsoleTestLogger) TestStarted(id framework.TestID) {
	if c.Verbose {
		c.header(id)
	}
}

func (c *ConsoleTestLogger) TestError(id framework.TestID, err error) {
	c.header(id)
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(c.Out, "  %s\n", line)
	}
}

func (c *ConsoleTestLogger) TestFinished(id framework.TestID, failed bool, debugOutput framework.CapturedOutput) {
	if failed {
		c.header(id)
		fmt.Fprintf(c.Out, "  %s: %s\n", color.RedString("FAILED"), id)
	} else if c.Verbose {
		fmt.Fprintf(c.Out, "  %s: %s\n", color.GreenString("ok"), id)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.Out, "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id framework.TestID, reason string) {
	if reason == framework.ExcludedByFilterReason && !c.Verbose {
		return
	}
	c.header(id)
	if reason == "" {
		fmt.Fprintf(c.Out, "  %s: %s\n", color.YellowString("SKIPPED"), id)
	} else {
		fmt.Fprintf(c.Out, "  %s: %s (%s)\n", color.YellowString("SKIPPED"), id, reason)
	}
}
