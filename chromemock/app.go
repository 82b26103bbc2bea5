package chromemock

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/naclsdk/sdk-tests/servicedef"
)

const argsUsage = "<URL to load>"

// Longer sleeps do not fit in a time.Duration.
const maxSleepSeconds = float64(math.MaxInt64 / int64(time.Second))

// NewApp returns the command line application. progName is what the starting marker reports,
// normally os.Args[0]. Usage problems are written to stderr and returned as a cli.ExitCoder
// with servicedef.UsageExitCode; the app never exits the process itself.
func NewApp(progName string, client *Client, stderr io.Writer) *cli.App {
	app := &cli.App{
		Name:        filepath.Base(progName),
		Usage:       "load a URL, then sleep until killed",
		ArgsUsage:   argsUsage,
		HideVersion: true,
		Writer:      client.Out,
		ErrWriter:   stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  servicedef.FlagPost,
				Usage: "POST to URL.",
			},
			&cli.BoolFlag{
				Name:  servicedef.FlagGet,
				Usage: "GET to URL.",
			},
			&cli.Float64Flag{
				Name:  servicedef.FlagSleep,
				Usage: "Number of seconds to sleep after reading URL",
				Value: 0,
			},
			&cli.BoolFlag{
				Name:  servicedef.FlagExpectToBeKilled,
				Usage: "If set, the script will warn if it isn't killed before it finishes sleeping.",
			},
		},
		ExitErrHandler: func(*cli.Context, error) {},
	}
	app.OnUsageError = func(c *cli.Context, err error, _ bool) error {
		return usageError(c, err.Error())
	}
	app.Action = func(c *cli.Context) error {
		params, err := paramsFromContext(c)
		if err != nil {
			return usageError(c, err.Error())
		}
		return client.Run(progName, params)
	}
	return app
}

func paramsFromContext(c *cli.Context) (servicedef.ChromeMockParams, error) {
	if c.NArg() != 1 {
		return servicedef.ChromeMockParams{}, errors.New(servicedef.UsageErrorMessage)
	}
	seconds := c.Float64(servicedef.FlagSleep)
	if math.IsNaN(seconds) || seconds < 0 || seconds > maxSleepSeconds {
		return servicedef.ChromeMockParams{}, fmt.Errorf("--%s must be between 0 and %.0f seconds", servicedef.FlagSleep, maxSleepSeconds)
	}
	return servicedef.ChromeMockParams{
		Post:             c.Bool(servicedef.FlagPost),
		Get:              c.Bool(servicedef.FlagGet),
		Sleep:            time.Duration(seconds * float64(time.Second)),
		ExpectToBeKilled: c.Bool(servicedef.FlagExpectToBeKilled),
		URL:              c.Args().First(),
	}, nil
}

func usageError(c *cli.Context, message string) error {
	fmt.Fprintf(c.App.ErrWriter, "Usage: %s [options] %s\n\n", c.App.Name, argsUsage)
	return cli.Exit(message, servicedef.UsageExitCode)
}

// ReorderArgs moves flags that follow the URL in front of it, so that "chrome_mock URL --get"
// parses the same as "chrome_mock --get URL". args[0] is the program name. Everything after a
// "--" argument is left as positional.
func ReorderArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	var flags, positional []string
	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		a := rest[i]
		switch {
		case a == "--":
			positional = append(positional, rest[i+1:]...)
			i = len(rest)
		case strings.HasPrefix(a, "-") && a != "-":
			flags = append(flags, a)
			if flagTakesValue(a) && i+1 < len(rest) {
				i++
				flags = append(flags, rest[i])
			}
		default:
			positional = append(positional, a)
		}
	}
	ret := append([]string{args[0]}, flags...)
	if len(positional) != 0 {
		ret = append(ret, "--")
		ret = append(ret, positional...)
	}
	return ret
}

func flagTakesValue(arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}
	return strings.TrimLeft(arg, "-") == servicedef.FlagSleep
}
