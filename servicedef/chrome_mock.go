// Package servicedef holds the command line contract of the chrome_mock endpoint client. Both
// the client and the tests that drive it refer to these definitions, so the flag names and the
// marker lines cannot drift apart.
package servicedef

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	FlagPost             = "post"
	FlagGet              = "get"
	FlagSleep            = "sleep"
	FlagExpectToBeKilled = "expect-to-be-killed"
)

// DoneSleepingMarker is printed when the client finishes sleeping with --expect-to-be-killed
// set. Harnesses treat its presence as proof that the client was not killed in time.
const DoneSleepingMarker = "Done sleeping. Expected to be killed."

// UsageErrorMessage is reported when the client is not given exactly one URL.
const UsageErrorMessage = "Expected URL to load."

// UsageExitCode is the exit status for command line errors.
const UsageExitCode = 2

// StartingMarker is the first line the client prints, before doing anything else.
func StartingMarker(progName string) string {
	return fmt.Sprintf("Starting %s.", progName)
}

// ChromeMockParams describes one invocation of the client.
type ChromeMockParams struct {
	Post             bool
	Get              bool
	Sleep            time.Duration
	ExpectToBeKilled bool
	URL              string
}

// Method returns the HTTP method the client will use, or "" if it will not make a request.
// POST takes priority when both Post and Get are set.
func (p ChromeMockParams) Method() string {
	switch {
	case p.Post:
		return http.MethodPost
	case p.Get:
		return http.MethodGet
	default:
		return ""
	}
}

// Args returns the command line arguments, not including the program name. Flags always come
// before the URL.
func (p ChromeMockParams) Args() []string {
	var args []string
	if p.Post {
		args = append(args, "--"+FlagPost)
	}
	if p.Get {
		args = append(args, "--"+FlagGet)
	}
	if p.Sleep != 0 {
		args = append(args, "--"+FlagSleep, strconv.FormatFloat(p.Sleep.Seconds(), 'f', -1, 64))
	}
	if p.ExpectToBeKilled {
		args = append(args, "--"+FlagExpectToBeKilled)
	}
	if p.URL != "" {
		args = append(args, p.URL)
	}
	return args
}
