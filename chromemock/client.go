// Package chromemock implements a stand-in for a browser process. It makes at most one HTTP
// request, sleeps, and reports on stdout whether it lived long enough to finish sleeping.
// Tests of process lifecycle handling start it, point it at a mock endpoint, and kill it.
package chromemock

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/naclsdk/sdk-tests/servicedef"
)

type flusher interface {
	Flush() error
}

// Client performs one scripted run.
type Client struct {
	// HTTPClient is used for the request. It has no timeout: the only way to interrupt the
	// client is to kill the process.
	HTTPClient *http.Client

	// Out receives the marker lines. If it has a Flush method, it is flushed after every line.
	Out io.Writer

	// Sleep is called with the configured sleep duration.
	Sleep func(time.Duration)
}

// NewClient returns a Client that writes to out and really sleeps.
func NewClient(out io.Writer) *Client {
	return &Client{
		HTTPClient: &http.Client{},
		Out:        out,
		Sleep:      time.Sleep,
	}
}

// Run prints the starting marker, makes the request selected by params, sleeps, and prints
// the done marker if params asks for it. A failed request is returned as an error and nothing
// after it happens.
func (c *Client) Run(progName string, params servicedef.ChromeMockParams) error {
	if err := c.println(servicedef.StartingMarker(progName)); err != nil {
		return err
	}

	if method := params.Method(); method != "" {
		if err := c.load(method, params.URL); err != nil {
			return err
		}
	}

	c.Sleep(params.Sleep)

	if params.ExpectToBeKilled {
		return c.println(servicedef.DoneSleepingMarker)
	}
	return nil
}

func (c *Client) load(method, url string) error {
	var body io.Reader
	if method == http.MethodPost {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if _, err := io.Copy(ioutil.Discard, resp.Body); err != nil {
		return fmt.Errorf("error reading response from %s: %w", url, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s returned HTTP %d", method, url, resp.StatusCode)
	}
	return nil
}

func (c *Client) println(line string) error {
	if _, err := fmt.Fprintln(c.Out, line); err != nil {
		return err
	}
	if f, ok := c.Out.(flusher); ok {
		return f.Flush()
	}
	return nil
}
