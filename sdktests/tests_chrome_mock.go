package sdktests

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naclsdk/sdk-tests/servicedef"
)

const (
	chromeMockSleep   = time.Second
	killDuringSleep   = 5 * time.Second
	killAfter         = time.Second
	quietPeriodAtExit = 200 * time.Millisecond
)

// DoChromeMockTests exercises the chrome_mock process the way a browser test harness uses it:
// start it against a mock endpoint, watch its output, and kill it.
func DoChromeMockTests(t *T) {
	t.RequireChromeMock()

	t.Run("requests", doChromeMockRequestTests)
	t.Run("done marker", doChromeMockMarkerTests)
	t.Run("usage", doChromeMockUsageTests)
}

func doChromeMockRequestTests(t *T) {
	t.Run("GET loads the URL once and then sleeps", func(t *T) {
		endpoint := t.NewMockEndpoint(nil, "page")
		p := t.StartChromeMock(servicedef.ChromeMockParams{Get: true, Sleep: chromeMockSleep, URL: endpoint.BaseURL()})

		request := t.RequireRequest(endpoint)
		assert.Equal(t, http.MethodGet, request.Method)

		assert.Equal(t, 0, t.RequireExit(p))
		assert.GreaterOrEqual(t, int64(p.Runtime()), int64(chromeMockSleep), "exited before the sleep elapsed")
		assert.Equal(t, 1, endpoint.RequestCount())
	})

	t.Run("POST sends an empty body", func(t *T) {
		endpoint := t.NewMockEndpoint(nil, "page")
		p := t.StartChromeMock(servicedef.ChromeMockParams{Post: true, URL: endpoint.BaseURL()})

		request := t.RequireRequest(endpoint)
		assert.Equal(t, http.MethodPost, request.Method)
		assert.Len(t, request.Body, 0)

		assert.Equal(t, 0, t.RequireExit(p))
		assert.Equal(t, 1, endpoint.RequestCount())
	})

	t.Run("idle mode makes no request", func(t *T) {
		endpoint := t.NewMockEndpoint(nil, "page")
		p := t.StartChromeMock(servicedef.ChromeMockParams{URL: endpoint.BaseURL()})

		assert.Equal(t, 0, t.RequireExit(p))
		require.NoError(t, endpoint.RequireNoMoreConnections(quietPeriodAtExit))
		assert.Equal(t, 0, endpoint.RequestCount())
	})

	t.Run("error status exits non-zero", func(t *T) {
		endpoint := t.NewMockEndpoint(httphelpers.HandlerWithStatus(http.StatusInternalServerError), "failing page")
		p := t.StartChromeMock(servicedef.ChromeMockParams{Get: true, ExpectToBeKilled: true, URL: endpoint.BaseURL()})

		assert.NotEqual(t, 0, t.RequireExit(p))
		assert.Equal(t, 0, p.CountLines(servicedef.DoneSleepingMarker))
	})

	t.Run("unreachable server exits non-zero", func(t *T) {
		server := httptest.NewServer(httphelpers.HandlerWithStatus(http.StatusOK))
		url := server.URL
		server.Close()
		p := t.StartChromeMock(servicedef.ChromeMockParams{Get: true, ExpectToBeKilled: true, URL: url})

		assert.NotEqual(t, 0, t.RequireExit(p))
		assert.Equal(t, 0, p.CountLines(servicedef.DoneSleepingMarker))
		assert.Contains(t, p.Stderr(), "connection refused")
	})
}

func doChromeMockMarkerTests(t *T) {
	t.Run("printed once when not killed", func(t *T) {
		p := t.StartChromeMock(servicedef.ChromeMockParams{ExpectToBeKilled: true, URL: "http://unused"})

		assert.Equal(t, 0, t.RequireExit(p))
		output := p.Output()
		require.NotEmpty(t, output)
		assert.Equal(t, servicedef.StartingMarker(t.Config().ChromeMockPath), output[0])
		assert.Equal(t, 1, p.CountLines(servicedef.DoneSleepingMarker))
	})

	t.Run("not printed without the flag", func(t *T) {
		p := t.StartChromeMock(servicedef.ChromeMockParams{URL: "http://unused"})

		assert.Equal(t, 0, t.RequireExit(p))
		assert.Equal(t, 0, p.CountLines(servicedef.DoneSleepingMarker))
	})

	t.Run("not printed when killed during sleep", func(t *T) {
		p := t.StartChromeMock(servicedef.ChromeMockParams{
			Sleep:            killDuringSleep,
			ExpectToBeKilled: true,
			URL:              "http://unused",
		})
		t.RequireLine(p, servicedef.StartingMarker(t.Config().ChromeMockPath))

		time.Sleep(killAfter)
		require.False(t, p.Exited(), "chrome_mock exited before it was killed")
		require.NoError(t, p.Kill())

		t.RequireExit(p)
		assert.Less(t, int64(p.Runtime()), int64(killDuringSleep))
		assert.Equal(t, 0, p.CountLines(servicedef.DoneSleepingMarker))
	})
}

func doChromeMockUsageTests(t *T) {
	t.Run("flags after the URL", func(t *T) {
		endpoint := t.NewMockEndpoint(nil, "page")
		p := t.StartChromeMockArgs(endpoint.BaseURL(), "--get", "--expect-to-be-killed")

		request := t.RequireRequest(endpoint)
		assert.Equal(t, http.MethodGet, request.Method)
		assert.Equal(t, 0, t.RequireExit(p))
		assert.Equal(t, 1, p.CountLines(servicedef.DoneSleepingMarker))
	})

	t.Run("no URL", func(t *T) {
		p := t.StartChromeMockArgs("--get")

		assert.Equal(t, servicedef.UsageExitCode, t.RequireExit(p))
		assert.Contains(t, p.Stderr(), servicedef.UsageErrorMessage)
		assert.Contains(t, p.Stderr(), "<URL to load>")
	})

	t.Run("two URLs", func(t *T) {
		p := t.StartChromeMockArgs("http://a", "http://b")

		assert.Equal(t, servicedef.UsageExitCode, t.RequireExit(p))
		assert.Contains(t, p.Stderr(), servicedef.UsageErrorMessage)
	})
}
