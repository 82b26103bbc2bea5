package framework

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withHarness(t *testing.T, action func(*TestHarness)) {
	h, err := NewTestHarness("localhost", 0, nil)
	require.NoError(t, err)
	defer h.Close()
	action(h)
}

func TestEndpointReceivesRequestsOnSubpaths(t *testing.T) {
	withHarness(t, func(h *TestHarness) {
		e := h.NewMockEndpoint(httphelpers.HandlerWithStatus(http.StatusAccepted), "", nil)

		resp, err := http.Post(e.BaseURL()+"/some/path", "text/plain", bytes.NewBufferString("hello"))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)

		info, err := e.AwaitConnection(time.Second)
		require.NoError(t, err)
		assert.Equal(t, http.MethodPost, info.Method)
		assert.Equal(t, "/some/path", info.Path)
		assert.Equal(t, "hello", string(info.Body))
		assert.Equal(t, 1, e.RequestCount())
	})
}

func TestHandlerSeesRewrittenPathAndBody(t *testing.T) {
	withHarness(t, func(h *TestHarness) {
		handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(http.StatusOK))
		e := h.NewMockEndpoint(handler, "", nil)

		resp, err := http.Post(e.BaseURL()+"/x", "text/plain", bytes.NewBufferString("body"))
		require.NoError(t, err)
		resp.Body.Close()

		r := <-requestsCh
		assert.Equal(t, "/x", r.Request.URL.Path)
		assert.Equal(t, "body", string(r.Body))
	})
}

func TestDefaultHandlerReturnsOK(t *testing.T) {
	withHarness(t, func(h *TestHarness) {
		e := h.NewMockEndpoint(nil, "", nil)
		resp, err := http.Get(e.BaseURL())
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestUnknownPathsReturnNotFound(t *testing.T) {
	withHarness(t, func(h *TestHarness) {
		for _, path := range []string{"/", "/other", "/endpoints/999"} {
			resp, err := http.Get(h.BaseURL() + path)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		}
	})
}

func TestClosedEndpointReturnsNotFound(t *testing.T) {
	withHarness(t, func(h *TestHarness) {
		e := h.NewMockEndpoint(nil, "", nil)
		e.Close()

		resp, err := http.Get(e.BaseURL())
		require.NoError(t, err)
		body, _ := ioutil.ReadAll(resp.Body)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, string(body))

		_, err = e.AwaitConnection(time.Second)
		assert.Error(t, err)
		assert.Equal(t, 0, e.RequestCount())
	})
}

func TestAwaitConnectionTimesOut(t *testing.T) {
	withHarness(t, func(h *TestHarness) {
		e := h.NewMockEndpoint(nil, "quiet endpoint", nil)
		start := time.Now()
		_, err := e.AwaitConnection(50 * time.Millisecond)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quiet endpoint")
		assert.Less(t, int64(time.Since(start)), int64(time.Second))
	})
}

func TestRequireNoMoreConnections(t *testing.T) {
	withHarness(t, func(h *TestHarness) {
		e := h.NewMockEndpoint(nil, "", nil)
		assert.NoError(t, e.RequireNoMoreConnections(20*time.Millisecond))

		resp, err := http.Get(e.BaseURL())
		require.NoError(t, err)
		resp.Body.Close()
		assert.Error(t, e.RequireNoMoreConnections(time.Second))
	})
}

func TestEndpointsGetDistinctURLs(t *testing.T) {
	withHarness(t, func(h *TestHarness) {
		e1 := h.NewMockEndpoint(nil, "", nil)
		e2 := h.NewMockEndpoint(nil, "", nil)
		assert.NotEqual(t, e1.BaseURL(), e2.BaseURL())
	})
}
