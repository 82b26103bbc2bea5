package framework

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

const endpointPathPrefix = "/endpoints/"
const shutdownTimeout = time.Second * 5

// TestHarness owns a local HTTP listener on which tests can create mock endpoints. Child
// processes under test, such as chrome_mock, are pointed at those endpoints.
type TestHarness struct {
	externalBaseURL string
	server          *http.Server
	listener        net.Listener
	endpoints       map[string]*MockEndpoint
	lastEndpointID  int
	logger          Logger
	lock            sync.Mutex
}

// NewTestHarness starts the HTTP listener. A port of zero picks any free port; the actual
// port is reflected in the base URL of every endpoint.
func NewTestHarness(
	externalHostname string,
	port int,
	debugLogger Logger,
) (*TestHarness, error) {
	if debugLogger == nil {
		debugLogger = NullLogger()
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("could not start mock endpoint listener on port %d: %w", port, err)
	}
	actualPort := listener.Addr().(*net.TCPAddr).Port

	h := &TestHarness{
		externalBaseURL: "http://" + net.JoinHostPort(externalHostname, strconv.Itoa(actualPort)),
		listener:        listener,
		endpoints:       make(map[string]*MockEndpoint),
		logger:          debugLogger,
	}

	router := mux.NewRouter()
	router.PathPrefix(endpointPathPrefix + "{id}").HandlerFunc(h.serveEndpoint)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		h.logger.Printf("Received request for unrecognized URL path %s", req.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	})
	h.server = &http.Server{Handler: router}

	go func() {
		if err := h.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			h.logger.Printf("Mock endpoint listener stopped: %s", err)
		}
	}()
	h.logger.Printf("Mock endpoint listener started at %s", h.externalBaseURL)

	return h, nil
}

// BaseURL returns the externally visible URL of the listener.
func (h *TestHarness) BaseURL() string {
	return h.externalBaseURL
}

// Close stops the listener. Active requests get a short grace period.
func (h *TestHarness) Close() error {
	h.lock.Lock()
	endpoints := make([]*MockEndpoint, 0, len(h.endpoints))
	for _, e := range h.endpoints {
		endpoints = append(endpoints, e)
	}
	h.lock.Unlock()
	for _, e := range endpoints {
		e.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.server.Shutdown(ctx)
}

func (h *TestHarness) serveEndpoint(w http.ResponseWriter, req *http.Request) {
	endpointID := mux.Vars(req)["id"]
	path := strings.TrimPrefix(req.URL.Path, endpointPathPrefix+endpointID)

	h.lock.Lock()
	e := h.endpoints[endpointID]
	h.lock.Unlock()
	if e == nil {
		h.logger.Printf("Received request for unrecognized endpoint %s", req.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var body []byte
	if req.Body != nil {
		data, err := ioutil.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			e.logger.Printf("Unexpected error trying to read request body: %s", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		body = data
	}

	ctx, cancel := e.trackRequest(req.Context())
	if ctx == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	defer cancel()

	e.logger.Printf("Received %s %s", req.Method, req.URL.Path)
	e.deliver(IncomingRequestInfo{
		Headers: req.Header,
		Method:  req.Method,
		Path:    path,
		Body:    body,
		Context: ctx,
	})

	transformedReq := req.WithContext(ctx)
	url := *req.URL
	url.Path = path
	transformedReq.URL = &url
	transformedReq.Body = ioutil.NopCloser(bytes.NewBuffer(body))

	e.handler.ServeHTTP(w, transformedReq)
}
