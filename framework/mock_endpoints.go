package framework

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const maxQueuedRequests = 100

// MockEndpoint represents an endpoint that can receive requests.
type MockEndpoint struct {
	owner       *TestHarness
	id          string
	description string
	basePath    string
	handler     http.Handler
	newConns    chan IncomingRequestInfo
	count       int
	closed      bool
	cancels     map[int]context.CancelFunc
	lastCancel  int
	logger      Logger
	lock        sync.Mutex
	closing     sync.Once
}

// IncomingRequestInfo contains information about an HTTP request received by a mock endpoint.
type IncomingRequestInfo struct {
	Headers http.Header
	Method  string
	Path    string
	Body    []byte
	Context context.Context
}

// NewMockEndpoint adds a new endpoint that can receive requests.
//
// The specified handler will be called for all incoming requests to the endpoint's
// base URL or any subpath of it. For instance, if the generated base URL (as reported
// by MockEndpoint.BaseURL()) is http://localhost:8111/endpoints/3, then it can also
// receive requests to http://localhost:8111/endpoints/3/some/subpath.
//
// When the handler is called, the test harness rewrites the request URL first so that
// the handler sees only the subpath. It also attaches a Context to the request whose
// Done channel will be closed if Close is called on the endpoint.
func (h *TestHarness) NewMockEndpoint(
	handler http.Handler,
	description string,
	logger Logger,
) *MockEndpoint {
	if logger == nil {
		logger = h.logger
	}
	if handler == nil {
		handler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	}
	e := &MockEndpoint{
		owner:       h,
		description: description,
		handler:     handler,
		newConns:    make(chan IncomingRequestInfo, maxQueuedRequests),
		cancels:     make(map[int]context.CancelFunc),
		logger:      logger,
	}
	h.lock.Lock()
	h.lastEndpointID++
	e.id = strconv.Itoa(h.lastEndpointID)
	e.basePath = endpointPathPrefix + e.id
	h.endpoints[e.id] = e
	h.lock.Unlock()

	if e.description == "" {
		e.description = "endpoint " + e.id
	}
	return e
}

// BaseURL returns the full URL of the mock endpoint.
func (e *MockEndpoint) BaseURL() string {
	return e.owner.externalBaseURL + e.basePath
}

// RequestCount returns the number of requests the endpoint has received so far.
func (e *MockEndpoint) RequestCount() int {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.count
}

// AwaitConnection waits for an incoming request to the endpoint.
func (e *MockEndpoint) AwaitConnection(timeout time.Duration) (IncomingRequestInfo, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	select {
	case cxn, ok := <-e.newConns:
		if !ok {
			return IncomingRequestInfo{}, fmt.Errorf("%s was closed while waiting for a request", e.description)
		}
		return cxn, nil
	case <-deadline.C:
		return IncomingRequestInfo{}, fmt.Errorf("timed out waiting for an incoming request to %s", e.description)
	}
}

// RequireNoMoreConnections returns an error if a request arrives within the given time.
func (e *MockEndpoint) RequireNoMoreConnections(timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	select {
	case cxn, ok := <-e.newConns:
		if !ok {
			return nil
		}
		return fmt.Errorf("%s received an unexpected %s request", e.description, cxn.Method)
	case <-deadline.C:
		return nil
	}
}

func (e *MockEndpoint) trackRequest(parent context.Context) (context.Context, context.CancelFunc) {
	e.lock.Lock()
	defer e.lock.Unlock()
	if e.closed {
		return nil, nil
	}
	ctx, cancel := context.WithCancel(parent)
	e.lastCancel++
	key := e.lastCancel
	e.cancels[key] = cancel
	return ctx, func() {
		cancel()
		e.lock.Lock()
		delete(e.cancels, key)
		e.lock.Unlock()
	}
}

func (e *MockEndpoint) deliver(info IncomingRequestInfo) {
	e.lock.Lock()
	defer e.lock.Unlock()
	if e.closed {
		return
	}
	e.count++
	select { // non-blocking push
	case e.newConns <- info:
	default:
		e.logger.Printf("Incoming request channel was full for %s", e.description)
	}
}

// Close unregisters the endpoint. Any subsequent requests to it will receive 404 errors.
// It also cancels the Context for every active request to that endpoint.
func (e *MockEndpoint) Close() {
	e.closing.Do(func() {
		e.owner.lock.Lock()
		delete(e.owner.endpoints, e.id)
		e.owner.lock.Unlock()

		e.lock.Lock()
		cancellers := e.cancels
		e.cancels = nil
		e.closed = true
		close(e.newConns)
		e.lock.Unlock()

		for _, cancel := range cancellers {
			cancel()
		}
	})
}
