package relay

import (
	"net/http"
)

// Transport sends requests built by the dispatch stub. Do blocks until the
// response headers arrive. DoAsync must return immediately and invoke
// callback exactly once, on a goroutine owned by the transport.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
	DoAsync(req *http.Request, callback func(*http.Response, error))
}

// HTTPTransport is the default Transport over net/http
type HTTPTransport struct {
	Client *http.Client
}

// NewHTTPTransport creates a Transport over client, or over
// http.DefaultClient when client is nil
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{Client: client}
}

// Do sends the request
func (t *HTTPTransport) Do(req *http.Request) (*http.Response, error) {
	return t.Client.Do(req)
}

// DoAsync sends the request on a new goroutine
func (t *HTTPTransport) DoAsync(req *http.Request, callback func(*http.Response, error)) {
	go func() {
		callback(t.Do(req))
	}()
}

// TransportFunc adapts a function to the Transport interface
type TransportFunc func(req *http.Request) (*http.Response, error)

// Do calls f
func (f TransportFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// DoAsync calls f on a new goroutine
func (f TransportFunc) DoAsync(req *http.Request, callback func(*http.Response, error)) {
	go func() {
		callback(f(req))
	}()
}
