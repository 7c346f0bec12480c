package adapters

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/toyz/relay/pkg/relay"
)

// FiberTransport dispatches requests into a Fiber app without a listener.
// Fiber buffers the whole response before it is returned.
type FiberTransport struct {
	app *fiber.App
}

var _ relay.Transport = (*FiberTransport)(nil)

// NewFiberTransport creates a transport over app
func NewFiberTransport(app *fiber.App) *FiberTransport {
	return &FiberTransport{app: app}
}

// App returns the underlying Fiber app
func (t *FiberTransport) App() *fiber.App {
	return t.app
}

// Do serves the request, giving up when its context is done
func (t *FiberTransport) Do(req *http.Request) (*http.Response, error) {
	type result struct {
		resp *http.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := t.app.Test(req, -1)
		done <- result{resp, err}
	}()

	select {
	case r := <-done:
		return r.resp, r.err
	case <-req.Context().Done():
		return nil, req.Context().Err()
	}
}

// DoAsync serves the request on a new goroutine
func (t *FiberTransport) DoAsync(req *http.Request, callback func(*http.Response, error)) {
	go func() {
		callback(t.Do(req))
	}()
}
