// Package adapters provides in-memory relay transports that dispatch
// requests straight into Echo, Gin, Fiber or any http.Handler.
package adapters

import (
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/toyz/relay/pkg/relay"
)

// HandlerTransport serves requests with an http.Handler on a goroutine and
// returns the response as soon as its headers are written. The body is a
// pipe, so streaming handlers are read incrementally.
type HandlerTransport struct {
	handler http.Handler
}

var _ relay.Transport = (*HandlerTransport)(nil)

// NewHandlerTransport creates a transport over h
func NewHandlerTransport(h http.Handler) *HandlerTransport {
	return &HandlerTransport{handler: h}
}

// Do serves the request and waits for the response headers
func (t *HandlerTransport) Do(req *http.Request) (*http.Response, error) {
	pr, pw := io.Pipe()
	w := &pipeWriter{header: make(http.Header), pipe: pw, ready: make(chan struct{})}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				w.writeHeader(http.StatusInternalServerError)
				pw.CloseWithError(io.ErrUnexpectedEOF)
				return
			}
			w.writeHeader(http.StatusOK)
			pw.Close()
		}()
		t.handler.ServeHTTP(w, req)
	}()

	select {
	case <-w.ready:
	case <-req.Context().Done():
		pr.CloseWithError(req.Context().Err())
		return nil, req.Context().Err()
	}

	body := &pipeBody{PipeReader: pr, closed: make(chan struct{})}
	go func() {
		select {
		case <-req.Context().Done():
			pr.CloseWithError(req.Context().Err())
		case <-body.closed:
		}
	}()

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", w.status, http.StatusText(w.status)),
		StatusCode:    w.status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        w.snapshot,
		Body:          body,
		ContentLength: -1,
		Request:       req,
	}, nil
}

// DoAsync serves the request on a new goroutine
func (t *HandlerTransport) DoAsync(req *http.Request, callback func(*http.Response, error)) {
	go func() {
		callback(t.Do(req))
	}()
}

// pipeBody stops the cancellation watcher when the consumer closes the body
type pipeBody struct {
	*io.PipeReader
	once   sync.Once
	closed chan struct{}
}

func (b *pipeBody) Close() error {
	b.once.Do(func() { close(b.closed) })
	return b.PipeReader.Close()
}

// pipeWriter is an http.ResponseWriter writing the body into a pipe
type pipeWriter struct {
	header   http.Header
	snapshot http.Header
	pipe     *io.PipeWriter
	status   int
	once     sync.Once
	ready    chan struct{}
}

func (w *pipeWriter) Header() http.Header {
	return w.header
}

func (w *pipeWriter) WriteHeader(status int) {
	w.writeHeader(status)
}

func (w *pipeWriter) Write(p []byte) (int, error) {
	w.writeHeader(http.StatusOK)
	return w.pipe.Write(p)
}

// Flush commits the headers; written data is already visible to the reader
func (w *pipeWriter) Flush() {
	w.writeHeader(http.StatusOK)
}

func (w *pipeWriter) writeHeader(status int) {
	w.once.Do(func() {
		w.status = status
		w.snapshot = w.header.Clone()
		close(w.ready)
	})
}
