package relay

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"reflect"

	"go.uber.org/zap"

	"github.com/toyz/relay/pkg/relay/sse"
)

// call is one dispatched method invocation
type call struct {
	client *Client
	method *MethodMetadata
	req    *http.Request
}

// strategy turns the response of a call into the declared result
type strategy interface {
	execute(c *call) (any, error)
}

// strategyFor selects the strategy for a return shape
func strategyFor(shape ReturnShape) strategy {
	switch shape.Kind {
	case StreamShape:
		if shape.Async {
			return streamAsync{}
		}
		return streamSync{}
	case BinaryShape:
		if shape.Async {
			return binaryAsync{}
		}
		return binarySync{}
	}
	if shape.Async {
		return bufferedAsync{}
	}
	return bufferedSync{}
}

type bufferedSync struct{}

func (bufferedSync) execute(c *call) (any, error) {
	resp, err := c.send()
	if err != nil {
		return nil, err
	}
	return c.decodeBuffered(resp)
}

type bufferedAsync struct{}

func (bufferedAsync) execute(c *call) (any, error) {
	return c.sendAsync(false, func(resp *http.Response, _ context.CancelFunc) (any, error) {
		return c.decodeBuffered(resp)
	})
}

type binarySync struct{}

func (binarySync) execute(c *call) (any, error) {
	resp, err := c.send()
	if err != nil {
		return nil, err
	}
	return c.binaryBody(resp, nil)
}

type binaryAsync struct{}

func (binaryAsync) execute(c *call) (any, error) {
	return c.sendAsync(true, c.binaryBody)
}

type streamSync struct{}

func (streamSync) execute(c *call) (any, error) {
	resp, err := c.send()
	if err != nil {
		return nil, err
	}
	return c.eventStream(resp, nil)
}

type streamAsync struct{}

func (streamAsync) execute(c *call) (any, error) {
	return c.sendAsync(true, c.eventStream)
}

func (c *call) logger() *zap.Logger {
	return c.client.logger.With(
		zap.String("method", c.method.Name),
		zap.String("http_method", c.req.Method),
		zap.String("url", c.req.URL.String()),
	)
}

// send runs the request on the calling goroutine
func (c *call) send() (*http.Response, error) {
	log := c.logger()
	log.Debug("sending request")

	resp, err := c.client.transport.Do(c.req)
	if err != nil {
		return nil, transportError("sending request", err)
	}
	log.Debug("received response", zap.Int("status", resp.StatusCode))
	return resp, nil
}

// sendAsync hands the request to the transport and returns the declared
// *Future[T]. produce runs on the transport's goroutine. With keepAlive the
// request context outlives completion and is released by produce's result.
func (c *call) sendAsync(keepAlive bool, produce func(*http.Response, context.CancelFunc) (any, error)) (any, error) {
	ctx, cancel := context.WithCancel(c.req.Context())
	c.req = c.req.WithContext(ctx)
	p := newPending(cancel)
	log := c.logger()

	log.Debug("sending request asynchronously")
	c.client.transport.DoAsync(c.req, func(resp *http.Response, err error) {
		if err != nil {
			p.complete(nil, transportError("sending request", err))
			cancel()
			return
		}
		log.Debug("received response", zap.Int("status", resp.StatusCode))

		value, err := produce(resp, cancel)
		if !p.complete(value, err) {
			release(value)
			resp.Body.Close()
		}
		if !keepAlive || err != nil {
			cancel()
		}
	})

	wrapper := c.method.ReturnShape.Wrapper
	return reflect.Zero(wrapper).Interface().(asyncValue).fromPending(p), nil
}

// decodeBuffered reads the whole body and decodes it into the declared type
func (c *call) decodeBuffered(resp *http.Response) (any, error) {
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError("reading response", err)
	}

	shape := c.method.ReturnShape
	switch shape.Kind {
	case NoneShape:
		return nil, nil
	case PlainShape:
		return plainValue(shape.Type, data), nil
	}

	target := reflect.New(shape.Type)
	if len(bytes.TrimSpace(data)) == 0 {
		return target.Elem().Interface(), nil
	}
	if err := c.client.codec.Unmarshal(data, target.Interface()); err != nil {
		return nil, decodeError(shape.Type.String(), err)
	}
	return target.Elem().Interface(), nil
}

// binaryBody returns the body unread for successful responses
func (c *call) binaryBody(resp *http.Response, cancel context.CancelFunc) (any, error) {
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	if cancel == nil {
		return resp.Body, nil
	}
	return &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, nil
}

// eventStream wraps a successful response in the declared *Stream[T]
func (c *call) eventStream(resp *http.Response, cancel context.CancelFunc) (any, error) {
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	shape := c.method.ReturnShape
	log := c.logger()
	reader := sse.NewReader(resp.Body,
		sse.WithMaxLineSize(c.client.maxLineSize),
		sse.WithLineHook(func(line string) {
			log.Debug("response line", zap.String("line", line))
		}),
	)
	es := &eventStream{
		reader: reader,
		body:   resp.Body,
		cancel: cancel,
		decode: func(data string) (any, error) {
			if shape.Elem.Kind() == reflect.String {
				return reflect.ValueOf(data).Convert(shape.Elem).Interface(), nil
			}
			target := reflect.New(shape.Elem)
			if err := c.client.codec.Unmarshal([]byte(data), target.Interface()); err != nil {
				return nil, decodeError(shape.Elem.String(), err)
			}
			return target.Elem().Interface(), nil
		},
	}
	return reflect.Zero(shape.Type).Interface().(streamValue).fromEvents(es), nil
}

func plainValue(t reflect.Type, data []byte) any {
	v := reflect.New(t).Elem()
	if t.Kind() == reflect.String {
		v.SetString(string(data))
	} else {
		v.SetBytes(data)
	}
	return v.Interface()
}

// release closes a produced value that nobody will receive
func release(value any) {
	if closer, ok := value.(io.Closer); ok {
		closer.Close()
	}
}

// cancelOnClose releases the request context of an async binary body when
// the consumer closes it
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
