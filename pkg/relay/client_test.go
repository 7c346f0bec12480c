package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type demoServer struct {
	*httptest.Server
	cancelled chan struct{}
}

func newDemoServer(t *testing.T) *demoServer {
	t.Helper()
	s := &demoServer{cancelled: make(chan struct{}, 1)}

	e := echo.New()
	e.HideBanner = true

	e.GET("/api/demos/:id/plain", func(c echo.Context) error {
		return c.String(http.StatusOK, "demo "+c.Param("id"))
	})
	e.GET("/api/demos/:id", func(c echo.Context) error {
		id, _ := strconv.Atoi(c.Param("id"))
		if id == 404 {
			return c.JSON(http.StatusNotFound, map[string]any{
				"error": map[string]any{
					"message": "The resource does not exist",
					"type":    "invalid_request_error",
					"param":   nil,
					"code":    404,
				},
			})
		}
		if id == 100 {
			return c.JSONBlob(http.StatusOK, []byte(`{"id":100,"description":"Description","active":true}`))
		}
		return c.JSON(http.StatusOK, Demo{ID: id, Description: "demo"})
	})
	e.GET("/api/generic/:id", func(c echo.Context) error {
		id, _ := strconv.Atoi(c.Param("id"))
		return c.JSON(http.StatusOK, Generic[Demo]{ID: id, Data: Demo{ID: id * 10, Description: "inner"}})
	})
	e.GET("/api/demos", func(c echo.Context) error {
		size, _ := strconv.Atoi(c.QueryParam("size"))
		demos := make([]Demo, 0, size)
		for i := 1; i <= size; i++ {
			demos = append(demos, Demo{ID: i, Description: c.QueryParam("order_by")})
		}
		return c.JSON(http.StatusOK, demos)
	})
	e.POST("/api/demos/stream", func(c echo.Context) error {
		var req StreamRequest
		if err := c.Bind(&req); err != nil {
			return err
		}
		if req.Prompt == "fail" {
			return c.String(http.StatusBadRequest, "stream refused")
		}
		w := c.Response()
		w.Header().Set(echo.HeaderContentType, "text/event-stream")
		w.WriteHeader(http.StatusOK)
		for i := 1; i <= 3; i++ {
			fmt.Fprintf(w, "event: delta\ndata: {\"id\":%d,\"description\":%q}\n\n", i, req.Prompt)
			w.Flush()
		}
		fmt.Fprint(w, ": keep-alive\n\ndata: [DONE]\n\n")
		return nil
	})
	e.GET("/api/files/:name", func(c echo.Context) error {
		if c.Param("name") == "missing" {
			return c.String(http.StatusInternalServerError, "file store unavailable")
		}
		return c.Blob(http.StatusOK, "application/octet-stream", []byte("content of "+c.Param("name")))
	})
	e.DELETE("/api/demos/:id", func(c echo.Context) error {
		if c.Request().Header.Get("Authorization") != "Bearer ok" {
			return c.String(http.StatusUnauthorized, "unauthorized")
		}
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/api/broken", func(c echo.Context) error {
		return c.String(http.StatusBadGateway, "Internal failure")
	})
	e.GET("/api/slow", func(c echo.Context) error {
		<-c.Request().Context().Done()
		select {
		case s.cancelled <- struct{}{}:
		default:
		}
		return nil
	})

	s.Server = httptest.NewServer(e)
	t.Cleanup(s.Close)
	return s
}

func demoStubs(t *testing.T, opts ...Option) (*demoServer, *Stub, *Stub) {
	t.Helper()
	server := newDemoServer(t)
	client := NewClient(server.URL, opts...)

	syncStub, err := client.Bind(syncServiceDecl())
	require.NoError(t, err)
	asyncStub, err := client.Bind(asyncServiceDecl())
	require.NoError(t, err)
	return server, syncStub, asyncStub
}

func TestBufferedSync(t *testing.T) {
	_, stub, _ := demoStubs(t)
	ctx := context.Background()

	plain, err := Call[string](ctx, stub, "GetDemoPlain", 3)
	require.NoError(t, err)
	assert.Equal(t, "demo 3", plain)

	demo, err := Call[Demo](ctx, stub, "GetDemo", 7)
	require.NoError(t, err)
	assert.Equal(t, Demo{ID: 7, Description: "demo"}, demo)

	demo, err = Call[Demo](ctx, stub, "GetDemo", 100)
	require.NoError(t, err)
	assert.Equal(t, 100, demo.ID)
	assert.Equal(t, "Description", demo.Description)
	assert.True(t, demo.Active)

	generic, err := Call[Generic[Demo]](ctx, stub, "GetGenericDemo", 2)
	require.NoError(t, err)
	assert.Equal(t, 20, generic.Data.ID)

	demos, err := Call[[]Demo](ctx, stub, "GetDemos", Page{Size: 3, Order: "asc"})
	require.NoError(t, err)
	require.Len(t, demos, 3)
	assert.Equal(t, "asc", demos[2].Description)

	require.NoError(t, Exec(ctx, stub, "DeleteDemo", 1, "Bearer ok"))
}

func TestBufferedSync_RemoteErrorEnvelope(t *testing.T) {
	_, stub, _ := demoStubs(t)

	_, err := Call[Demo](context.Background(), stub, "GetDemo", 404)
	require.Error(t, err)

	remote, ok := IsRemoteError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, remote.StatusCode)
	assert.Equal(t, "The resource does not exist", remote.Message())
	assert.Equal(t, "invalid_request_error", remote.Detail.Type)
	assert.Equal(t, "404", remote.Detail.Code)
	assert.Contains(t, err.Error(), "The resource does not exist")
}

func TestBufferedSync_RemoteErrorRawBody(t *testing.T) {
	_, stub, _ := demoStubs(t)

	_, err := Call[Demo](context.Background(), stub, "GetBroken")
	remote, ok := IsRemoteError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, remote.StatusCode)
	assert.Nil(t, remote.Detail)
	assert.Equal(t, "Internal failure", remote.Message())

	err = Exec(context.Background(), stub, "DeleteDemo", 1, "Bearer nope")
	remote, ok = IsRemoteError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, remote.StatusCode)
}

func TestBufferedAsync(t *testing.T) {
	_, _, stub := demoStubs(t)
	ctx := context.Background()

	plain, err := Go[string](ctx, stub, "GetDemoPlain", 5).Get()
	require.NoError(t, err)
	assert.Equal(t, "demo 5", plain)

	future := Go[Demo](ctx, stub, "GetDemo", 8)
	select {
	case <-future.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("future did not complete")
	}
	demo, err := future.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, demo.ID)

	demos, err := Go[[]Demo](ctx, stub, "GetDemos", Page{Size: 2}).Get()
	require.NoError(t, err)
	assert.Len(t, demos, 2)

	description, err := Then(Go[Demo](ctx, stub, "GetDemo", 9), func(d Demo) (string, error) {
		return fmt.Sprintf("%d:%s", d.ID, d.Description), nil
	}).Get()
	require.NoError(t, err)
	assert.Equal(t, "9:demo", description)
}

func TestBufferedAsync_RemoteError(t *testing.T) {
	_, _, stub := demoStubs(t)

	_, err := Go[Demo](context.Background(), stub, "GetDemo", 404).Get()
	remote, ok := IsRemoteError(err)
	require.True(t, ok)
	assert.Equal(t, "The resource does not exist", remote.Message())
}

func TestBufferedAsync_CancelPropagatesToTransport(t *testing.T) {
	server, _, stub := demoStubs(t)

	future := Go[Demo](context.Background(), stub, "GetSlow")
	time.Sleep(50 * time.Millisecond)
	future.Cancel()

	_, err := future.Get()
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, ErrTransport)

	select {
	case <-server.cancelled:
	case <-time.After(5 * time.Second):
		t.Fatal("server never observed the cancelled request")
	}
}

func TestContextCancellation(t *testing.T) {
	_, syncStub, asyncStub := demoStubs(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := Call[Demo](ctx, syncStub, "GetSlow")
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	ctx, cancel = context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = Go[Demo](ctx, asyncStub, "GetSlow").Get()
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBinarySync(t *testing.T) {
	_, stub, _ := demoStubs(t)

	body, err := Call[io.ReadCloser](context.Background(), stub, "GetFile", "a.bin")
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "content of a.bin", string(data))

	_, err = Call[io.ReadCloser](context.Background(), stub, "GetFile", "missing")
	remote, ok := IsRemoteError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, remote.StatusCode)
	assert.Equal(t, "file store unavailable", remote.Message())
}

func TestBinaryAsync(t *testing.T) {
	_, _, stub := demoStubs(t)

	body, err := Go[io.ReadCloser](context.Background(), stub, "GetFile", "b.bin").Get()
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	assert.Equal(t, "content of b.bin", string(data))

	_, err = Go[io.ReadCloser](context.Background(), stub, "GetFile", "missing").Get()
	_, ok := IsRemoteError(err)
	assert.True(t, ok)
}

func TestStreamSync(t *testing.T) {
	_, stub, _ := demoStubs(t)

	stream, err := Call[*Stream[Demo]](context.Background(), stub, "GetDemoStream", StreamRequest{Prompt: "go", Stream: true})
	require.NoError(t, err)

	var ids []int
	for demo, err := range stream.All() {
		require.NoError(t, err)
		assert.Equal(t, "go", demo.Description)
		ids = append(ids, demo.ID)
	}
	assert.Equal(t, []int{1, 2, 3}, ids)
	assert.NoError(t, stream.Err())
}

func TestStreamSync_ErrorStatusReadsBodyAsText(t *testing.T) {
	_, stub, _ := demoStubs(t)

	_, err := Call[*Stream[Demo]](context.Background(), stub, "GetDemoStream", StreamRequest{Prompt: "fail"})
	remote, ok := IsRemoteError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, remote.StatusCode)
	assert.Equal(t, "stream refused", remote.Message())
}

func TestStreamAsync(t *testing.T) {
	_, _, stub := demoStubs(t)

	stream, err := Go[*Stream[Demo]](context.Background(), stub, "GetDemoStream", StreamRequest{Prompt: "async"}).Get()
	require.NoError(t, err)

	demos, err := stream.Collect()
	require.NoError(t, err)
	require.Len(t, demos, 3)
	assert.Equal(t, "async", demos[0].Description)

	_, err = Go[*Stream[Demo]](context.Background(), stub, "GetDemoStream", StreamRequest{Prompt: "fail"}).Get()
	_, ok := IsRemoteError(err)
	assert.True(t, ok)
}

func TestStream_DecodeFailureEndsStream(t *testing.T) {
	client := NewClient("http://stream.test", WithTransport(TransportFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": {"text/event-stream"}},
			Body:       io.NopCloser(strings.NewReader("data: {\"id\":1}\n\ndata: not-json\n\ndata: {\"id\":3}\n\n")),
			Request:    req,
		}, nil
	})))
	stub, err := client.Bind(syncServiceDecl())
	require.NoError(t, err)

	stream, err := Call[*Stream[Demo]](context.Background(), stub, "GetDemoStream", StreamRequest{})
	require.NoError(t, err)

	require.True(t, stream.Next())
	assert.Equal(t, 1, stream.Current().ID)
	assert.False(t, stream.Next())
	assert.ErrorIs(t, stream.Err(), ErrDecode)
	assert.False(t, stream.Next())
}

func TestInvoke_DefaultMethodSkipsTransport(t *testing.T) {
	client := NewClient("http://unused.test", WithTransport(TransportFunc(func(*http.Request) (*http.Response, error) {
		t.Fatal("default methods must not reach the transport")
		return nil, errors.New("unreachable")
	})))
	stub, err := client.Bind(syncServiceDecl())
	require.NoError(t, err)

	assert.Equal(t, "Hello Test", MustCall[string](context.Background(), stub, "DefaultMethod", "Test"))
}

func TestInvoke_UnsupportedMethod(t *testing.T) {
	_, stub, _ := demoStubs(t)

	_, err := stub.Invoke(context.Background(), "NoSuchMethod")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
}

func TestInvoke_UnsupportedReturnShapeAtCallTime(t *testing.T) {
	_, stub, _ := demoStubs(t)

	_, err := stub.Invoke(context.Background(), "UnsupportedMethod")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedReturnShape)
	assert.Contains(t, err.Error(), "chan int")
}

func TestInvoke_TransportFailure(t *testing.T) {
	boom := errors.New("dial refused")
	client := NewClient("http://down.test", WithTransport(TransportFunc(func(*http.Request) (*http.Response, error) {
		return nil, boom
	})))
	stub, err := client.Bind(syncServiceDecl())
	require.NoError(t, err)

	_, err = Call[Demo](context.Background(), stub, "GetDemo", 1)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, boom)

	asyncStub, err := client.Bind(asyncServiceDecl())
	require.NoError(t, err)
	_, err = Go[Demo](context.Background(), asyncStub, "GetDemo", 1).Get()
	assert.ErrorIs(t, err, boom)
}

func TestCall_ResultTypeMismatch(t *testing.T) {
	_, stub, _ := demoStubs(t)

	_, err := Call[int](context.Background(), stub, "GetDemoPlain", 1)
	assert.ErrorIs(t, err, ErrUnsupportedReturnShape)
}

func TestNewClientFromConfig(t *testing.T) {
	server := newDemoServer(t)
	cfg, err := ParseConfig([]byte(fmt.Sprintf("base_url: %s\ntimeout: 5s\nheaders:\n  Authorization: Bearer ok\n", server.URL)))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Timeout)

	client, err := NewClientFromConfig(cfg)
	require.NoError(t, err)
	stub, err := client.Bind(syncServiceDecl())
	require.NoError(t, err)

	err = Exec(context.Background(), stub, "DeleteDemo", 1, nil)
	assert.NoError(t, err, "configured headers apply when the header argument is absent")
}

func TestParseConfig_Invalid(t *testing.T) {
	_, err := ParseConfig([]byte("headers: {}"))
	assert.EqualError(t, err, "base_url is required")

	_, err = ParseConfig([]byte("base_url: /relative"))
	assert.Error(t, err)

	_, err = ParseConfig([]byte("base_url: [oops"))
	assert.Error(t, err)
}
