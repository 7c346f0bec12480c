package relay

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/toyz/relay/pkg/relay/sse"
)

// Client sends the requests of bound interfaces to one base URL
type Client struct {
	baseURL     string
	transport   Transport
	codec       Codec
	logger      *zap.Logger
	store       *Store
	headers     http.Header
	maxLineSize int
}

// Option configures a Client
type Option func(*Client)

// WithTransport sets the transport used to send requests
func WithTransport(t Transport) Option {
	return func(c *Client) {
		if t != nil {
			c.transport = t
		}
	}
}

// WithHTTPClient sends requests through an *http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.transport = NewHTTPTransport(hc)
	}
}

// WithCodec sets the codec for request and response bodies
func WithCodec(codec Codec) Option {
	return func(c *Client) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStore shares a metadata store between clients
func WithStore(store *Store) Option {
	return func(c *Client) {
		if store != nil {
			c.store = store
		}
	}
}

// WithHeader adds a header sent with every request
func WithHeader(name, value string) Option {
	return func(c *Client) {
		c.headers.Add(name, value)
	}
}

// WithMaxLineSize limits the length of a single event stream line
func WithMaxLineSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxLineSize = n
		}
	}
}

// NewClient creates a client for the API rooted at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		transport:   NewHTTPTransport(nil),
		codec:       JSONCodec{},
		logger:      zap.NewNop(),
		headers:     make(http.Header),
		maxLineSize: sse.DefaultMaxLineSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = NewStore(WithStoreLogger(c.logger))
	}
	return c
}

// NewClientFromConfig creates a client from a validated Config. Options are
// applied after the configuration.
func NewClientFromConfig(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := []Option{WithMaxLineSize(cfg.MaxLineSize)}
	if cfg.Timeout > 0 {
		base = append(base, WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}
	for name, value := range cfg.Headers {
		base = append(base, WithHeader(name, value))
	}
	return NewClient(cfg.BaseURL, append(base, opts...)...), nil
}

// BaseURL returns the base URL requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Store returns the metadata store of the client
func (c *Client) Store() *Store {
	return c.store
}

// Logger returns the client logger
func (c *Client) Logger() *zap.Logger {
	return c.logger
}
