package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client calls the console REST API on behalf of the agent. The token
// func is consulted per request, so rotated credentials take effect
// without rebuilding the client.
type Client struct {
	baseURL string
	tokenFn func() string
	logger  *slog.Logger

	httpClient *http.Client
	maxRetries int
	retryBase  time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout caps each HTTP round trip.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRetries sets how many times a retryable request is reattempted
// and the first backoff step.
func WithRetries(attempts int, base time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = attempts
		c.retryBase = base
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger.With("component", "api") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a console API client. A nil tokenFn sends
// unauthenticated requests.
func NewClient(baseURL string, tokenFn func() string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokenFn:    tokenFn,
		logger:     slog.Default(),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
		retryBase:  time.Second,
	}
	if c.tokenFn == nil {
		c.tokenFn = func() string { return "" }
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}
