package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Default client bounds. Upstream routing APIs answer quickly; a slow
// answer is treated the same as no answer so one laggy endpoint cannot
// stall a provider's whole analysis.
const (
	// DefaultRequestTimeout bounds a single upstream request.
	DefaultRequestTimeout = 10 * time.Second

	// DefaultMaxBodySize limits response bodies to prevent memory
	// exhaustion from a misbehaving endpoint.
	DefaultMaxBodySize = 2 * 1024 * 1024 // 2MB
)

// ErrUpstreamStatus is returned when an upstream endpoint answers with a
// non-2xx status code.
var ErrUpstreamStatus = errors.New("upstream returned non-success status")

// Fetcher is the narrow upstream access interface providers depend on.
//
// Design decision: Providers take an interface rather than *http.Client
// because every upstream failure mode (network error, bad status, malformed
// body, timeout) must normalize to a single error at the call site, and
// tests must be able to exercise those paths without network access.
type Fetcher interface {
	// GetJSON issues a GET to rawURL with the given query parameters and
	// decodes the JSON response into out. Any failure mode returns a
	// single descriptive error.
	GetJSON(ctx context.Context, rawURL string, params url.Values, out any) error
}

// Client is the production Fetcher backed by net/http.
type Client struct {
	// httpClient is the underlying HTTP client.
	httpClient *http.Client

	// userAgent identifies RouteLens in upstream requests.
	userAgent string

	// maxBodySize limits how much of a response body is read.
	maxBodySize int64
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header for upstream requests.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size in bytes.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		c.maxBodySize = n
	}
}

// NewClient creates a Client with bounded defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: DefaultRequestTimeout},
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON implements Fetcher.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, out any) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid upstream URL %q: %w", rawURL, err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to build upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read errors surface via decode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s from %s", ErrUpstreamStatus, resp.Status, u.Host)
	}

	body := io.LimitReader(resp.Body, c.maxBodySize)
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("malformed upstream response from %s: %w", u.Host, err)
	}
	return nil
}
