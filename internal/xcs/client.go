// Package xcs is an HTTP client for the build server REST API. It decodes
// responses into snapshot records and classifies failures as transport
// failures or empty responses.
package xcs

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mesh-intelligence/botsync/pkg/types"
)

// Default endpoint values.
const (
	DefaultPort    = 20343
	DefaultScheme  = "https"
	DefaultTimeout = 30 * time.Second
)

// retryMaxElapsed bounds the time spent retrying one request.
const retryMaxElapsed = 30 * time.Second

// Endpoint locates and authenticates against one build server.
type Endpoint struct {
	FQDN               string
	Port               int
	Scheme             string
	Username           string
	Password           string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// BaseURL returns the API root of the endpoint.
func (e Endpoint) BaseURL() string {
	scheme := e.Scheme
	if scheme == "" {
		scheme = DefaultScheme
	}
	port := e.Port
	if port == 0 {
		port = DefaultPort
	}
	return fmt.Sprintf("%s://%s/api", scheme, net.JoinHostPort(e.FQDN, strconv.Itoa(port)))
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: server returned status %d", e.Method, e.Path, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// retryable reports whether the server may answer differently later.
func (e *StatusError) retryable() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// Client talks to one build server.
type Client struct {
	endpoint   Endpoint
	base       *url.URL
	http       *http.Client
	logger     *slog.Logger
	newBackOff func() backoff.BackOff
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client built from the endpoint.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger retries are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBackOff replaces the retry policy. Each request gets a fresh policy
// from fn.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(c *Client) { c.newBackOff = fn }
}

// New returns a client for the endpoint.
func New(ep Endpoint, opts ...Option) (*Client, error) {
	if ep.FQDN == "" {
		return nil, errors.New("endpoint has no host name")
	}
	base, err := url.Parse(ep.BaseURL())
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint %q: %w", ep.FQDN, err)
	}
	timeout := ep.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if ep.InsecureSkipVerify {
		// Build servers commonly run on self-signed certificates.
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	c := &Client{
		endpoint: ep,
		base:     base,
		http:     &http.Client{Timeout: timeout, Transport: transport},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.MaxElapsedTime = retryMaxElapsed
			return bo
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FQDN returns the server's host name.
func (c *Client) FQDN() string {
	return c.endpoint.FQDN
}

// do sends one request, retrying transient failures of GETs, and returns
// the response body. Failures wrap ErrTransport.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("encoding %s body: %w", path, err)
		}
	}

	var out []byte
	attempt := 0
	op := func() error {
		attempt++
		data, err := c.roundTrip(ctx, method, path, query, payload)
		if err == nil {
			out = data
			return nil
		}
		var se *StatusError
		if errors.As(err, &se) && !se.retryable() {
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		c.logger.Debug("retrying request", "method", method, "path", path, "attempt", attempt, "error", err)
		return err
	}
	bo := c.newBackOff()
	if method != http.MethodGet {
		// Not idempotent: a lost response may still have taken effect.
		bo = &backoff.StopBackOff{}
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrTransport, err)
	}
	return out, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, payload []byte) ([]byte, error) {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.endpoint.Username != "" {
		req.SetBasicAuth(c.endpoint.Username, c.endpoint.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(data)),
		}
	}
	return data, nil
}

// decode unmarshals a response body. An empty body, a JSON null or an
// undecodable body is an empty response.
func decode(path string, data []byte, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return fmt.Errorf("%w: %s returned no body", types.ErrEmptyResponse, path)
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("%w: decoding %s: %w", types.ErrEmptyResponse, path, err)
	}
	return nil
}
