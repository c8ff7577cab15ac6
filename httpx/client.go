// SPDX-License-Identifier: MIT

// Package httpx provides a hardened HTTP client: pinned TLS versions,
// client-side rate limiting, automatic retry of idempotent requests, and
// request-ID propagation.
package httpx

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ManuGH/genutil/execctx"
	"github.com/ManuGH/genutil/htmlx"
	"github.com/ManuGH/genutil/log"
	"github.com/ManuGH/genutil/resilience"
)

const (
	defaultTimeout               = 30 * time.Second
	defaultDialTimeout           = 5 * time.Second
	defaultIdleConnTimeout       = 30 * time.Second
	defaultExpectContinueTimeout = 1 * time.Second
	defaultMaxIdleConns          = 16
	defaultMaxIdleConnsPerHost   = 4

	// RequestIDHeader carries the request ID across service boundaries.
	RequestIDHeader = "X-Request-Id"
)

// Options configures a Client. The zero value yields sane defaults.
type Options struct {
	// Timeout bounds a whole request/response cycle. Zero means 30s.
	Timeout time.Duration
	// MinTLSVersion pins the lowest acceptable TLS version, e.g.
	// tls.VersionTLS12. Zero means TLS 1.2.
	MinTLSVersion uint16
	// MaxTLSVersion optionally caps the TLS version. Zero means no cap.
	MaxTLSVersion uint16
	// MaxRetries bounds retry attempts for retryable failures of idempotent
	// requests. Zero disables retries.
	MaxRetries int
	// RateLimit, when positive, throttles outgoing requests client-side.
	RateLimit rate.Limit
	// RateBurst is the limiter burst; defaults to 1 when RateLimit is set.
	RateBurst int
	// UserAgent is sent when the request has none.
	UserAgent string
}

// Client wraps http.Client with retry, throttling and request-ID injection.
type Client struct {
	http       *http.Client
	limiter    *rate.Limiter
	maxRetries int
	userAgent  string
}

// New builds a Client from opts.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	minTLS := opts.MinTLSVersion
	if minTLS == 0 {
		minTLS = tls.VersionTLS12
	}

	dialTimeout := timeout
	if dialTimeout > defaultDialTimeout {
		dialTimeout = defaultDialTimeout
	}

	c := &Client{
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           (&net.Dialer{Timeout: dialTimeout, KeepAlive: 30 * time.Second}).DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          defaultMaxIdleConns,
				MaxIdleConnsPerHost:   defaultMaxIdleConnsPerHost,
				IdleConnTimeout:       defaultIdleConnTimeout,
				TLSHandshakeTimeout:   dialTimeout,
				ExpectContinueTimeout: defaultExpectContinueTimeout,
				TLSClientConfig: &tls.Config{
					MinVersion: minTLS,
					MaxVersion: opts.MaxTLSVersion,
				},
			},
		},
		maxRetries: opts.MaxRetries,
		userAgent:  opts.UserAgent,
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(opts.RateLimit, burst)
	}
	return c
}

// Do sends the request. Idempotent methods are retried on connection errors
// and 5xx responses; other methods get a single attempt. The request ID from
// the context is injected as a header when present.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	if req.Header.Get(RequestIDHeader) == "" {
		if id := log.RequestIDFromContext(ctx); id != "" {
			req.Header.Set(RequestIDHeader, id)
		}
	}
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	if c.maxRetries <= 0 || !idempotent(req.Method) {
		return c.attempt(req)
	}

	var resp *http.Response
	err := resilience.Retry(ctx, "http "+req.Method+" "+req.URL.Host,
		func(ctx context.Context) error {
			r, err := c.attempt(req)
			if err != nil {
				return err
			}
			if r.StatusCode >= 500 {
				body := r.Body
				_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
				_ = body.Close()
				return fmt.Errorf("server error: %s", r.Status)
			}
			resp = r
			return nil
		},
		resilience.WithMaxRetries(uint64(c.maxRetries)),
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) attempt(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)

	logger := log.WithComponentFromContext(req.Context(), "httpx")
	evt := logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.Redacted()).
		Dur("duration", time.Since(start))
	if err != nil {
		evt.Err(err).Msg("request failed")
		return nil, err
	}
	evt.Int("status", resp.StatusCode).Msg("request complete")
	return resp, nil
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// Get fetches url and returns the body as UTF-8 text. HTML responses are
// charset-decoded using the Content-Type header and document hints. Non-2xx
// statuses are an error carrying the status code.
func (c *Client) Get(ctx context.Context, url string) (string, error) {
	ctx, _ = execctx.EnsureRequestID(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Code: resp.StatusCode, URL: url}
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "html") || strings.Contains(contentType, "xml") {
		return htmlx.Decode(resp.Body, contentType)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}
