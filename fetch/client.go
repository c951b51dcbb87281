// Package fetch is the HTTP collaborator used by data sources to download
// raw datasets. Transient failures are retried with exponential backoff,
// a non-2xx final response is surfaced as a *StatusError.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/wirvsvirus/landingzone/constants"
	"github.com/wirvsvirus/landingzone/rate_limiter"
)

const maxErrorBody = 1024

type Client struct {
	http      *retryablehttp.Client
	limiter   *rate_limiter.APILimiter
	userAgent string
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.HTTPClient.Timeout = d
	}
}

// WithRetries sets the number of retries after the first attempt
func WithRetries(max int) Option {
	return func(c *Client) {
		c.http.RetryMax = max
	}
}

func WithRetryWait(min, max time.Duration) Option {
	return func(c *Client) {
		c.http.RetryWaitMin = min
		c.http.RetryWaitMax = max
	}
}

func WithLimiter(l *rate_limiter.APILimiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHTTPClient replaces the underlying client, the DNS caching transport is not used
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http.HTTPClient = h
	}
}

func NewClient(opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{
		Transport: NewTransport(),
		Timeout:   constants.DefaultFetchTimeout,
	}
	rc.RetryMax = constants.DefaultFetchRetries
	rc.Logger = slog.Default()
	// return the last response rather than a generic error so the status reaches the caller
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &Client{
		http:      rc,
		userAgent: constants.AppName,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get downloads url and returns the body
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}
	defer c.limiter.Release()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}
	slog.Debug("fetched", "url", url, "bytes", len(data), "duration", time.Since(start))
	return data, nil
}
