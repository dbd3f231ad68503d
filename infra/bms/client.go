package bms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/kilianp07/automail/core/fee"
	"github.com/kilianp07/automail/core/logger"
)

// StatusError is returned for non-2xx responses of the fee service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bms status %d: %s", e.Code, e.Body)
}

// Client queries a remote fee service over HTTP.
type Client struct {
	baseURL     string
	http        *http.Client
	maxAttempts int
	backoff     time.Duration
	log         logger.Logger
}

var _ fee.Lookup = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) ClientOption { return func(c *Client) { c.http = h } }

// WithTimeout sets the timeout of every request attempt.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d, Transport: c.http.Transport}
		}
	}
}

// WithRetry sets the number of attempts and the initial backoff, doubled after
// every failed attempt.
func WithRetry(attempts int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxAttempts = attempts
		c.backoff = backoff
	}
}

// WithClientLogger sets the client logger.
func WithClientLogger(l logger.Logger) ClientOption { return func(c *Client) { c.log = l } }

// NewClient returns a Client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		http:        &http.Client{Timeout: 2 * time.Second},
		maxAttempts: 3,
		backoff:     50 * time.Millisecond,
		log:         logger.Nop{},
	}
	for _, o := range opts {
		o(c)
	}
	if c.maxAttempts < 1 {
		c.maxAttempts = 1
	}
	return c
}

// LookupServiceFee fetches the fee of floor, retrying transient failures.
func (c *Client) LookupServiceFee(ctx context.Context, floor int) (float64, error) {
	url := fmt.Sprintf("%s/fees/%d", c.baseURL, floor)
	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return 0, fmt.Errorf("lookup fee floor %d: %w", floor, err)
	}
	defer resp.Body.Close()

	var body FeeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode fee floor %d: %w", floor, err)
	}
	return body.Fee, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return resp, nil
}

// doWithRetry retries network errors, 429 and 5xx responses with exponential
// backoff while respecting context cancellation.
func (c *Client) doWithRetry(ctx context.Context, makeReq func() (*http.Request, error)) (*http.Response, error) {
	backoff := c.backoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}
		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt == c.maxAttempts {
			return nil, lastErr
		}
		c.log.Debugf("bms attempt %d failed: %v", attempt, err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
	return nil, lastErr
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
