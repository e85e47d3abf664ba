// Package gateway provides the client for the hosted backend's data API.
//
// The backend exposes PostgREST-style row endpoints (/rest/v1/<table>) plus a
// few RPC functions. Loosely-typed joined rows are mapped through explicit
// adapters in rows.go so ad-hoc shapes never leak past this boundary.
package gateway

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"github.com/yuzhenbei/booktravel/internal/errors"
	"github.com/yuzhenbei/booktravel/internal/ratelimit"
)

const (
	// Rate limit: per-table, generous enough for interactive use.
	defaultRPS   = 5.0
	defaultBurst = 10

	// HTTP client settings
	defaultTimeout = 30 * time.Second

	// Transient failures are retried with backoff before surfacing.
	retryAttempts = 3
	retryDelay    = 200 * time.Millisecond
	retryMaxDelay = 2 * time.Second
)

// TokenSource supplies the bearer token of the signed-in user.
// An empty token means anonymous access (the anon key alone).
type TokenSource interface {
	AccessToken() string
}

// Client is a rate-limited client for the hosted backend.
type Client struct {
	http    *http.Client
	baseURL string
	anonKey string
	tokens  TokenSource
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// New creates a new gateway client.
func New(baseURL, anonKey string, tokens TokenSource, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		anonKey: anonKey,
		tokens:  tokens,
		limiter: ratelimit.New(defaultRPS, defaultBurst),
		logger:  logger,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// do executes one JSON request against the data API with rate limiting and
// retry on transient failures. table doubles as the rate-limit key.
func (c *Client) do(ctx context.Context, method, table, path string, query url.Values, payload, out any) error {
	if err := c.limiter.Wait(ctx, table); err != nil {
		return errors.Wrap(err, errors.CodeTransport, "rate limit wait")
	}

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, errors.CodeInternal, "encode request")
		}
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, method, fullURL, bytes.NewReader(body))
		if err != nil {
			return retry.Unrecoverable(errors.Wrap(err, errors.CodeInternal, "create request"))
		}
		c.setHeaders(req, payload != nil)

		c.logger.Debug("gateway request", "method", method, "table", table, "path", path)

		resp, err := c.http.Do(req)
		if err != nil {
			return errors.Wrap(err, errors.CodeTransport, "execute request")
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return errors.Wrap(err, errors.CodeTransport, "read response")
		}

		if err := statusError(resp.StatusCode, respBody); err != nil {
			if resp.StatusCode >= 500 {
				return err // retryable
			}
			return retry.Unrecoverable(err)
		}

		if out != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				return retry.Unrecoverable(errors.Wrap(err, errors.CodeTransport, "decode response"))
			}
		}
		return nil
	}

	err := retry.Do(
		attempt,
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.MaxDelay(retryMaxDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("gateway retry", "attempt", n+1, "table", table, "error", err)
		}),
	)
	return err
}

// setHeaders attaches the API key and, when present, the user's bearer token.
func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "BookTravelStation/1.0")
	req.Header.Set("apikey", c.anonKey)

	token := c.anonKey
	if c.tokens != nil {
		if t := c.tokens.AccessToken(); t != "" {
			token = t
		}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	if hasBody {
		req.Header.Set("Content-Type", "application/json")
		// Row endpoints echo the inserted row back only when asked.
		req.Header.Set("Prefer", "return=representation")
	}
}

// statusError maps an HTTP status to a domain error, nil for success.
func statusError(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.NotAuthenticated("gateway rejected credentials")
	case status == http.StatusNotFound:
		return errors.NotFound("record not found")
	case status == http.StatusConflict:
		return errors.Conflict("record conflict")
	case status >= 400 && status < 500:
		return errors.Validationf("gateway rejected request: %s", truncate(body, 200))
	default:
		return errors.Transportf("gateway error %d: %s", status, truncate(body, 200))
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// rpc invokes a named server-side function with a JSON argument object.
func (c *Client) rpc(ctx context.Context, name string, args any) error {
	return c.do(ctx, http.MethodPost, "rpc", "/rest/v1/rpc/"+name, nil, args, nil)
}
