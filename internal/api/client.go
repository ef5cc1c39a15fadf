// Package api is the REST client for the Rush Management backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTimeout = 15 * time.Second

// ErrTokenExpired is wrapped in a TransportError when the configured bearer
// token has an exp claim in the past.
var ErrTokenExpired = errors.New("access token expired")

// Response is the backend envelope.
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorBody      `json:"error,omitempty"`
}

// ErrorBody is the error part of the envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TransportError is returned for every failed call: network errors, non-2xx
// statuses, success=false envelopes and unusable tokens.
type TransportError struct {
	Method  string
	Path    string
	Status  int // 0 when no response was received
	Code    string
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Method, e.Path)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": HTTP %d", e.Status)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client performs authenticated JSON calls.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a client for baseURL. An empty token sends no
// Authorization header.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends body as JSON and decodes the envelope's data into out (if non-nil).
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	fail := func(status int, err error) *TransportError {
		return &TransportError{Method: method, Path: path, Status: status, Err: err}
	}

	if err := c.checkToken(); err != nil {
		return fail(0, err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fail(0, fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fail(0, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, fmt.Errorf("read response: %w", err))
	}

	var env Response
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || decodeErr != nil || !env.Success {
		te := fail(resp.StatusCode, nil)
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			// Successful status with an unusable body.
			te.Status = 0
			if decodeErr != nil {
				te.Err = fmt.Errorf("decode response: %w", decodeErr)
			} else {
				te.Message = "request was not successful"
			}
		}
		if env.Error != nil {
			te.Code = env.Error.Code
			te.Message = env.Error.Message
		}
		return te
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fail(resp.StatusCode, fmt.Errorf("decode data: %w", err))
		}
	}
	return nil
}

// checkToken rejects a JWT whose exp claim has passed. Opaque tokens are
// sent as-is; the backend remains the authority.
func (c *Client) checkToken() error {
	if c.token == "" || strings.Count(c.token, ".") != 2 {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.token, claims); err != nil {
		return nil //nolint:nilerr // not a JWT we can inspect
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil //nolint:nilerr // no usable exp claim
	}
	if !exp.After(c.now()) {
		return ErrTokenExpired
	}
	return nil
}
