// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the assistant service client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeAuth
	ErrTypeInvalidResponse
	ErrTypeRemote
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable     = &ClientError{Type: ErrTypeConnection, Message: "assistant service is unreachable"}
	ErrTimeout         = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrLoginRequired   = &ClientError{Type: ErrTypeAuth, Message: "login required"}
	ErrBadCredentials  = &ClientError{Type: ErrTypeAuth, Message: "invalid email or password"}
	ErrInvalidResponse = &ClientError{Type: ErrTypeInvalidResponse, Message: "malformed response from service"}
)

// remoteErrPrefix marks in-band errors in response payload strings.
const remoteErrPrefix = "(error)"

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the service client.
type ClientConfig struct {
	// BaseURL of the assistant service (default: http://127.0.0.1:5000)
	BaseURL string

	// Timeout for request round-trips (default: 90s; explain-file can be slow)
	Timeout time.Duration

	// RequestsPerMinute caps outgoing calls. The service enforces
	// 30/min on chat; the client self-throttles below that.
	RequestsPerMinute int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "http://127.0.0.1:5000",
		Timeout:           90 * time.Second,
		RequestsPerMinute: 30,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client communicates with the assistant service. It keeps the session
// cookie from Login in an in-memory jar and is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new service client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new service client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:5000"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = 90 * time.Second
	}
	if config.RequestsPerMinute == 0 {
		config.RequestsPerMinute = 30
	}

	jar, _ := cookiejar.New(nil)

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Jar:     jar,
			// Login signals success with a redirect; don't follow it.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter: rate.NewLimiter(rate.Limit(float64(config.RequestsPerMinute)/60.0), config.RequestsPerMinute/6+1),
	}
}

// BaseURL returns the configured service base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// Ping verifies that the assistant service is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/ping", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "unexpected status from service: " + resp.Status,
		}
	}
	return nil
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

// Login authenticates against the service with form credentials. On
// success the session cookie lands in the client's jar. The service
// answers a successful login with a redirect and a failed one with the
// login form again.
func (c *Client) Login(ctx context.Context, email, password string) error {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/login",
		strings.NewReader(form.Encode()))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.wrapTransport(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusFound || resp.StatusCode == http.StatusSeeOther:
		return nil
	case resp.StatusCode == http.StatusOK:
		return ErrBadCredentials
	case resp.StatusCode == http.StatusTooManyRequests:
		return &ClientError{Type: ErrTypeRemote, Message: "too many login attempts, try again later"}
	default:
		return &ClientError{Type: ErrTypeAuth, Message: "login failed: " + resp.Status}
	}
}

// SessionCookie returns the current session cookie value, or "" if the
// client is not authenticated.
func (c *Client) SessionCookie() string {
	u, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return ""
	}
	for _, ck := range c.httpClient.Jar.Cookies(u) {
		if ck.Name == "session" {
			return ck.Value
		}
	}
	return ""
}

// SetSessionCookie installs a previously saved session cookie, restoring
// an authenticated session without a fresh login.
func (c *Client) SetSessionCookie(value string) {
	if value == "" {
		return
	}
	u, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return
	}
	c.httpClient.Jar.SetCookies(u, []*http.Cookie{{Name: "session", Value: value}})
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// postJSON sends a JSON request body and decodes the JSON response into out.
func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return &ClientError{Type: ErrTypeUnknown, Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path,
		bytes.NewReader(payload))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.wrapTransport(err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

// getJSON fetches path and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.wrapTransport(err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

// decodeResponse maps status codes and decodes the body.
func decodeResponse(resp *http.Response, out any) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		io.Copy(io.Discard, resp.Body)
		return ErrLoginRequired
	case http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body)
		return &ClientError{Type: ErrTypeRemote, Message: "rate limited by service"}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeRemote,
			Message: "service error: " + resp.Status + ": " + strings.TrimSpace(string(body)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "malformed response from service", Cause: err}
	}
	return nil
}

// wrapTransport converts transport errors, preserving context
// cancellation so the engine can tell an abort from a failure.
func (c *Client) wrapTransport(err error) error {
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return &ClientError{Type: ErrTypeConnection, Message: "request failed", Cause: err}
}

// remoteError surfaces an in-band "(error) ..." payload string.
func remoteError(payload string) error {
	return &ClientError{
		Type:    ErrTypeRemote,
		Message: strings.TrimSpace(strings.TrimPrefix(payload, remoteErrPrefix)),
	}
}

// isRemoteError reports whether a payload string carries an in-band error.
func isRemoteError(payload string) bool {
	return strings.HasPrefix(strings.TrimSpace(payload), remoteErrPrefix)
}
