// Package transport implements the authenticated request pipeline for the
// storefront client. Every outbound call to the backend flows through
// Client: it attaches the bearer credential when one is held, tags the
// request with a generated ID, and converts HTTP failures into the
// structured errors the rest of the client works with.
//
// On a 401 response the pipeline attempts exactly one token refresh and
// replays the original request once with the new credential. A refresh
// failure, or a second 401 on the replayed request, tears the session down
// and invokes the configured auth-failure handler (the "redirect to login"
// seam). The single-retry flag is carried in the call frame of each
// request, never in shared state, so concurrent requests cannot race on it.
//
// The current backend exposes no refresh endpoint, so in practice the
// refresh path always falls through to session teardown. That is a known
// limitation of the backend, not something the pipeline papers over.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/verdemarket/storefront/core"
)

// CredentialSource supplies the bearer token for outbound requests and
// owns session teardown when authentication fails for good. The session
// manager implements it; the pipeline never reaches into session state
// directly.
type CredentialSource interface {
	// Token returns the current bearer token, or "" when anonymous.
	Token(ctx context.Context) string
	// StoreToken replaces the current token after a successful refresh.
	StoreToken(ctx context.Context, token string) error
	// ClearSession drops the user and token from memory and storage.
	ClearSession(ctx context.Context) error
}

// Refresher attempts to exchange the current credential for a fresh one.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// Client wraps an *http.Client with the storefront request pipeline
type Client struct {
	baseURL       string
	userAgent     string
	httpClient    *http.Client
	logger        core.Logger
	creds         CredentialSource
	refresher     Refresher
	onAuthFailure func()
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithLogger sets the pipeline logger
func WithLogger(logger core.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRefresher sets the token refresher used on 401 responses
func WithRefresher(r Refresher) ClientOption {
	return func(c *Client) {
		c.refresher = r
	}
}

// WithAuthFailureHandler sets the hook invoked after session teardown.
// The web client redirects to the login page here; a CLI prints a
// "please log in again" notice.
func WithAuthFailureHandler(fn func()) ClientOption {
	return func(c *Client) {
		c.onAuthFailure = fn
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a request pipeline from the client configuration.
// When telemetry is enabled the transport is wrapped with otelhttp so
// every backend call produces a client span.
func New(cfg *core.Config, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(cfg.API.BaseURL, "/"),
		userAgent: cfg.API.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.API.RequestTimeout,
		},
		logger: &core.NoOpLogger{},
	}

	if cfg.Telemetry.Enabled {
		c.httpClient.Transport = otelhttp.NewTransport(http.DefaultTransport)
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetCredentials binds the credential source. It is split from New
// because the session manager and the pipeline reference each other:
// the manager needs the pipeline for auth calls, the pipeline needs the
// manager for tokens.
func (c *Client) SetCredentials(creds CredentialSource) {
	c.creds = creds
}

// SetRefresher binds the token refresher after construction, for the
// same circular-wiring reason as SetCredentials.
func (c *Client) SetRefresher(r Refresher) {
	c.refresher = r
}

// apiEnvelope is the backend's error/message wrapper. Depending on the
// handler the message arrives as "error", "mensaje" or "message".
type apiEnvelope struct {
	Error   string `json:"error"`
	Mensaje string `json:"mensaje"`
	Message string `json:"message"`
}

func (e apiEnvelope) text() string {
	switch {
	case e.Error != "":
		return e.Error
	case e.Mensaje != "":
		return e.Mensaje
	default:
		return e.Message
	}
}

// Get issues a GET request and decodes the JSON response into out
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with an optional JSON body
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE request
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do executes one pipeline request. body is JSON-encoded when non-nil;
// out, when non-nil, receives the decoded JSON response.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	return c.do(ctx, method, path, body, out, false)
}

// do carries the per-request retried flag through the 401 handling path.
// The flag lives on this call frame only, matching the transient metadata
// the web client attaches to each request object.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, retried bool) error {
	op := fmt.Sprintf("%s %s", method, path)

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body for %s: %w", op, err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request %s: %w", op, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	// Outbound interceptor: attach the bearer credential when one is held
	token := ""
	if c.creds != nil {
		token = c.creds.Token(ctx)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("API request", map[string]interface{}{
		"operation":     "api_request",
		"method":        method,
		"path":          path,
		"authenticated": token != "",
		"retried":       retried,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("API request failed", map[string]interface{}{
			"operation": "api_request_error",
			"method":    method,
			"path":      path,
			"error":     err.Error(),
		})
		return c.transportError(op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response for %s: %w", op, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return c.handleUnauthorized(ctx, op, method, path, body, out, respBody, retried)
	}

	if resp.StatusCode >= 400 {
		return c.statusError(op, resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response for %s: %w", op, err)
		}
	}

	return nil
}

// handleUnauthorized implements the single refresh-and-retry policy.
// First 401: try one refresh, store the new token, replay the original
// request with retried=true. Refresh failure or a 401 on the replay:
// clear the session, fire the auth-failure hook, surface the error.
func (c *Client) handleUnauthorized(ctx context.Context, op, method, path string, body, out interface{}, respBody []byte, retried bool) error {
	if !retried && c.refresher != nil {
		c.logger.Info("Received 401, attempting token refresh", map[string]interface{}{
			"operation": "token_refresh",
			"method":    method,
			"path":      path,
		})

		newToken, err := c.refresher.Refresh(ctx)
		if err == nil {
			if c.creds != nil {
				if serr := c.creds.StoreToken(ctx, newToken); serr != nil {
					c.logger.Warn("Failed to persist refreshed token", map[string]interface{}{
						"operation": "token_refresh",
						"error":     serr.Error(),
					})
				}
			}
			return c.do(ctx, method, path, body, out, true)
		}

		c.logger.Warn("Token refresh failed", map[string]interface{}{
			"operation": "token_refresh",
			"error":     err.Error(),
		})
	}

	c.teardownSession(ctx, method, path)

	var envelope apiEnvelope
	_ = json.Unmarshal(respBody, &envelope)

	return &core.ClientError{
		Op:         op,
		Kind:       "auth",
		Status:     http.StatusUnauthorized,
		APIMessage: envelope.text(),
		Err:        core.ErrUnauthorized,
	}
}

// teardownSession clears the stored session and notifies the application
func (c *Client) teardownSession(ctx context.Context, method, path string) {
	c.logger.Warn("Authentication failed, clearing session", map[string]interface{}{
		"operation": "session_teardown",
		"method":    method,
		"path":      path,
	})

	if c.creds != nil {
		if err := c.creds.ClearSession(ctx); err != nil {
			c.logger.Error("Failed to clear session", map[string]interface{}{
				"operation": "session_teardown",
				"error":     err.Error(),
			})
		}
	}

	if c.onAuthFailure != nil {
		c.onAuthFailure()
	}
}

// statusError converts a non-401 error status into a ClientError
func (c *Client) statusError(op string, status int, respBody []byte) error {
	var envelope apiEnvelope
	_ = json.Unmarshal(respBody, &envelope)

	kind := "api"
	var sentinel error = core.ErrRequestFailed
	switch {
	case status == http.StatusNotFound:
		kind = "not_found"
		sentinel = core.ErrNotFound
	case status >= 400 && status < 500:
		kind = "validation"
	case status >= 500:
		kind = "server"
	}

	c.logger.Error("API request rejected", map[string]interface{}{
		"operation":   "api_request_error",
		"op":          op,
		"status_code": status,
		"api_message": envelope.text(),
	})

	return &core.ClientError{
		Op:         op,
		Kind:       kind,
		Status:     status,
		APIMessage: envelope.text(),
		Err:        sentinel,
	}
}

// transportError classifies a transport-level failure
func (c *Client) transportError(op string, err error) error {
	sentinel := core.ErrConnectionFailed
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		sentinel = core.ErrTimeout
	}

	return &core.ClientError{
		Op:   op,
		Kind: "transport",
		Err:  fmt.Errorf("%w: %v", sentinel, err),
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
