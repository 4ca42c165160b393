// Package ninja is a thin client for the Invoice Ninja v5 REST API. It owns
// request construction, the shared header set, the per-request timeout, and
// the {"data": ...} response envelope; callers get decoded records or a
// typed error, never a raw *http.Response.
package ninja

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/averden/invoice-ninja-mcp/internal/config"
)

// Client is an authenticated Invoice Ninja API client. It is safe for
// concurrent use; it holds no per-call state.
type Client struct {
	baseURL    string
	headers    map[string]string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithHTTPClient replaces the underlying HTTP client. Tests use this
// together with httptest servers.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client from the resolved configuration.
func New(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		baseURL:    cfg.BaseURL,
		headers:    cfg.Headers(),
		timeout:    cfg.RequestTimeout(),
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response from Invoice Ninja, carrying the upstream
// message so tools can surface it verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d - %s", e.Status, e.Message)
}

// do issues one request and decodes the JSON response into out (if out is
// non-nil). The context bounds the request: the configured timeout applies,
// and cancellation from the caller aborts the outbound call. There are no
// retries; a failure is reported once and immediately.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	requestID := uuid.NewString()
	c.logger.Debug("api request",
		slog.String("request_id", requestID),
		slog.String("method", method),
		slog.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api request failed: %w", err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("api error",
			slog.String("request_id", requestID),
			slog.Int("status", resp.StatusCode))
		return &APIError{Status: resp.StatusCode, Message: upstreamMessage(data)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding api response: %w", err)
		}
	}
	return nil
}

// upstreamMessage extracts the error message from an Invoice Ninja error
// payload, falling back to the raw body.
func upstreamMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return string(body)
}

// Get issues a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST request with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues a PUT request with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// Bulk applies one action to a list of entity IDs with a single POST to the
// entity's /bulk endpoint, rather than one call per ID. Extra fields (e.g.
// email_type for reminders) are merged into the payload.
func (c *Client) Bulk(ctx context.Context, entity, action string, ids []string, extra map[string]any) error {
	payload := map[string]any{
		"action": action,
		"ids":    ids,
	}
	for k, v := range extra {
		payload[k] = v
	}
	return c.do(ctx, http.MethodPost, "/"+entity+"/bulk", nil, payload, nil)
}

// Ping checks connectivity to the Invoice Ninja instance.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/ping", nil, nil, nil)
}
