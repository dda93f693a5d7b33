// Package api talks to the kawai backend.
//
// Read operations never fail: transport errors, unexpected shapes and
// backend error fields all yield an empty result and a log entry. Mutations
// return an *APIError carrying the backend's message.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/existflow/kawai/internal/logger"
)

// TokenSource supplies the bearer token for outgoing requests.
// An empty token sends the request unauthenticated.
type TokenSource interface {
	Token() string
}

// Client is the backend REST client
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	log        *logger.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default 30s-timeout client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a client for baseURL. tokens may be nil.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logger.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithFields(logger.F("component", "api"))
	return c
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends a JSON request and returns the status code and raw body.
func (c *Client) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("request failed", logger.F("method", method), logger.F("path", path),
			logger.F("request_id", reqID), logger.F("error", err))
		return 0, nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("request", logger.F("method", method), logger.F("path", path),
		logger.F("status", resp.StatusCode), logger.F("request_id", reqID),
		logger.F("duration", time.Since(start)))
	return resp.StatusCode, data, nil
}

// get fetches path for a read operation. Any failure is returned as an error
// for the caller to log and swallow.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	status, data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status >= http.StatusBadRequest {
		return nil, fmt.Errorf("unexpected status %d", status)
	}
	return data, nil
}

// mutate sends a write request and turns every failure into an *APIError.
func (c *Client) mutate(ctx context.Context, method, path string, body any) ([]byte, error) {
	status, data, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, &APIError{Message: FallbackMessage, Err: err}
	}
	if err := checkResponse(status, data); err != nil {
		c.log.Warn("mutation rejected", logger.F("method", method), logger.F("path", path),
			logger.F("status", status), logger.F("error", err))
		return nil, err
	}
	return data, nil
}

func (c *Client) readFailed(resource string, err error) {
	c.log.Warn("read degraded to empty", logger.F("resource", resource), logger.F("error", err))
}
