package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const contentType = "application/json"

// APIError is a non-success response from the platform, carrying the
// status code and whatever body came back with it.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("http error: %d - %s", e.StatusCode, e.Body)
}

// Client issues authenticated JSON calls against the Darwin API.
// Darwin only documents application/json, so both the accept and
// content-type headers are pinned to it.
type Client struct {
	apiEndpoint string
	apiKey      string
	team        string
	httpClient  *http.Client
	logger      *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger attaches a zap logger; every request is logged with its
// method, endpoint, status and duration.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the given API root, key and team slug.
func New(apiEndpoint, apiKey, team string, opts ...Option) *Client {
	c := &Client{
		apiEndpoint: strings.TrimSuffix(apiEndpoint, "/"),
		apiKey:      apiKey,
		team:        team,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIEndpoint returns the API root the client talks to.
func (c *Client) APIEndpoint() string { return c.apiEndpoint }

// Team returns the team slug the client operates as.
func (c *Client) Team() string { return c.team }

func (c *Client) do(ctx context.Context, method, endpoint string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	url := fmt.Sprintf("%s/%s", c.apiEndpoint, strings.TrimPrefix(endpoint, "/"))
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", contentType)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "ApiKey "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("cost", time.Since(start)),
	)
	return resp, nil
}

// Get issues an authenticated GET to the endpoint.
func (c *Client) Get(ctx context.Context, endpoint string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil)
}

// Post issues an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, body any) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, endpoint, body)
}

// Put issues an authenticated PUT with an optional JSON body.
func (c *Client) Put(ctx context.Context, endpoint string, body any) (*http.Response, error) {
	return c.do(ctx, http.MethodPut, endpoint, body)
}

// Delete issues an authenticated DELETE with an optional JSON body.
func (c *Client) Delete(ctx context.Context, endpoint string, body any) (*http.Response, error) {
	return c.do(ctx, http.MethodDelete, endpoint, body)
}

// Decode checks the response status and JSON-decodes the body into T.
// A mismatched status is surfaced as an *APIError with the body text.
func Decode[T any](resp *http.Response, want int) (*T, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != want {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

// ExpectStatus checks the response status and discards the body.
func ExpectStatus(resp *http.Response, want int) error {
	defer resp.Body.Close()

	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}
