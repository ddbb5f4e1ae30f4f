// Package backend is the HTTP transport for the remote memory service.
// It shapes requests per the route table, attaches the credential and
// user-namespace headers, and hands raw responses back for
// classification. It holds no retry or policy logic.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vietddude/memgate/internal/core/config"
)

// Response is the raw outcome of one backend call. Transport-level
// failures (refused connection, DNS, timeout) surface as errors instead.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// RetryAfter reads the server-supplied retry hint, zero when absent or
// unparseable.
func (r *Response) RetryAfter() time.Duration {
	v := r.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// Transport issues one backend call. The HTTP client implements it; tests
// substitute doubles with call counters.
type Transport interface {
	Do(ctx context.Context, r Request) (*Response, error)
}

// Client is the production Transport over net/http.
type Client struct {
	baseURL    string
	apiKey     string
	userID     string
	httpClient *http.Client
}

// NewClient creates a backend client. Timeouts are applied per request
// through the caller's context, not on the http.Client.
func NewClient(cfg config.BackendConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		userID:  cfg.UserID,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Do executes one backend call and reads the full response body.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, c.baseURL+r.Path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("X-User-ID", c.userID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
