// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package client provides a Go client library for the vibetable API.
//
// vibetable stores the most recent vibration log uploaded by a producer and
// converts it into wide and long CSV tables. This package gives typed access
// to every endpoint.
//
// # Getting Started
//
//	c := client.New("http://127.0.0.1:8000")
//
//	// Store a log
//	info, err := c.Documents.Put(ctx, text)
//
//	// Convert the latest log with a fault label
//	summary, err := c.Dataset.Convert(ctx, &client.ConvertRequest{Label: "bearing"})
//
//	// Download the wide table
//	export, err := c.Dataset.Wide(ctx, nil)
//
// # Errors
//
// Transport failures wrap [ErrConnectionFailed] or [ErrTimeout] and can be
// tested with errors.Is. Error envelopes from the server are returned as
// *[APIError]; any other unexpected status is a *[StatusError].
//
// # Retries
//
// [WithRetry] retries connection failures and timeouts with exponential
// backoff. API errors are never retried.
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

	"github.com/jpillora/backoff"
)

// DefaultTimeout is the HTTP timeout used unless [WithTimeout] is given.
const DefaultTimeout = 15 * time.Second

// Client is a vibetable API client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	version    string
	httpClient *http.Client
	retries    int
	backoff    backoff.Backoff

	// Documents accesses the single stored log.
	Documents *DocumentClient

	// Dataset converts the stored log and exports the tables.
	Dataset *DatasetClient

	// Labels lists the fault labels.
	Labels *LabelClient

	// Events reads the event history.
	Events *EventClient
}

// Option configures a [Client].
type Option func(*Client)

// New creates a client for the server at baseURL (e.g.
// "http://127.0.0.1:8000"). A trailing slash is removed.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		version: LatestVersion,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		backoff: backoff.Backoff{
			Factor: 2,
			Jitter: true,
			Min:    50 * time.Millisecond,
			Max:    time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.Documents = &DocumentClient{c: c}
	c.Dataset = &DatasetClient{c: c}
	c.Labels = &LabelClient{c: c}
	c.Events = &EventClient{c: c}

	return c
}

// WithVersion sets the API version sent with every request.
func WithVersion(v string) Option {
	return func(c *Client) {
		c.version = v
	}
}

// WithHTTPClient sets a custom HTTP client for making requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the HTTP client timeout for all requests.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetry retries a request up to n more times after a connection failure
// or timeout.
func WithRetry(n int) Option {
	return func(c *Client) {
		if n < 0 {
			n = 0
		}
		c.retries = n
	}
}

// Version returns the API version being used.
func (c *Client) Version() string {
	return c.version
}

// BaseURL returns the base URL of the API.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// apiResponse is the standard API response envelope.
type apiResponse struct {
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error"`
}

// get performs a GET request to the given path.
func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodGet, path, nil)
}

// post performs a POST request with a JSON body.
func (c *Client) post(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodPost, path, body)
}

// put performs a PUT request with a JSON body.
func (c *Client) put(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodPut, path, body)
}

// delete performs a DELETE request to the given path.
func (c *Client) delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodDelete, path, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	resp, respBody, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	return parseResponse(resp, respBody)
}

// do performs an HTTP request, retrying transport failures, and returns the
// response with its body fully read.
func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, []byte, error) {
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	b := c.backoff
	for attempt := 0; ; attempt++ {
		resp, respBody, err := c.once(ctx, method, path, data)
		if err == nil {
			return resp, respBody, nil
		}
		if attempt >= c.retries || !retryable(err) || ctx.Err() != nil {
			return nil, nil, err
		}

		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(b.Duration()):
		}
	}
}

func (c *Client) once(ctx context.Context, method, path string, data []byte) (*http.Response, []byte, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	req.Header.Set(VersionHeader, c.version)
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, classify(ctx, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, classify(ctx, err)
	}
	return resp, respBody, nil
}

// parseResponse decodes an API envelope.
func parseResponse(resp *http.Response, respBody []byte) (json.RawMessage, error) {
	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, newStatusError(resp, respBody)
		}
		// Return raw body for non-envelope responses
		return respBody, nil
	}

	// Check for error in envelope
	if apiResp.Error != nil {
		apiResp.Error.StatusCode = resp.StatusCode
		return nil, apiResp.Error
	}

	if resp.StatusCode >= 400 {
		return nil, newStatusError(resp, respBody)
	}

	return apiResp.Data, nil
}

// isNull reports whether data is absent or JSON null.
func isNull(data json.RawMessage) bool {
	s := bytes.TrimSpace(data)
	return len(s) == 0 || bytes.Equal(s, []byte("null"))
}
