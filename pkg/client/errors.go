// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

var (
	// ErrConnectionFailed is wrapped by errors from requests that never got
	// a response: refused connections, DNS failures, resets.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrTimeout is wrapped by errors from requests that ran out of time.
	ErrTimeout = errors.New("request timed out")
)

// APIError is an error envelope returned by the server.
//
// Codes include NOT_FOUND, BAD_REQUEST, NO_DOCUMENT, INVALID_RANGE,
// MALFORMED_TIMESTAMP, MALFORMED_VALUE, EMPTY_INPUT, TOO_LARGE and
// INTERNAL_ERROR.
type APIError struct {
	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable description of the error.
	Message string `json:"message"`

	// Details contains additional error information, if available.
	Details map[string]interface{} `json:"details,omitempty"`

	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// StatusError is returned for an unexpected HTTP status without an error
// envelope.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %s", e.Status)
	}
	return fmt.Sprintf("unexpected status %s: %s", e.Status, e.Body)
}

func newStatusError(resp *http.Response, body []byte) *StatusError {
	s := strings.TrimSpace(string(body))
	if len(s) > 512 {
		s = s[:512] + "..."
	}
	return &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: s}
}

// IsCode reports whether err is an *APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// classify wraps a transport error with ErrTimeout or ErrConnectionFailed.
// Cancellation by the caller is returned as the context error.
func classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return ctxErr
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
}

func retryable(err error) bool {
	return errors.Is(err, ErrConnectionFailed) || errors.Is(err, ErrTimeout)
}
