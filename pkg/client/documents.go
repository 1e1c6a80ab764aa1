// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// DocumentClient accesses the stored log. The server keeps exactly one
// document; each Put replaces it.
type DocumentClient struct {
	c *Client
}

type documentBody struct {
	Content string `json:"content"`
}

// Put stores content as the latest document.
func (d *DocumentClient) Put(ctx context.Context, content string) (*DocumentInfo, error) {
	data, err := d.c.put(ctx, "/api/v1/documents/latest", documentBody{Content: content})
	if err != nil {
		return nil, err
	}

	var info DocumentInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse document info: %w", err)
	}
	return &info, nil
}

// Get returns the latest document, or nil when nothing has been stored.
func (d *DocumentClient) Get(ctx context.Context) (*Document, error) {
	data, err := d.c.get(ctx, "/api/v1/documents/latest")
	if err != nil {
		return nil, err
	}
	if isNull(data) {
		return nil, nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &doc, nil
}

// Latest returns the latest document's content. ok is false, with a nil
// error, when nothing has been stored.
func (d *DocumentClient) Latest(ctx context.Context) (content string, ok bool, err error) {
	doc, err := d.Get(ctx)
	if err != nil || doc == nil {
		return "", false, err
	}
	return doc.Content, true, nil
}

// Upload stores content through the legacy POST /upload endpoint.
func (d *DocumentClient) Upload(ctx context.Context, content string) error {
	resp, body, err := d.c.do(ctx, http.MethodPost, "/upload", documentBody{Content: content})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return newStatusError(resp, body)
	}

	var out struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.Status != "received" {
		return newStatusError(resp, body)
	}
	return nil
}

// LegacyLatest reads the latest content through the legacy GET /latest
// endpoint.
func (d *DocumentClient) LegacyLatest(ctx context.Context) (content string, ok bool, err error) {
	resp, body, err := d.c.do(ctx, http.MethodGet, "/latest", nil)
	if err != nil {
		return "", false, err
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, newStatusError(resp, body)
	}

	var out struct {
		Content *string `json:"content"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", false, fmt.Errorf("failed to parse response: %w", err)
	}
	if out.Content == nil {
		return "", false, nil
	}
	return *out.Content, true, nil
}
