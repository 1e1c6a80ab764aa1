// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
)

// DatasetClient converts the stored log and downloads the tables.
type DatasetClient struct {
	c *Client
}

// ConvertRequest configures a conversion.
type ConvertRequest struct {
	// Content is the log text. Empty converts the server's latest document.
	Content string `json:"content,omitempty"`

	// Label is a label value (0-5) or name ("bearing"). nil uses the
	// server's configured default; "" converts unlabeled.
	Label interface{} `json:"label,omitempty"`

	// Strict rejects malformed values. nil uses the server default.
	Strict *bool `json:"strict,omitempty"`
}

// ExportOptions selects the exported window and file name. Use either the
// Start/End timestamps or the From/To row indexes.
type ExportOptions struct {
	Start string
	End   string

	// From and To are row indexes; To = -1 means the last row. Ignored
	// unless HasIndex is set.
	From, To int
	HasIndex bool

	// Prefix overrides the file name prefix.
	Prefix string
}

// Convert converts a log and installs the result as the current dataset.
func (d *DatasetClient) Convert(ctx context.Context, req *ConvertRequest) (*Dataset, error) {
	if req == nil {
		req = &ConvertRequest{}
	}
	data, err := d.c.post(ctx, "/api/v1/dataset/convert", req)
	if err != nil {
		return nil, err
	}
	return parseDataset(data)
}

// Relabel stamps label on the current dataset. nil removes the label.
func (d *DatasetClient) Relabel(ctx context.Context, label interface{}) (*Dataset, error) {
	data, err := d.c.post(ctx, "/api/v1/dataset/relabel", map[string]interface{}{"label": label})
	if err != nil {
		return nil, err
	}
	return parseDataset(data)
}

// Get returns the current dataset summary.
func (d *DatasetClient) Get(ctx context.Context) (*Dataset, error) {
	data, err := d.c.get(ctx, "/api/v1/dataset")
	if err != nil {
		return nil, err
	}
	return parseDataset(data)
}

// Clear removes the current dataset and reports whether there was one.
func (d *DatasetClient) Clear(ctx context.Context) (bool, error) {
	data, err := d.c.delete(ctx, "/api/v1/dataset")
	if err != nil {
		return false, err
	}

	var out struct {
		Cleared bool `json:"cleared"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return false, fmt.Errorf("failed to parse response: %w", err)
	}
	return out.Cleared, nil
}

// Wide downloads the wide table.
func (d *DatasetClient) Wide(ctx context.Context, opts *ExportOptions) (*Export, error) {
	return d.export(ctx, "wide", opts)
}

// Long downloads the long table.
func (d *DatasetClient) Long(ctx context.Context, opts *ExportOptions) (*Export, error) {
	return d.export(ctx, "long", opts)
}

func (d *DatasetClient) export(ctx context.Context, kind string, opts *ExportOptions) (*Export, error) {
	path := "/api/v1/dataset/" + kind
	if opts != nil {
		params := url.Values{}
		if opts.Start != "" {
			params.Set("start", opts.Start)
		}
		if opts.End != "" {
			params.Set("end", opts.End)
		}
		if opts.HasIndex {
			params.Set("from", strconv.Itoa(opts.From))
			params.Set("to", strconv.Itoa(opts.To))
		}
		if opts.Prefix != "" {
			params.Set("prefix", opts.Prefix)
		}
		if len(params) > 0 {
			path += "?" + params.Encode()
		}
	}

	resp, body, err := d.c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_, err := parseResponse(resp, body)
		if err == nil {
			err = newStatusError(resp, body)
		}
		return nil, err
	}

	export := &Export{Data: body}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		export.Filename = params["filename"]
	}
	if n, err := strconv.Atoi(resp.Header.Get("X-Vibetable-Rows")); err == nil {
		export.Rows = n
	}
	return export, nil
}

func parseDataset(data json.RawMessage) (*Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	return &ds, nil
}
