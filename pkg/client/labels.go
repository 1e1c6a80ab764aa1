// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// LabelClient lists the fault labels.
type LabelClient struct {
	c *Client
}

// List returns the labels in value order.
func (l *LabelClient) List(ctx context.Context) ([]Label, error) {
	data, err := l.c.get(ctx, "/api/v1/labels")
	if err != nil {
		return nil, err
	}

	var labels []Label
	if err := json.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("failed to parse labels: %w", err)
	}
	return labels, nil
}
