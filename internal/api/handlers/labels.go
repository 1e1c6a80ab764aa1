// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"

	"github.com/wingedpig/vibetable/internal/vibration"
)

// LabelInfo describes one fault label.
type LabelInfo struct {
	Value   int    `json:"value"`
	Name    string `json:"name"`
	Display string `json:"display"`
}

// Labels lists the fault labels.
// GET /api/v1/labels
func Labels(w http.ResponseWriter, r *http.Request) {
	labels := vibration.Labels()
	out := make([]LabelInfo, len(labels))
	for i, l := range labels {
		out[i] = LabelInfo{Value: int(l), Name: l.Name(), Display: l.String()}
	}
	WriteJSON(w, http.StatusOK, out)
}
