// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/wingedpig/vibetable/internal/dataset"
	"github.com/wingedpig/vibetable/internal/ingest"
	"github.com/wingedpig/vibetable/internal/vibration"
)

// PrefixFunc returns the configured export file prefix for ds.
type PrefixFunc func(ds *dataset.Dataset) (string, error)

// ConvertDefaults are applied when a convert request leaves a field out.
type ConvertDefaults struct {
	Label  *vibration.Label
	Strict bool
}

// DatasetHandler handles conversion and export requests.
type DatasetHandler struct {
	manager  *dataset.Manager
	store    ingest.Store
	defaults ConvertDefaults
	prefix   PrefixFunc
}

// NewDatasetHandler creates a dataset handler. prefix may be nil.
func NewDatasetHandler(mgr *dataset.Manager, store ingest.Store, defaults ConvertDefaults, prefix PrefixFunc) *DatasetHandler {
	return &DatasetHandler{manager: mgr, store: store, defaults: defaults, prefix: prefix}
}

// ConvertRequest is the body of a convert request. All fields are optional.
type ConvertRequest struct {
	Content string          `json:"content,omitempty"`
	Label   json.RawMessage `json:"label,omitempty"`
	Strict  *bool           `json:"strict,omitempty"`
}

// RelabelRequest is the body of a relabel request.
type RelabelRequest struct {
	Label json.RawMessage `json:"label"`
}

// ClearResponse reports whether a dataset was removed.
type ClearResponse struct {
	Cleared bool `json:"cleared"`
}

// decodeOptional decodes a JSON body, treating an empty body as {}.
func decodeOptional(r *http.Request, v interface{}) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// parseLabel decodes a label field. A missing field returns def; an
// explicit null or "" means unlabeled.
func parseLabel(raw json.RawMessage, def *vibration.Label) (*vibration.Label, error) {
	if len(raw) == 0 {
		return def, nil
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return vibration.ParseLabelValue(v)
}

// Convert parses a document and installs it as the current dataset. With no
// content the latest stored document is converted.
// POST /api/v1/dataset/convert
func (h *DatasetHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := decodeOptional(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid request body: "+err.Error())
		return
	}

	label, err := parseLabel(req.Label, h.defaults.Label)
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, err.Error())
		return
	}
	opts := dataset.ConvertOptions{
		Label:  label,
		Strict: h.defaults.Strict,
		Source: SourceHTTP,
	}
	if req.Strict != nil {
		opts.Strict = *req.Strict
	}

	text := req.Content
	if text == "" {
		doc, ok, err := h.store.Latest(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
			return
		}
		if !ok || strings.TrimSpace(doc.Content) == "" {
			WriteError(w, http.StatusConflict, ErrNoDocument, "no content given and no document stored")
			return
		}
		text = doc.Content
		opts.Source = doc.Source
	}

	ds, err := h.manager.Convert(r.Context(), text, opts)
	if err != nil {
		writeDatasetError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, ds.Summary())
}

// Relabel re-materializes the current dataset with a new label.
// POST /api/v1/dataset/relabel
func (h *DatasetHandler) Relabel(w http.ResponseWriter, r *http.Request) {
	var req RelabelRequest
	if err := decodeOptional(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid request body: "+err.Error())
		return
	}
	label, err := parseLabel(req.Label, nil)
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, err.Error())
		return
	}

	ds, err := h.manager.Relabel(r.Context(), label)
	if err != nil {
		writeDatasetError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, ds.Summary())
}

// Get returns the current dataset summary.
// GET /api/v1/dataset
func (h *DatasetHandler) Get(w http.ResponseWriter, r *http.Request) {
	ds := h.manager.Current()
	if ds == nil {
		writeDatasetError(w, dataset.ErrNoDataset)
		return
	}
	WriteJSON(w, http.StatusOK, ds.Summary())
}

// Clear drops the current dataset.
// DELETE /api/v1/dataset
func (h *DatasetHandler) Clear(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, ClearResponse{Cleared: h.manager.Clear(r.Context())})
}

// Wide exports the selected window as the 57-parameter CSV.
// GET /api/v1/dataset/wide
func (h *DatasetHandler) Wide(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, true)
}

// Long exports the selected window as the 19-parameter CSV.
// GET /api/v1/dataset/long
func (h *DatasetHandler) Long(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, false)
}

func (h *DatasetHandler) export(w http.ResponseWriter, r *http.Request, wide bool) {
	ds := h.manager.Current()
	if ds == nil {
		writeDatasetError(w, dataset.ErrNoDataset)
		return
	}

	query := r.URL.Query()
	window, err := dataset.ParseWindow(query.Get("start"), query.Get("end"), query.Get("from"), query.Get("to"))
	if err != nil {
		code := ErrInvalidRange
		if errors.Is(err, vibration.ErrMalformedTimestamp) {
			code = ErrMalformedTimestamp
		}
		WriteError(w, http.StatusBadRequest, code, err.Error())
		return
	}

	prefix, err := h.filePrefix(ds, query.Get("prefix"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, err.Error())
		return
	}

	view, err := ds.View(window)
	if err != nil {
		writeDatasetError(w, err)
		return
	}

	wideName, longName := dataset.ExportNames(prefix, ds.ConvertedAt)
	name, rows := longName, view.Long.Len()
	if wide {
		name, rows = wideName, view.Wide.Len()
	}

	var buf bytes.Buffer
	if wide {
		err = dataset.WriteWideCSV(&buf, view.Wide)
	} else {
		err = dataset.WriteLongCSV(&buf, view.Long)
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("X-Vibetable-Rows", strconv.Itoa(rows))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// filePrefix picks the request's prefix, else the configured one.
func (h *DatasetHandler) filePrefix(ds *dataset.Dataset, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested != "" {
		if strings.ContainsAny(requested, `/\`) || requested == "." || requested == ".." {
			return "", fmt.Errorf("prefix %q must not contain a path", requested)
		}
		return requested, nil
	}
	if h.prefix == nil {
		return "", nil
	}
	prefix, err := h.prefix(ds)
	if err != nil {
		// A broken configured prefix falls back to the default name.
		log.Printf("Dataset: file prefix: %v", err)
		return "", nil
	}
	return prefix, nil
}

// writeDatasetError maps conversion and selection errors onto API errors.
func writeDatasetError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dataset.ErrNoDataset):
		WriteError(w, http.StatusNotFound, ErrNotFound, err.Error())
	case errors.Is(err, dataset.ErrInvalidRange):
		WriteError(w, http.StatusBadRequest, ErrInvalidRange, err.Error())
	case errors.Is(err, dataset.ErrEmptyInput):
		WriteError(w, http.StatusUnprocessableEntity, ErrEmptyInput, err.Error())
	case errors.Is(err, vibration.ErrMalformedTimestamp):
		WriteError(w, http.StatusUnprocessableEntity, ErrMalformedTimestamp, err.Error())
	case errors.Is(err, vibration.ErrMalformedValue):
		WriteError(w, http.StatusUnprocessableEntity, ErrMalformedValue, err.Error())
	case errors.Is(err, vibration.ErrUnknownLabel):
		WriteError(w, http.StatusBadRequest, ErrBadRequest, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
	}
}
