// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wingedpig/vibetable/internal/ingest"
)

// Sources recorded for documents arriving over HTTP.
const (
	SourceHTTP   = "http"
	SourceUpload = "upload"
)

// DocumentHandler serves the single-slot document store.
type DocumentHandler struct {
	store    ingest.Store
	maxBytes int
}

// NewDocumentHandler creates a document handler. maxBytes bounds request
// bodies; zero or negative disables the bound.
func NewDocumentHandler(store ingest.Store, maxBytes int) *DocumentHandler {
	return &DocumentHandler{store: store, maxBytes: maxBytes}
}

// documentRequest is the body of a document upload.
type documentRequest struct {
	Content *string `json:"content"`
}

// DocumentResponse is the full stored document.
type DocumentResponse struct {
	Content  string    `json:"content"`
	Size     int       `json:"size"`
	StoredAt time.Time `json:"stored_at"`
	Source   string    `json:"source,omitempty"`
}

// decode reads a documentRequest. status is the HTTP status to use on error.
func (h *DocumentHandler) decode(w http.ResponseWriter, r *http.Request) (string, int, error) {
	body := r.Body
	if h.maxBytes > 0 {
		// JSON escaping can grow content up to six times.
		body = http.MaxBytesReader(w, r.Body, int64(h.maxBytes)*6+4096)
	}

	var req documentRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return "", http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err)
	}
	if req.Content == nil {
		return "", http.StatusBadRequest, errors.New("content is required")
	}
	return *req.Content, 0, nil
}

// Put replaces the stored document.
// PUT /api/v1/documents/latest
func (h *DocumentHandler) Put(w http.ResponseWriter, r *http.Request) {
	content, status, err := h.decode(w, r)
	if err != nil {
		code := ErrBadRequest
		if status == http.StatusRequestEntityTooLarge {
			code = ErrTooLarge
		}
		WriteError(w, status, code, err.Error())
		return
	}

	doc, err := h.store.Put(r.Context(), content, SourceHTTP)
	if err != nil {
		if errors.Is(err, ingest.ErrDocumentTooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, ErrTooLarge, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, doc.Info())
}

// Latest returns the stored document, or null data when nothing is stored.
// GET /api/v1/documents/latest
func (h *DocumentHandler) Latest(w http.ResponseWriter, r *http.Request) {
	doc, ok, err := h.store.Latest(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
		return
	}
	if !ok {
		WriteJSON(w, http.StatusOK, nil)
		return
	}

	WriteJSON(w, http.StatusOK, DocumentResponse{
		Content:  doc.Content,
		Size:     doc.Size,
		StoredAt: doc.StoredAt,
		Source:   doc.Source,
	})
}

// LegacyUpload stores a document for producers that post to the original
// ingestion endpoint.
// POST /upload
func (h *DocumentHandler) LegacyUpload(w http.ResponseWriter, r *http.Request) {
	content, status, err := h.decode(w, r)
	if err != nil {
		if status == http.StatusBadRequest {
			status = http.StatusUnprocessableEntity
		}
		writeBare(w, status, map[string]string{"detail": err.Error()})
		return
	}

	if _, err := h.store.Put(r.Context(), content, SourceUpload); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ingest.ErrDocumentTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeBare(w, status, map[string]string{"detail": err.Error()})
		return
	}

	writeBare(w, http.StatusOK, map[string]string{"status": "received"})
}

// LegacyLatest returns {"content": string|null}.
// GET /latest
func (h *DocumentHandler) LegacyLatest(w http.ResponseWriter, r *http.Request) {
	doc, ok, err := h.store.Latest(r.Context())
	if err != nil {
		writeBare(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
		return
	}

	var content *string
	if ok {
		content = &doc.Content
	}
	writeBare(w, http.StatusOK, map[string]*string{"content": content})
}
