// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package ingest holds the single-slot "latest document" store that producers
// write raw sensor logs into.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wingedpig/vibetable/internal/events"
)

// DefaultMaxBytes is the default document size limit.
const DefaultMaxBytes = 32 << 20

// ErrDocumentTooLarge is returned by Put when content exceeds the store limit.
var ErrDocumentTooLarge = errors.New("document too large")

// Document is a stored raw log.
type Document struct {
	Content  string    `json:"content"`
	Size     int       `json:"size"`
	StoredAt time.Time `json:"stored_at"`
	Source   string    `json:"source,omitempty"`
}

// DocumentInfo describes a document without its content.
type DocumentInfo struct {
	Size     int       `json:"size"`
	StoredAt time.Time `json:"stored_at"`
	Source   string    `json:"source,omitempty"`
}

// Info returns d without its content.
func (d Document) Info() DocumentInfo {
	return DocumentInfo{Size: d.Size, StoredAt: d.StoredAt, Source: d.Source}
}

// Store is the ingestion boundary. Put replaces the one stored document;
// Latest returns it, with ok false when nothing has been stored yet.
type Store interface {
	Put(ctx context.Context, content, source string) (Document, error)
	Latest(ctx context.Context) (doc Document, ok bool, err error)
}

// Recorder receives store measurements.
type Recorder interface {
	ObserveDocument(producer string, size int)
	ObserveRejected()
}

// StoreConfig configures a MemoryStore.
type StoreConfig struct {
	// MaxBytes limits content size. Zero means DefaultMaxBytes; negative
	// means unlimited.
	MaxBytes int
	Bus      events.Publisher
	Recorder Recorder
}

// MemoryStore is an in-memory Store. Last writer wins; there is no history.
type MemoryStore struct {
	mu       sync.RWMutex
	doc      *Document
	maxBytes int
	bus      events.Publisher
	rec      Recorder
	now      func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(cfg StoreConfig) *MemoryStore {
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	return &MemoryStore{
		maxBytes: cfg.MaxBytes,
		bus:      cfg.Bus,
		rec:      cfg.Recorder,
		now:      time.Now,
	}
}

// MaxBytes returns the size limit, or a negative value when unlimited.
func (s *MemoryStore) MaxBytes() int {
	return s.maxBytes
}

// Put replaces the stored document.
func (s *MemoryStore) Put(ctx context.Context, content, source string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	if s.maxBytes > 0 && len(content) > s.maxBytes {
		if s.rec != nil {
			s.rec.ObserveRejected()
		}
		return Document{}, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrDocumentTooLarge, len(content), s.maxBytes)
	}

	doc := Document{
		Content:  content,
		Size:     len(content),
		StoredAt: s.now(),
		Source:   source,
	}

	s.mu.Lock()
	s.doc = &doc
	s.mu.Unlock()

	if s.rec != nil {
		s.rec.ObserveDocument(Producer(source), doc.Size)
	}
	events.Emit(ctx, s.bus, events.EventDocumentStored, source, map[string]interface{}{
		"size": doc.Size,
	})
	return doc, nil
}

// Latest returns the stored document.
func (s *MemoryStore) Latest(ctx context.Context) (Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return Document{}, false, nil
	}
	return *s.doc, true, nil
}

// Producer returns the producer kind of a source, the part before the first
// colon: "inbox:a.txt" is "inbox".
func Producer(source string) string {
	if source == "" {
		return "unknown"
	}
	if i := strings.IndexByte(source, ':'); i >= 0 {
		return source[:i]
	}
	return source
}
