// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedpig/vibetable/internal/events"
)

type fakeRecorder struct {
	mu       sync.Mutex
	stored   map[string]int
	bytes    int
	rejected int
}

func (f *fakeRecorder) ObserveDocument(producer string, size int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stored == nil {
		f.stored = make(map[string]int)
	}
	f.stored[producer]++
	f.bytes += size
}

func (f *fakeRecorder) ObserveRejected() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected++
}

func TestLatestBeforePut(t *testing.T) {
	s := NewMemoryStore(StoreConfig{})

	doc, ok, err := s.Latest(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Document{}, doc)
}

func TestPutReplaces(t *testing.T) {
	bus := events.NewMemoryEventBus(events.MemoryBusConfig{})
	defer bus.Close()
	rec := &fakeRecorder{}
	s := NewMemoryStore(StoreConfig{Bus: bus, Recorder: rec})
	ctx := context.Background()

	first, err := s.Put(ctx, "one", "http")
	require.NoError(t, err)
	assert.Equal(t, 3, first.Size)
	assert.False(t, first.StoredAt.IsZero())

	_, err = s.Put(ctx, "second doc", "inbox:b.txt")
	require.NoError(t, err)

	doc, ok, err := s.Latest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second doc", doc.Content)
	assert.Equal(t, "inbox:b.txt", doc.Source)
	assert.Equal(t, DocumentInfo{Size: 10, StoredAt: doc.StoredAt, Source: "inbox:b.txt"}, doc.Info())

	assert.Equal(t, map[string]int{"http": 1, "inbox": 1}, rec.stored)
	assert.Equal(t, 13, rec.bytes)

	history, err := bus.History(events.EventFilter{Types: []string{events.EventDocumentStored}})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 10, history[1].Payload["size"])
}

func TestPutEmptyContent(t *testing.T) {
	s := NewMemoryStore(StoreConfig{})
	_, err := s.Put(context.Background(), "", "http")
	require.NoError(t, err)

	doc, ok, err := s.Latest(context.Background())
	require.NoError(t, err)
	assert.True(t, ok, "an empty document is still a stored document")
	assert.Equal(t, "", doc.Content)
}

func TestPutTooLarge(t *testing.T) {
	rec := &fakeRecorder{}
	s := NewMemoryStore(StoreConfig{MaxBytes: 8, Recorder: rec})
	ctx := context.Background()

	_, err := s.Put(ctx, "12345678", "http")
	require.NoError(t, err)

	_, err = s.Put(ctx, "123456789", "http")
	assert.ErrorIs(t, err, ErrDocumentTooLarge)
	assert.Equal(t, 1, rec.rejected)

	doc, _, _ := s.Latest(ctx)
	assert.Equal(t, "12345678", doc.Content, "rejected put leaves the previous document")

	unlimited := NewMemoryStore(StoreConfig{MaxBytes: -1})
	_, err = unlimited.Put(ctx, strings.Repeat("x", DefaultMaxBytes+1), "http")
	assert.NoError(t, err)
}

func TestCanceledContext(t *testing.T) {
	s := NewMemoryStore(StoreConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Put(ctx, "x", "http")
	assert.ErrorIs(t, err, context.Canceled)
	_, _, err = s.Latest(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentPutLatest(t *testing.T) {
	s := NewMemoryStore(StoreConfig{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = s.Put(ctx, fmt.Sprintf("doc-%d-%d", i, j), "http")
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				doc, ok, err := s.Latest(ctx)
				if err == nil && ok {
					assert.Equal(t, len(doc.Content), doc.Size)
				}
			}
		}()
	}
	wg.Wait()
}

func TestProducer(t *testing.T) {
	assert.Equal(t, "inbox", Producer("inbox:a.txt"))
	assert.Equal(t, "http", Producer("http"))
	assert.Equal(t, "unknown", Producer(""))
}
