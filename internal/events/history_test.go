// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventHistory_MaxEvents(t *testing.T) {
	h := NewEventHistory(EventHistoryConfig{MaxEvents: 5, MaxAge: time.Hour})

	for i := 0; i < 12; i++ {
		h.Add(Event{ID: string(rune('a' + i)), Type: EventDocumentStored, Timestamp: time.Now()})
	}

	events := h.Query(EventFilter{})
	require.Len(t, events, 5)
	assert.Equal(t, "h", events[0].ID)
	assert.Equal(t, "l", events[4].ID)
}

func TestEventHistory_Prune(t *testing.T) {
	now := time.Date(2024, 7, 4, 12, 0, 0, 0, time.UTC)
	h := NewEventHistory(EventHistoryConfig{MaxEvents: 100, MaxAge: 10 * time.Minute})
	h.now = func() time.Time { return now }

	h.Add(Event{Type: "old", Timestamp: now.Add(-time.Hour)})
	h.Add(Event{Type: "edge", Timestamp: now.Add(-10 * time.Minute)})
	h.Add(Event{Type: "fresh", Timestamp: now.Add(-time.Minute)})

	assert.Equal(t, 2, h.Prune())
	events := h.Query(EventFilter{})
	require.Len(t, events, 1)
	assert.Equal(t, "fresh", events[0].Type)
	assert.Equal(t, 0, h.Prune())
}

func TestEventHistory_Query(t *testing.T) {
	base := time.Date(2024, 7, 4, 12, 0, 0, 0, time.UTC)
	h := NewEventHistory(EventHistoryConfig{})

	h.Add(Event{Type: EventDocumentStored, Source: "http", Timestamp: base})
	h.Add(Event{Type: EventDatasetConverted, Source: "http", Timestamp: base.Add(time.Minute)})
	h.Add(Event{Type: EventDatasetFailed, Source: "inbox:x.txt", Timestamp: base.Add(2 * time.Minute)})
	h.Add(Event{Type: EventInboxFailed, Source: "inbox:x.txt", Timestamp: base.Add(3 * time.Minute)})

	tests := []struct {
		name   string
		filter EventFilter
		want   []string
	}{
		{"all", EventFilter{}, []string{EventDocumentStored, EventDatasetConverted, EventDatasetFailed, EventInboxFailed}},
		{"types", EventFilter{Types: []string{"dataset.*"}}, []string{EventDatasetConverted, EventDatasetFailed}},
		{"several types", EventFilter{Types: []string{EventDocumentStored, "*.failed"}}, []string{EventDocumentStored, EventDatasetFailed, EventInboxFailed}},
		{"source", EventFilter{Source: "inbox:x.txt"}, []string{EventDatasetFailed, EventInboxFailed}},
		{"since", EventFilter{Since: base.Add(2 * time.Minute)}, []string{EventDatasetFailed, EventInboxFailed}},
		{"until", EventFilter{Until: base.Add(time.Minute)}, []string{EventDocumentStored, EventDatasetConverted}},
		{"limit keeps newest", EventFilter{Limit: 2}, []string{EventDatasetFailed, EventInboxFailed}},
		{"combined", EventFilter{Types: []string{"*.failed"}, Source: "inbox:x.txt", Limit: 1}, []string{EventInboxFailed}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.Query(tt.filter)
			types := make([]string, len(got))
			for i, e := range got {
				types[i] = e.Type
			}
			assert.Equal(t, tt.want, types)
		})
	}
}

func TestEventHistory_Concurrency(t *testing.T) {
	h := NewEventHistory(EventHistoryConfig{MaxEvents: 50})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h.Add(Event{Type: EventDocumentStored, Timestamp: time.Now()})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h.Query(EventFilter{Types: []string{"document.*"}})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, h.Len())
}
