// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package events provides the in-process event bus for vibetable.
package events

import (
	"context"
	"time"
)

// Event represents an immutable event record.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// EventHandler processes received events.
type EventHandler func(ctx context.Context, event Event) error

// SubscriptionID uniquely identifies a subscription.
type SubscriptionID string

// EventFilter for querying event history.
type EventFilter struct {
	Types  []string  // Event types to match (supports wildcards)
	Source string    // Exact source match
	Since  time.Time // Events after this time
	Until  time.Time // Events before this time
	Limit  int       // Maximum events to return, newest kept
}

// Publisher is the publishing half of the bus. Producers depend on this
// rather than on the full EventBus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// EventBus is the core event pub/sub system.
type EventBus interface {
	Publisher

	// Subscribe registers a synchronous handler for events matching pattern.
	Subscribe(pattern string, handler EventHandler) (SubscriptionID, error)

	// SubscribeAsync registers an async handler with buffered channel.
	SubscribeAsync(pattern string, handler EventHandler, bufferSize int) (SubscriptionID, error)

	// Unsubscribe removes a subscription.
	Unsubscribe(id SubscriptionID) error

	// History retrieves past events matching filter.
	History(filter EventFilter) ([]Event, error)

	// Close shuts down the event bus gracefully.
	Close() error
}

// Event types
const (
	// Ingestion
	EventDocumentStored = "document.stored"

	// Conversion
	EventDatasetConverted = "dataset.converted"
	EventDatasetFailed    = "dataset.failed"
	EventDatasetCleared   = "dataset.cleared"

	// Inbox watcher
	EventInboxIngested = "inbox.ingested"
	EventInboxFailed   = "inbox.failed"
)

// Emit publishes an event of the given type on p. A nil publisher is a no-op.
func Emit(ctx context.Context, p Publisher, eventType, source string, payload map[string]interface{}) {
	if p == nil {
		return
	}
	_ = p.Publish(ctx, Event{Type: eventType, Source: source, Payload: payload})
}
