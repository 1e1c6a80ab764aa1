// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryEventBus_Publish_AssignsID(t *testing.T) {
	bus := NewMemoryEventBus(MemoryBusConfig{})
	defer bus.Close()

	var receivedEvent Event
	_, err := bus.Subscribe("*", func(ctx context.Context, e Event) error {
		receivedEvent = e
		return nil
	})
	require.NoError(t, err)

	err = bus.Publish(context.Background(), Event{Type: EventDocumentStored})
	require.NoError(t, err)

	_, err = uuid.Parse(receivedEvent.ID)
	assert.NoError(t, err, "event ID should be a UUID")
	assert.False(t, receivedEvent.Timestamp.IsZero())
}

func TestMemoryEventBus_Subscribe(t *testing.T) {
	bus := NewMemoryEventBus(MemoryBusConfig{})
	defer bus.Close()

	received := make(chan Event, 1)

	_, err := bus.Subscribe(EventDatasetConverted, func(ctx context.Context, e Event) error {
		received <- e
		return nil
	})
	require.NoError(t, err)

	event := Event{Type: EventDatasetConverted, Payload: map[string]interface{}{"rows": 12}}
	require.NoError(t, bus.Publish(context.Background(), event))

	select {
	case e := <-received:
		assert.Equal(t, EventDatasetConverted, e.Type)
		assert.Equal(t, 12, e.Payload["rows"])
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestMemoryEventBus_Subscribe_PatternMatching(t *testing.T) {
	bus := NewMemoryEventBus(MemoryBusConfig{})
	defer bus.Close()

	var dataset, failed int32
	_, err := bus.Subscribe("dataset.*", func(ctx context.Context, e Event) error {
		atomic.AddInt32(&dataset, 1)
		return nil
	})
	require.NoError(t, err)
	_, err = bus.Subscribe("*.failed", func(ctx context.Context, e Event) error {
		atomic.AddInt32(&failed, 1)
		return nil
	})
	require.NoError(t, err)

	ctx := context.Background()
	bus.Publish(ctx, Event{Type: EventDatasetConverted})
	bus.Publish(ctx, Event{Type: EventDatasetFailed})
	bus.Publish(ctx, Event{Type: EventInboxFailed})
	bus.Publish(ctx, Event{Type: EventDocumentStored})

	assert.Equal(t, int32(2), atomic.LoadInt32(&dataset))
	assert.Equal(t, int32(2), atomic.LoadInt32(&failed))
}

func TestMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryEventBus(MemoryBusConfig{})
	defer bus.Close()

	var count int32
	id, err := bus.Subscribe("*", func(ctx context.Context, e Event) error {
		atomic.AddInt32(&count, 1)
		return nil
	})
	require.NoError(t, err)

	bus.Publish(context.Background(), Event{Type: EventDocumentStored})
	require.NoError(t, bus.Unsubscribe(id))
	bus.Publish(context.Background(), Event{Type: EventDocumentStored})

	assert.Equal(t, int32(1), atomic.LoadInt32(&count))
	assert.ErrorIs(t, bus.Unsubscribe(id), ErrSubscriptionNotFound)
}

func TestMemoryEventBus_SubscribeAsync(t *testing.T) {
	bus := NewMemoryEventBus(MemoryBusConfig{})
	defer bus.Close()

	received := make(chan Event, 10)
	_, err := bus.SubscribeAsync("inbox.*", func(ctx context.Context, e Event) error {
		received <- e
		return nil
	}, 10)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		bus.Publish(context.Background(), Event{Type: EventInboxIngested})
	}

	for i := 0; i < 5; i++ {
		select {
		case <-received:
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for event")
		}
	}
}

func TestMemoryEventBus_SubscribeAsync_BufferFull(t *testing.T) {
	bus := NewMemoryEventBus(MemoryBusConfig{})
	defer bus.Close()

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	_, err := bus.SubscribeAsync("*", func(ctx context.Context, e Event) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return nil
	}, 2)
	require.NoError(t, err)

	bus.Publish(context.Background(), Event{Type: EventDocumentStored})
	<-started

	// Handler is blocked; two fit in the buffer, the rest are dropped.
	for i := 0; i < 10; i++ {
		bus.Publish(context.Background(), Event{Type: EventDocumentStored})
	}
	close(release)

	assert.Equal(t, uint64(8), bus.Dropped())
}

func TestMemoryEventBus_History(t *testing.T) {
	bus := NewMemoryEventBus(MemoryBusConfig{
		HistoryMaxEvents: 100,
		HistoryMaxAge:    time.Hour,
	})
	defer bus.Close()

	ctx := context.Background()
	bus.Publish(ctx, Event{Type: EventDocumentStored, Source: "http"})
	bus.Publish(ctx, Event{Type: EventDocumentStored, Source: "inbox:a.txt"})
	bus.Publish(ctx, Event{Type: EventDatasetConverted, Source: "http"})

	history, err := bus.History(EventFilter{})
	require.NoError(t, err)
	assert.Len(t, history, 3)

	history, err = bus.History(EventFilter{Types: []string{"document.*"}})
	require.NoError(t, err)
	assert.Len(t, history, 2)

	history, err = bus.History(EventFilter{Source: "http"})
	require.NoError(t, err)
	assert.Len(t, history, 2)

	history, err = bus.History(EventFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, EventDatasetConverted, history[0].Type)
}

func TestMemoryEventBus_Close(t *testing.T) {
	bus := NewMemoryEventBus(MemoryBusConfig{})

	_, err := bus.SubscribeAsync("*", func(ctx context.Context, e Event) error {
		return nil
	}, 1)
	require.NoError(t, err)

	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(context.Background(), Event{Type: "test"}), ErrBusClosed)
	_, err = bus.Subscribe("*", func(ctx context.Context, e Event) error { return nil })
	assert.ErrorIs(t, err, ErrBusClosed)
	_, err = bus.History(EventFilter{})
	assert.ErrorIs(t, err, ErrBusClosed)

	assert.NoError(t, bus.Close())
}

func TestMemoryEventBus_Concurrency(t *testing.T) {
	bus := NewMemoryEventBus(MemoryBusConfig{HistoryMaxEvents: 1000})
	defer bus.Close()

	var count int64
	_, err := bus.Subscribe("*", func(ctx context.Context, e Event) error {
		atomic.AddInt64(&count, 1)
		return nil
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bus.Publish(context.Background(), Event{Type: EventDocumentStored})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1000), atomic.LoadInt64(&count))
}

func TestMemoryEventBus_HandlerErrorAndPanic(t *testing.T) {
	bus := NewMemoryEventBus(MemoryBusConfig{})
	defer bus.Close()

	var count int32
	_, err := bus.Subscribe("dataset.*", func(ctx context.Context, e Event) error {
		atomic.AddInt32(&count, 1)
		return assert.AnError
	})
	require.NoError(t, err)
	_, err = bus.Subscribe("dataset.*", func(ctx context.Context, e Event) error {
		atomic.AddInt32(&count, 1)
		panic("boom")
	})
	require.NoError(t, err)
	_, err = bus.Subscribe("dataset.*", func(ctx context.Context, e Event) error {
		atomic.AddInt32(&count, 1)
		return nil
	})
	require.NoError(t, err)

	assert.NoError(t, bus.Publish(context.Background(), Event{Type: EventDatasetFailed}))
	assert.Equal(t, int32(3), atomic.LoadInt32(&count))
}

func TestEmit(t *testing.T) {
	Emit(context.Background(), nil, EventDocumentStored, "", nil)

	bus := NewMemoryEventBus(MemoryBusConfig{})
	defer bus.Close()

	Emit(context.Background(), bus, EventDatasetCleared, "cli", map[string]interface{}{"id": "x"})
	history, err := bus.History(EventFilter{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "cli", history[0].Source)
	assert.Equal(t, "x", history[0].Payload["id"])
}
